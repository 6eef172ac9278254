// Package sim provides a simulated STM32F1 board implementing hal.HAL.
//
// The board keeps a register file for RCC and the GPIO ports, records
// every HAL call and every register write, and counts the cycles spent
// in delays so a simulated time can be derived from a core clock.
package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/blinky.go/pkg/hal"
)

// DefaultClockHz is the STM32F1 core clock after reset (HSI).
const DefaultClockHz uint64 = 8000000

// OpKind is the kind of a recorded operation.
type OpKind int

// Operation kinds.
const (
	OpEnableClock OpKind = iota
	OpSetMode
	OpClear
	OpToggle
	OpDelay
)

var opNames = [...]string{"EnableClock", "SetMode", "Clear", "Toggle", "Delay"}

// String implements fmt.Stringer.
func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("Op(%d)", int(k))
}

// Op is a recorded call on the board.
type Op struct {
	Kind       OpKind
	Peripheral hal.Peripheral
	Port       hal.Port
	Pins       hal.Pins
	Speed      hal.Speed
	Drive      hal.Drive
	Cycles     uint32
	// Ignored is set when the call targets a port whose clock is off.
	// Real hardware drops such writes.
	Ignored bool
}

// Write is a recorded register write.
type Write struct {
	Addr uint32
	Old  uint32
	New  uint32
}

// PinEvent reports a change made to an output pin by Clear or Toggle.
type PinEvent struct {
	Port  hal.Port
	Pin   uint
	Level hal.Level
	// Toggles counts toggles of the pin since it was last cleared.
	Toggles uint64
	Cycles  uint64
	Elapsed time.Duration
}

// PinListener receives PinEvents.
type PinListener interface {
	PinChanged(PinEvent)
}

// PinChangedFunc is the func form of PinListener.
type PinChangedFunc func(PinEvent)

// PinChanged implements PinListener.
func (f PinChangedFunc) PinChanged(ev PinEvent) {
	f(ev)
}

// Board is a simulated board.
type Board struct {
	ClockHz uint64
	// Record enables the operation trace and the write log. A long
	// running board turns it off to bound memory.
	Record bool

	lock      sync.Mutex
	regs      map[uint32]uint32
	trace     []Op
	writes    []Write
	cycles    uint64
	toggles   map[pinKey]uint64
	listeners []PinListener
}

type pinKey struct {
	port hal.Port
	pin  uint
}

// NewBoard creates a board in its reset state.
func NewBoard() *Board {
	b := &Board{ClockHz: DefaultClockHz, Record: true}
	b.Reset()
	return b
}

// Reset restores reset values and clears the recordings.
// Listeners are kept.
func (b *Board) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.regs = make(map[uint32]uint32)
	for port := 0; port < hal.NumPorts; port++ {
		b.regs[GPIOReg(hal.Port(port), GPIOCRL)] = ResetCR
		b.regs[GPIOReg(hal.Port(port), GPIOCRH)] = ResetCR
	}
	b.trace, b.writes, b.cycles = nil, nil, 0
	b.toggles = make(map[pinKey]uint64)
}

// Garble fills the output and config registers with random values,
// standing in for undefined state left by a warm reset or a debugger.
// Nothing is recorded.
func (b *Board) Garble(rnd *rand.Rand) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for port := 0; port < hal.NumPorts; port++ {
		b.regs[GPIOReg(hal.Port(port), GPIOODR)] = rnd.Uint32() & 0xffff
		b.regs[GPIOReg(hal.Port(port), GPIOCRL)] = rnd.Uint32()
		b.regs[GPIOReg(hal.Port(port), GPIOCRH)] = rnd.Uint32()
	}
}

// Preset forces the output level of a pin without recording the write.
func (b *Board) Preset(port hal.Port, pin uint, level hal.Level) {
	b.lock.Lock()
	defer b.lock.Unlock()
	addr := GPIOReg(port, GPIOODR)
	if level {
		b.regs[addr] |= uint32(hal.Pin(pin))
	} else {
		b.regs[addr] &^= uint32(hal.Pin(pin))
	}
}

// Subscribe adds a listener for pin changes.
func (b *Board) Subscribe(l PinListener) {
	b.lock.Lock()
	b.listeners = append(b.listeners, l)
	b.lock.Unlock()
}

// EnableClock implements hal.ClockControl.
func (b *Board) EnableClock(p hal.Peripheral) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.traceOp(Op{Kind: OpEnableClock, Peripheral: p})
	addr := EnableReg(p.Bus())
	b.write(addr, b.regs[addr]|p.Mask())
}

// SetMode implements hal.GPIO.
func (b *Board) SetMode(port hal.Port, speed hal.Speed, drive hal.Drive, pins hal.Pins) {
	b.lock.Lock()
	defer b.lock.Unlock()
	op := Op{Kind: OpSetMode, Port: port, Speed: speed, Drive: drive, Pins: pins}
	if op.Ignored = !b.clocked(port); op.Ignored {
		glog.Warningf("SetMode %s %s: port clock disabled", port, pins)
		b.traceOp(op)
		return
	}
	b.traceOp(op)
	field := ConfigField(speed, drive)
	pins.Each(func(n uint) {
		addr, shift := ConfigReg(port, n)
		b.write(addr, b.regs[addr]&^(0xf<<shift)|field<<shift)
	})
}

// Clear implements hal.GPIO.
func (b *Board) Clear(port hal.Port, pins hal.Pins) {
	b.update(Op{Kind: OpClear, Port: port, Pins: pins}, func(odr uint32) uint32 {
		return odr &^ uint32(pins)
	})
}

// Toggle implements hal.GPIO.
func (b *Board) Toggle(port hal.Port, pins hal.Pins) {
	b.update(Op{Kind: OpToggle, Port: port, Pins: pins}, func(odr uint32) uint32 {
		return odr ^ uint32(pins)
	})
}

// Delay implements blink.Delayer by advancing the cycle counter.
func (b *Board) Delay(cycles uint32) {
	b.lock.Lock()
	b.traceOp(Op{Kind: OpDelay, Cycles: cycles})
	b.cycles += uint64(cycles)
	b.lock.Unlock()
}

func (b *Board) update(op Op, fn func(uint32) uint32) {
	b.lock.Lock()
	if op.Ignored = !b.clocked(op.Port); op.Ignored {
		b.traceOp(op)
		b.lock.Unlock()
		glog.Warningf("%s %s %s: port clock disabled", op.Kind, op.Port, op.Pins)
		return
	}
	b.traceOp(op)
	addr := GPIOReg(op.Port, GPIOODR)
	odr := fn(b.regs[addr])
	b.write(addr, odr)
	var events []PinEvent
	op.Pins.Each(func(n uint) {
		key := pinKey{port: op.Port, pin: n}
		if op.Kind == OpClear {
			b.toggles[key] = 0
		} else {
			b.toggles[key]++
		}
		events = append(events, PinEvent{
			Port:    op.Port,
			Pin:     n,
			Level:   hal.Level(odr&uint32(hal.Pin(n)) != 0),
			Toggles: b.toggles[key],
			Cycles:  b.cycles,
			Elapsed: b.elapsed(),
		})
	})
	listeners := b.listeners
	b.lock.Unlock()
	for _, ev := range events {
		for _, l := range listeners {
			l.PinChanged(ev)
		}
	}
}

func (b *Board) traceOp(op Op) {
	if b.Record {
		b.trace = append(b.trace, op)
	}
}

func (b *Board) write(addr, val uint32) {
	if b.Record {
		b.writes = append(b.writes, Write{Addr: addr, Old: b.regs[addr], New: val})
	}
	b.regs[addr] = val
}

func (b *Board) clocked(port hal.Port) bool {
	p := port.Clock()
	return b.regs[EnableReg(p.Bus())]&p.Mask() != 0
}

func (b *Board) elapsed() time.Duration {
	hz := b.ClockHz
	if hz == 0 {
		hz = DefaultClockHz
	}
	sec := b.cycles / hz
	frac := b.cycles % hz
	return time.Duration(sec)*time.Second + time.Duration(frac*uint64(time.Second)/hz)
}

// Read returns the value of a register.
func (b *Board) Read(addr uint32) uint32 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.regs[addr]
}

// Level returns the output level of a pin.
func (b *Board) Level(port hal.Port, pin uint) hal.Level {
	return hal.Level(b.Read(GPIOReg(port, GPIOODR))&uint32(hal.Pin(pin)) != 0)
}

// PinConfig returns the decoded MODE and CNF fields of a pin.
func (b *Board) PinConfig(port hal.Port, pin uint) (hal.Speed, hal.Drive) {
	addr, shift := ConfigReg(port, pin)
	field := (b.Read(addr) >> shift) & 0xf
	return hal.Speed(field & 3), hal.Drive(field >> 2)
}

// Clocked reports whether the port clock is enabled.
func (b *Board) Clocked(port hal.Port) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.clocked(port)
}

// Trace returns a copy of the recorded operations.
func (b *Board) Trace() []Op {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]Op(nil), b.trace...)
}

// Writes returns a copy of the recorded register writes.
func (b *Board) Writes() []Write {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]Write(nil), b.writes...)
}

// Cycles returns the cycles spent in delays.
func (b *Board) Cycles() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.cycles
}

// Elapsed converts the cycle count to simulated time.
func (b *Board) Elapsed() time.Duration {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.elapsed()
}
