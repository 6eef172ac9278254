// Package blink implements the LED blink firmware: one-time pin setup
// followed by an endless delay-and-toggle loop.
package blink

import "github.com/robotalks/blinky.go/pkg/hal"

// FlashText lives in flash next to the code. The firmware only touches
// it once at startup to keep it linked into the image.
const FlashText = "This is some secret data stored in the flash memory together with the firmware. Exception(al) failure...!"

// DefaultDelayCycles is the busy-wait length between two toggles.
const DefaultDelayCycles uint32 = 1 << 18

// Delayer waits for a number of CPU cycles.
// The wall-clock duration depends on the core clock and is not
// calibrated.
type Delayer interface {
	Delay(cycles uint32)
}

// DelayFunc is the func form of Delayer.
type DelayFunc func(cycles uint32)

// Delay implements Delayer.
func (f DelayFunc) Delay(cycles uint32) {
	f(cycles)
}

// Config selects the LED pin and the blink timing.
type Config struct {
	Port        hal.Port
	Pins        hal.Pins
	Speed       hal.Speed
	Drive       hal.Drive
	DelayCycles uint32
}

// DefaultConfig drives LED2 of the Nucleo-F103RB (PA5).
var DefaultConfig = Config{
	Port:        hal.PortA,
	Pins:        hal.Pin(5),
	Speed:       hal.Speed2MHz,
	Drive:       hal.DrivePushPull,
	DelayCycles: DefaultDelayCycles,
}

// Loop is the blink firmware bound to a HAL.
type Loop struct {
	Config
	HAL     hal.HAL
	Delayer Delayer
}

// New creates a Loop.
func New(h hal.HAL, d Delayer, conf Config) *Loop {
	return &Loop{Config: conf, HAL: h, Delayer: d}
}

// Start enables the port clock, configures the pin as output and
// drives it low. It must be called once before Step or Run.
func (l *Loop) Start() {
	l.HAL.EnableClock(l.Port.Clock())
	l.HAL.SetMode(l.Port, l.Speed, l.Drive, l.Pins)
	l.HAL.Clear(l.Port, l.Pins)
}

// Step runs one iteration: wait, then toggle.
func (l *Loop) Step() {
	l.Delayer.Delay(l.DelayCycles)
	l.HAL.Toggle(l.Port, l.Pins)
}

// RunN runs n iterations and returns.
func (l *Loop) RunN(n int) {
	for i := 0; i < n; i++ {
		l.Step()
	}
}

// Run iterates forever. It never returns; callers needing a bounded
// run use Step or RunN.
func (l *Loop) Run() {
	for {
		l.Step()
	}
}

// Main starts the loop and runs it forever.
func (l *Loop) Main() {
	l.Start()
	l.Run()
}
