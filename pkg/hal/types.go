// Package hal defines the hardware abstraction the blink firmware is
// written against.
//
// Every operation is synchronous and infallible: on the targets this
// repository supports, clock gating and GPIO configuration are plain
// register writes with no completion status.
package hal

import "fmt"

// Peripheral identifies a clock-gated peripheral.
// The value encodes the enable register (upper bits) and the bit
// position inside it (lower 5 bits).
type Peripheral uint16

// Bus selects the RCC enable register of a Peripheral.
type Bus uint8

// Clock buses of the STM32F1 family.
const (
	BusAHB  Bus = 0
	BusAPB1 Bus = 1
	BusAPB2 Bus = 2
)

// MakePeripheral creates a Peripheral from a bus and an enable bit.
func MakePeripheral(bus Bus, bit uint) Peripheral {
	return Peripheral(uint16(bus)<<5 | uint16(bit&0x1f))
}

// Bus returns the enable register the peripheral lives on.
func (p Peripheral) Bus() Bus {
	return Bus(p >> 5)
}

// Bit returns the enable bit position.
func (p Peripheral) Bit() uint {
	return uint(p & 0x1f)
}

// Mask returns the enable bit as a mask.
func (p Peripheral) Mask() uint32 {
	return 1 << p.Bit()
}

// Well-known peripherals (RCC_APB2ENR on STM32F1).
var (
	PeriphAFIO  = MakePeripheral(BusAPB2, 0)
	PeriphGPIOA = MakePeripheral(BusAPB2, 2)
	PeriphGPIOB = MakePeripheral(BusAPB2, 3)
	PeriphGPIOC = MakePeripheral(BusAPB2, 4)
	PeriphGPIOD = MakePeripheral(BusAPB2, 5)
	PeriphGPIOE = MakePeripheral(BusAPB2, 6)
)

// String implements fmt.Stringer.
func (p Peripheral) String() string {
	switch p {
	case PeriphAFIO:
		return "AFIO"
	case PeriphGPIOA, PeriphGPIOB, PeriphGPIOC, PeriphGPIOD, PeriphGPIOE:
		return "GPIO" + string(rune('A'+p.Bit()-PeriphGPIOA.Bit()))
	}
	return fmt.Sprintf("periph(%d:%d)", p.Bus(), p.Bit())
}

// Port identifies a GPIO port.
type Port uint8

// GPIO ports.
const (
	PortA Port = iota
	PortB
	PortC
	PortD
	PortE
	NumPorts int = iota
)

// String implements fmt.Stringer.
func (p Port) String() string {
	return "GPIO" + string(rune('A'+p))
}

// Clock returns the peripheral gating the clock of the port.
func (p Port) Clock() Peripheral {
	return MakePeripheral(BusAPB2, PeriphGPIOA.Bit()+uint(p))
}

// Pins is a mask of pins within a port.
type Pins uint16

// Pin returns the mask of the single pin n.
func Pin(n uint) Pins {
	return Pins(1) << (n & 0xf)
}

// Each calls fn with the index of every pin in the mask.
func (p Pins) Each(fn func(n uint)) {
	for n := uint(0); n < 16; n++ {
		if p&Pin(n) != 0 {
			fn(n)
		}
	}
}

// String implements fmt.Stringer.
func (p Pins) String() string {
	return fmt.Sprintf("%#04x", uint16(p))
}

// Speed is the output slew rate class.
type Speed uint8

// Output speeds, encoded as the MODE field of CRL/CRH.
const (
	SpeedInput Speed = 0
	Speed10MHz Speed = 1
	Speed2MHz  Speed = 2
	Speed50MHz Speed = 3
)

// Drive is the output drive configuration, encoded as the CNF field
// of CRL/CRH when the pin is an output.
type Drive uint8

// Output drive modes.
const (
	DrivePushPull         Drive = 0
	DriveOpenDrain        Drive = 1
	DriveAltFuncPushPull  Drive = 2
	DriveAltFuncOpenDrain Drive = 3
)

// Level is the logical output level of a pin.
// Low is the state left by Clear; whether that lights the LED depends
// on board wiring.
type Level bool

// Output levels.
const (
	Low  Level = false
	High Level = true
)

// String implements fmt.Stringer.
func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// ClockControl gates peripheral clocks.
type ClockControl interface {
	// EnableClock supplies the clock to the peripheral.
	EnableClock(Peripheral)
}

// GPIO controls pins of the GPIO ports.
type GPIO interface {
	// SetMode configures pins with the given speed and drive mode.
	SetMode(port Port, speed Speed, drive Drive, pins Pins)
	// Clear drives pins low.
	Clear(port Port, pins Pins)
	// Toggle inverts the output level of pins.
	Toggle(port Port, pins Pins)
}

// HAL is the full collaborator used by the firmware.
type HAL interface {
	ClockControl
	GPIO
}
