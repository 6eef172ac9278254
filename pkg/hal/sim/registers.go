package sim

import "github.com/robotalks/blinky.go/pkg/hal"

// STM32F1 register map, the subset the simulated board models.
const (
	RCCBase    uint32 = 0x40021000
	RCCAHBENR  uint32 = RCCBase + 0x14
	RCCAPB2ENR uint32 = RCCBase + 0x18
	RCCAPB1ENR uint32 = RCCBase + 0x1c

	GPIOABase  uint32 = 0x40010800
	GPIOStride uint32 = 0x400

	GPIOCRL  uint32 = 0x00
	GPIOCRH  uint32 = 0x04
	GPIOIDR  uint32 = 0x08
	GPIOODR  uint32 = 0x0c
	GPIOBSRR uint32 = 0x10
	GPIOBRR  uint32 = 0x14
)

// Reset values.
const (
	// ResetCR puts every pin in floating input mode.
	ResetCR uint32 = 0x44444444
)

// GPIOReg returns the address of a GPIO register of the port.
func GPIOReg(port hal.Port, offset uint32) uint32 {
	return GPIOABase + uint32(port)*GPIOStride + offset
}

// EnableReg returns the RCC enable register of the bus.
func EnableReg(bus hal.Bus) uint32 {
	switch bus {
	case hal.BusAHB:
		return RCCAHBENR
	case hal.BusAPB1:
		return RCCAPB1ENR
	default:
		return RCCAPB2ENR
	}
}

// ConfigReg returns the CRL or CRH address and the field shift of pin n.
func ConfigReg(port hal.Port, n uint) (addr uint32, shift uint) {
	if n < 8 {
		return GPIOReg(port, GPIOCRL), n * 4
	}
	return GPIOReg(port, GPIOCRH), (n - 8) * 4
}

// ConfigField encodes MODE and CNF into the 4-bit pin config field.
func ConfigField(speed hal.Speed, drive hal.Drive) uint32 {
	return uint32(drive&3)<<2 | uint32(speed&3)
}
