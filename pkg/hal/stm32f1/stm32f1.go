//go:build stm32f103
// +build stm32f103

// Package stm32f1 implements hal.HAL on STM32F1 registers.
// It is built by TinyGo for the stm32f103 targets (bluepill,
// nucleo-f103rb).
package stm32f1

import (
	"device/arm"
	"device/stm32"
	"runtime/volatile"

	"github.com/robotalks/blinky.go/pkg/hal"
)

// HAL drives the on-chip RCC and GPIO registers.
type HAL struct{}

// New returns the register HAL.
func New() HAL {
	return HAL{}
}

// EnableClock implements hal.ClockControl.
func (HAL) EnableClock(p hal.Peripheral) {
	enableReg(p.Bus()).SetBits(p.Mask())
}

// SetMode implements hal.GPIO.
func (HAL) SetMode(port hal.Port, speed hal.Speed, drive hal.Drive, pins hal.Pins) {
	gpio := portRegs(port)
	field := uint32(drive&3)<<2 | uint32(speed&3)
	pins.Each(func(n uint) {
		reg, shift := &gpio.CRL, n*4
		if n >= 8 {
			reg, shift = &gpio.CRH, (n-8)*4
		}
		reg.ReplaceBits(field, 0xf, uint8(shift))
	})
}

// Clear implements hal.GPIO.
func (HAL) Clear(port hal.Port, pins hal.Pins) {
	portRegs(port).BRR.Set(uint32(pins))
}

// Toggle implements hal.GPIO.
// A single BSRR write sets the low pins and resets the high ones.
func (HAL) Toggle(port hal.Port, pins hal.Pins) {
	gpio := portRegs(port)
	odr := gpio.ODR.Get()
	gpio.BSRR.Set((odr&uint32(pins))<<16 | (^odr & uint32(pins)))
}

// BusyWait is a calibration-free delay executing one nop per cycle
// count. Its duration depends on the core clock and the compiler.
type BusyWait struct{}

// Delay implements blink.Delayer.
func (BusyWait) Delay(cycles uint32) {
	for i := uint32(0); i < cycles; i++ {
		arm.Asm("nop")
	}
}

func enableReg(bus hal.Bus) *volatile.Register32 {
	switch bus {
	case hal.BusAHB:
		return &stm32.RCC.AHBENR
	case hal.BusAPB1:
		return &stm32.RCC.APB1ENR
	default:
		return &stm32.RCC.APB2ENR
	}
}

func portRegs(port hal.Port) *stm32.GPIO_Type {
	switch port {
	case hal.PortB:
		return stm32.GPIOB
	case hal.PortC:
		return stm32.GPIOC
	case hal.PortD:
		return stm32.GPIOD
	case hal.PortE:
		return stm32.GPIOE
	default:
		return stm32.GPIOA
	}
}
