//go:build !stm32f103
// +build !stm32f103

package main

import (
	"time"

	"github.com/robotalks/blinky.go/pkg/hal/sim"
)

// pacer advances the simulated board and sleeps so that simulated time
// follows wall time scaled by Speed. Speed 0 runs unpaced.
type pacer struct {
	Board *sim.Board
	Speed float64

	sleep func(time.Duration)
}

func newPacer(board *sim.Board, speed float64) *pacer {
	return &pacer{Board: board, Speed: speed, sleep: time.Sleep}
}

func (p *pacer) duration(cycles uint32) time.Duration {
	if p.Speed <= 0 || p.Board.ClockHz == 0 {
		return 0
	}
	return time.Duration(float64(cycles) * float64(time.Second) / (float64(p.Board.ClockHz) * p.Speed))
}

// Delay implements blink.Delayer.
func (p *pacer) Delay(cycles uint32) {
	p.Board.Delay(cycles)
	if d := p.duration(cycles); d > 0 {
		p.sleep(d)
	}
}
