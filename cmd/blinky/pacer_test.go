//go:build !stm32f103
// +build !stm32f103

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/blinky.go/pkg/blink"
	"github.com/robotalks/blinky.go/pkg/hal"
	"github.com/robotalks/blinky.go/pkg/hal/sim"
)

func TestPacer(t *testing.T) {
	testCases := []struct {
		name    string
		clockHz uint64
		speed   float64
		slept   time.Duration
	}{
		{name: "real time", clockHz: 8000000, speed: 1, slept: 32768 * time.Microsecond},
		{name: "double speed", clockHz: 8000000, speed: 2, slept: 16384 * time.Microsecond},
		{name: "unpaced", clockHz: 8000000, speed: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			board := sim.NewBoard()
			board.ClockHz = tc.clockHz
			p := newPacer(board, tc.speed)
			var slept []time.Duration
			p.sleep = func(d time.Duration) { slept = append(slept, d) }

			l := blink.New(board, p, blink.DefaultConfig)
			l.Start()
			l.RunN(2)
			require.Equal(t, uint64(2*blink.DefaultDelayCycles), board.Cycles())
			require.Equal(t, hal.Low, board.Level(hal.PortA, 5))
			if tc.slept == 0 {
				require.Empty(t, slept)
			} else {
				require.Equal(t, []time.Duration{tc.slept, tc.slept}, slept)
			}
		})
	}
}
