package main

import (
	"log"

	fx "github.com/robotalks/blinky.go/pkg/framework"
	"github.com/robotalks/blinky.go/pkg/telemetry"
)

func printMessages(cc fx.ControlContext) error {
	for _, msg := range cc.Messages() {
		switch m := msg.(type) {
		case *telemetry.BoardMeta:
			log.Printf("%s: [meta] %s", m.BoardId, m.String())
		case *telemetry.BoardGone:
			log.Printf("%s: gone", m.BoardID)
		}
	}
	return nil
}

func printEvent(s *telemetry.BoardStats, ev *telemetry.PinEvent) {
	var flags string
	if !ev.ParityOK() {
		flags += " PARITY"
	}
	log.Printf("%s: %s %s toggles=%d t=%s period=%s%s",
		ev.BoardId, ev.PinName(), ev.PinLevel(), ev.Toggles, ev.Elapsed(), s.Period, flags)
}

func printSummary(s *telemetry.BoardStats) {
	log.Printf("%s: events=%d toggles=%d missed=%d parity-errors=%d period=%s",
		s.BoardID, s.Events, s.Toggles, s.Missed, s.ParityErrors, s.Period)
}
