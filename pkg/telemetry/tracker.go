package telemetry

import (
	"sort"
	"time"

	fx "github.com/robotalks/blinky.go/pkg/framework"
	"github.com/robotalks/blinky.go/pkg/hal"
)

// BoardGone is posted when a board clears its metadata.
type BoardGone struct {
	BoardID string
}

// BoardStats is what the Tracker knows about one board.
type BoardStats struct {
	BoardID string
	Meta    *BoardMeta

	Events       uint64
	Level        hal.Level
	Toggles      uint64
	ParityErrors uint64
	// Missed counts toggles skipped in the event sequence, e.g. events
	// dropped by a publisher.
	Missed uint64
	// Period is the simulated time between the last two toggles.
	Period      time.Duration
	LastElapsed time.Duration
	LastSeen    time.Time
}

// Tracker is a Controller keeping BoardStats from PinEvent, BoardMeta
// and BoardGone messages.
type Tracker struct {
	// OnEvent is called after each PinEvent is accounted.
	OnEvent func(*BoardStats, *PinEvent)

	boards map[string]*BoardStats
}

// NewTracker creates a Tracker.
func NewTracker() *Tracker {
	return &Tracker{boards: make(map[string]*BoardStats)}
}

// Control implements Controller.
func (t *Tracker) Control(cc fx.ControlContext) error {
	for _, msg := range cc.Messages() {
		t.Handle(msg)
	}
	return nil
}

// Handle accounts one message. Unknown messages are ignored.
func (t *Tracker) Handle(msg fx.Message) {
	switch m := msg.(type) {
	case *PinEvent:
		t.Observe(m)
	case *BoardMeta:
		t.board(m.BoardId).Meta = m
	case *BoardGone:
		delete(t.boards, m.BoardID)
	}
}

// Observe accounts one PinEvent.
func (t *Tracker) Observe(ev *PinEvent) *BoardStats {
	s := t.board(ev.BoardId)
	if !ev.ParityOK() {
		s.ParityErrors++
	}
	switch {
	case ev.Toggles == 0:
		s.Period = 0
	case s.Events > 0 && ev.Toggles > s.Toggles:
		s.Missed += ev.Toggles - s.Toggles - 1
		s.Period = (ev.Elapsed() - s.LastElapsed) / time.Duration(ev.Toggles-s.Toggles)
	}
	s.Events++
	s.Level = ev.PinLevel()
	s.Toggles = ev.Toggles
	s.LastElapsed = ev.Elapsed()
	s.LastSeen = ev.Timestamp()
	if fn := t.OnEvent; fn != nil {
		fn(s, ev)
	}
	return s
}

// Board returns the stats of a board, nil if unknown.
func (t *Tracker) Board(id string) *BoardStats {
	return t.boards[id]
}

// Boards returns the known board IDs, sorted.
func (t *Tracker) Boards() []string {
	ids := make([]string, 0, len(t.boards))
	for id := range t.boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t *Tracker) board(id string) *BoardStats {
	s := t.boards[id]
	if s == nil {
		s = &BoardStats{BoardID: id}
		t.boards[id] = s
	}
	return s
}
