package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/blinky.go/pkg/comm"
	"github.com/robotalks/blinky.go/pkg/hal/sim"
)

// DefaultQueueLen is the event backlog of a Publisher.
const DefaultQueueLen = 256

// Publisher turns pin changes of a simulated board into encoded
// PinEvents written to a PacketWriter. PinChanged never blocks the
// board: events beyond the backlog are dropped and counted.
type Publisher struct {
	BoardID string
	Writer  comm.PacketWriter
	Now     func() time.Time

	events  chan *PinEvent
	dropped uint64
}

// NewPublisher creates a Publisher.
func NewPublisher(boardID string, w comm.PacketWriter) *Publisher {
	return &Publisher{
		BoardID: boardID,
		Writer:  w,
		Now:     time.Now,
		events:  make(chan *PinEvent, DefaultQueueLen),
	}
}

// PinChanged implements sim.PinListener.
func (p *Publisher) PinChanged(ev sim.PinEvent) {
	select {
	case p.events <- NewPinEvent(p.BoardID, ev, p.Now()):
	default:
		atomic.AddUint64(&p.dropped, 1)
	}
}

// Dropped returns the number of events dropped so far.
func (p *Publisher) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "publisher"
}

// Run implements Runnable. Write errors are logged and the event is
// lost; the transports reconnect by themselves.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if n := p.Dropped(); n > 0 {
				glog.Warningf("%d events dropped", n)
			}
			return ctx.Err()
		case ev := <-p.events:
			pkt, err := Encode(ev)
			if err != nil {
				return err
			}
			if err := p.Writer.WritePacket(pkt); err != nil {
				glog.Warningf("publish %s: %v", ev.PinName(), err)
			}
		}
	}
}
