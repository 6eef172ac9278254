// Package comm carries encoded telemetry packets between boards and
// monitors over pluggable transports.
package comm

import (
	"sync"

	fx "github.com/robotalks/blinky.go/pkg/framework"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// WritePacketFunc is the func form of PacketWriter.
type WritePacketFunc func([]byte) error

// WritePacket implements PacketWriter.
func (f WritePacketFunc) WritePacket(pkt []byte) error {
	return f(pkt)
}

// MultiWriter writes every packet to all Writers.
type MultiWriter struct {
	Writers []PacketWriter

	lock sync.Mutex
}

// Add appends writers. nil will be skipped.
func (w *MultiWriter) Add(writers ...PacketWriter) *MultiWriter {
	for _, writer := range writers {
		if writer != nil {
			w.Writers = append(w.Writers, writer)
		}
	}
	return w
}

// WritePacket implements PacketWriter. All writers are tried even
// if some fail.
func (w *MultiWriter) WritePacket(pkt []byte) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	var errs fx.AggregatedError
	for _, writer := range w.Writers {
		errs.Add(writer.WritePacket(pkt))
	}
	return errs.Aggregate()
}
