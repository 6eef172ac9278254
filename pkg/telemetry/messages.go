// Package telemetry encodes board pin events and metadata for the
// monitors, and tracks the blink cadence on the receiving side.
package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/blinky.go/pkg/blink"
	"github.com/robotalks/blinky.go/pkg/hal"
	"github.com/robotalks/blinky.go/pkg/hal/sim"
	pb "github.com/robotalks/blinky.go/pkg/proto/blinky/v1"
)

// TypeIDs
const (
	PinEventTypeID  uint32 = 0x80010001
	BoardMetaTypeID uint32 = 0x80010002
)

// Message can be serialized over the wire.
type Message interface {
	TypeID() uint32
	Serializable() proto.Message
}

// PinEvent reports a change of an output pin.
type PinEvent struct {
	pb.PinEvent
}

// NewPinEvent converts an event of the simulated board.
func NewPinEvent(boardID string, ev sim.PinEvent, now time.Time) *PinEvent {
	return &PinEvent{PinEvent: pb.PinEvent{
		BoardId:     boardID,
		Port:        uint32(ev.Port),
		Pin:         uint32(ev.Pin),
		Level:       bool(ev.Level),
		Toggles:     ev.Toggles,
		Cycles:      ev.Cycles,
		ElapsedNs:   int64(ev.Elapsed),
		TimestampNs: now.UnixNano(),
	}}
}

// TypeID implements Message.
func (m *PinEvent) TypeID() uint32 { return PinEventTypeID }

// Serializable implements Message.
func (m *PinEvent) Serializable() proto.Message { return &m.PinEvent }

// PinLevel returns the level as hal.Level.
func (m *PinEvent) PinLevel() hal.Level { return hal.Level(m.Level) }

// Elapsed returns the simulated time of the event.
func (m *PinEvent) Elapsed() time.Duration { return time.Duration(m.ElapsedNs) }

// Timestamp returns the host time the event was published.
func (m *PinEvent) Timestamp() time.Time { return time.Unix(0, m.TimestampNs) }

// ParityOK reports whether the level matches the toggle count: low
// after an even number of toggles since the pin was cleared, high
// after an odd one.
func (m *PinEvent) ParityOK() bool {
	return m.Level == (m.Toggles%2 == 1)
}

// PinName formats port and pin like PA5.
func (m *PinEvent) PinName() string {
	return fmt.Sprintf("P%c%d", 'A'+rune(m.Port), m.Pin)
}

// BoardMeta describes a board.
type BoardMeta struct {
	pb.BoardMeta
}

// NewBoardMeta describes a board running the blink loop with conf.
// Only the lowest pin of conf.Pins is reported.
func NewBoardMeta(boardID, mcu string, clockHz uint64, conf blink.Config) *BoardMeta {
	m := &BoardMeta{BoardMeta: pb.BoardMeta{
		BoardId:     boardID,
		Mcu:         mcu,
		ClockHz:     clockHz,
		Port:        uint32(conf.Port),
		DelayCycles: conf.DelayCycles,
		Description: conf.Port.String() + " " + conf.Pins.String(),
	}}
	pin := -1
	conf.Pins.Each(func(n uint) {
		if pin < 0 {
			pin = int(n)
		}
	})
	if pin >= 0 {
		m.Pin = uint32(pin)
	}
	return m
}

// BlinkPeriod is the nominal time between two toggles.
func (m *BoardMeta) BlinkPeriod() time.Duration {
	if m.ClockHz == 0 {
		return 0
	}
	return time.Duration(uint64(m.DelayCycles) * uint64(time.Second) / m.ClockHz)
}

// TypeID implements Message.
func (m *BoardMeta) TypeID() uint32 { return BoardMetaTypeID }

// Serializable implements Message.
func (m *BoardMeta) Serializable() proto.Message { return &m.BoardMeta }

// MessageTypes maps type IDs to constructors.
var MessageTypes = map[uint32]func() Message{
	PinEventTypeID:  func() Message { return &PinEvent{} },
	BoardMetaTypeID: func() Message { return &BoardMeta{} },
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// ErrEmptyPacket indicates a zero-length packet, e.g. a cleared
// retained MQTT message.
var ErrEmptyPacket = errors.New("empty packet")

// Encode wraps the message in a Typed envelope.
func Encode(msg Message) ([]byte, error) {
	data, err := proto.Marshal(msg.Serializable())
	if err != nil {
		return nil, err
	}
	return proto.Marshal(&pb.Typed{TypeId: msg.TypeID(), Message: data})
}

// Decode decodes a Typed envelope into the actual message.
func Decode(pkt []byte) (Message, error) {
	if len(pkt) == 0 {
		return nil, ErrEmptyPacket
	}
	var typed pb.Typed
	if err := proto.Unmarshal(pkt, &typed); err != nil {
		return nil, err
	}
	newMsg, ok := MessageTypes[typed.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: typed.TypeId}
	}
	msg := newMsg()
	if err := proto.Unmarshal(typed.Message, msg.Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}
