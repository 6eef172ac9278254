package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/robotalks/blinky.go/pkg/comm"
	"github.com/robotalks/blinky.go/pkg/comm/mqtt"
	"github.com/robotalks/blinky.go/pkg/comm/stream"
	"github.com/robotalks/blinky.go/pkg/comm/websocket"
	fx "github.com/robotalks/blinky.go/pkg/framework"
	"github.com/robotalks/blinky.go/pkg/telemetry"
)

// poster receives decoded messages.
type poster interface {
	PostMessage(fx.Message)
}

// postPacket decodes pkt and posts the message. An empty packet from
// a board means the board is gone.
func postPacket(p poster, boardID string, pkt []byte) {
	if len(pkt) == 0 {
		if boardID != "" {
			p.PostMessage(&telemetry.BoardGone{BoardID: boardID})
		}
		return
	}
	msg, err := telemetry.Decode(pkt)
	if err != nil {
		log.Printf("%s: bad message: %v", boardID, err)
		return
	}
	p.PostMessage(msg)
}

// readPackets posts packets from r until it fails.
func readPackets(p poster, r comm.PacketReader) error {
	for {
		pkt, err := r.ReadPacket()
		if err != nil {
			return err
		}
		postPacket(p, "", pkt)
	}
}

func mqttSource(brokerURL string, loop *fx.Loop) (fx.Runnable, error) {
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	handler := func(topic string, payload []byte) {
		postPacket(loop, mqtt.BoardIDFromTopic(topic), payload)
		loop.TriggerNext()
	}
	q.Sub(mqtt.MetaFilter, handler)
	q.Sub(mqtt.EventsFilter, handler)
	return fx.NamedRun("mqtt", fx.RunFunc(func(ctx context.Context) error {
		if err := q.Connect(); err != nil {
			return err
		}
		<-ctx.Done()
		q.Close()
		return ctx.Err()
	})), nil
}

func websocketSource(url string, loop *fx.Loop) fx.Runnable {
	return fx.NamedRun("websocket", fx.RunFunc(func(ctx context.Context) error {
		conn, err := websocket.Dial(url)
		if err != nil {
			return err
		}
		return fx.RunWithContextCloser(ctx, conn, func() error {
			return readPackets(postFunc(func(msg fx.Message) {
				loop.PostMessage(msg)
				loop.TriggerNext()
			}), conn)
		})
	}))
}

type postFunc func(fx.Message)

func (f postFunc) PostMessage(msg fx.Message) {
	f(msg)
}

// replay feeds a record file to the tracker.
func replay(fn string, tracker *telemetry.Tracker) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()
	err = readPackets(postFunc(tracker.Handle), stream.New(f))
	if err == io.EOF {
		return nil
	}
	return err
}
