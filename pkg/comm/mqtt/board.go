package mqtt

import (
	"context"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Topic layout under the queue prefix:
//
//	<board-id>/meta    retained BoardMeta, cleared when the board leaves
//	<board-id>/events  PinEvents
const (
	EventsFilter = "+/events"
	MetaFilter   = "+/meta"
)

// EventsTopic returns the events topic of a board.
func EventsTopic(boardID string) string {
	return boardID + "/events"
}

// MetaTopic returns the meta topic of a board.
func MetaTopic(boardID string) string {
	return boardID + "/meta"
}

// BoardIDFromTopic extracts the board id from an events or meta topic.
func BoardIDFromTopic(topic string) string {
	if pos := strings.LastIndex(topic, "/"); pos > 0 {
		return topic[:pos]
	}
	return ""
}

// BoardLink publishes the telemetry of one board. It implements
// PacketWriter for events and Runnable for the connection lifetime.
type BoardLink struct {
	Queue   *Queue
	BoardID string

	meta []byte
}

// NewBoardLink creates a BoardLink. meta is published retained on
// every connect and cleared by the broker through the last will if the
// board disappears.
func NewBoardLink(brokerURL, boardID string, meta []byte) (*BoardLink, error) {
	opts, topicPrefix, err := boardLinkOptions(brokerURL, boardID)
	if err != nil {
		return nil, err
	}
	return newBoardLink(NewQueue(opts, topicPrefix), boardID, meta), nil
}

func boardLinkOptions(brokerURL, boardID string) (*paho.ClientOptions, string, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, "", err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(boardID), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("blinky:" + boardID)
	}
	return opts, topicPrefix, nil
}

func newBoardLink(q *Queue, boardID string, meta []byte) *BoardLink {
	l := &BoardLink{Queue: q, BoardID: boardID, meta: meta}
	q.OnConnect = func(q *Queue) {
		q.PubWith(MetaTopic(boardID), l.meta, 1, true)
	}
	return l
}

// WritePacket implements PacketWriter.
func (l *BoardLink) WritePacket(pkt []byte) error {
	token := l.Queue.Pub(EventsTopic(l.BoardID), pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (l *BoardLink) Run(ctx context.Context) error {
	if err := l.Queue.Connect(); err != nil {
		return err
	}
	<-ctx.Done()
	l.Queue.PubWith(MetaTopic(l.BoardID), nil, 1, true).Wait()
	return l.Queue.Close()
}
