package mqtt

import (
	"context"
	"fmt"
	"sync"
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records the calls made by Queue. Methods not overridden
// panic through the nil embedded interface.
type fakeClient struct {
	paho.Client

	lock      sync.Mutex
	calls     []string
	published []published
	callbacks map[string]paho.MessageHandler
}

func newFakeClient() *fakeClient {
	return &fakeClient{callbacks: make(map[string]paho.MessageHandler)}
}

func (c *fakeClient) record(call string) {
	c.lock.Lock()
	c.calls = append(c.calls, call)
	c.lock.Unlock()
}

func (c *fakeClient) recorded() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeClient) Connect() paho.Token {
	c.record("connect")
	return &paho.DummyToken{}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.record("disconnect")
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.record("pub " + topic)
	data, _ := payload.([]byte)
	c.lock.Lock()
	c.published = append(c.published, published{topic: topic, qos: qos, retained: retained, payload: data})
	c.lock.Unlock()
	return &paho.DummyToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.record("sub " + topic)
	c.lock.Lock()
	c.callbacks[topic] = callback
	c.lock.Unlock()
	return &paho.DummyToken{}
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token {
	for topic := range filters {
		c.Subscribe(topic, filters[topic], callback)
	}
	return &paho.DummyToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) paho.Token {
	for _, topic := range topics {
		c.record("unsub " + topic)
	}
	return &paho.DummyToken{}
}

// deliver passes a message to the callback of filter as the broker would.
func (c *fakeClient) deliver(filter, topic string, payload []byte) {
	c.lock.Lock()
	cb := c.callbacks[filter]
	c.lock.Unlock()
	if cb != nil {
		cb(c, &fakeMessage{topic: topic, payload: payload})
	}
}

type fakeMessage struct {
	paho.Message

	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

func newTestQueue(prefix string) (*Queue, *fakeClient) {
	c := newFakeClient()
	return &Queue{Client: c, TopicPrefix: prefix, subs: make(map[string][]*Subscription)}, c
}

func TestBoardLinkOptions(t *testing.T) {
	testCases := []struct {
		url      string
		prefix   string
		clientID string
	}{
		{url: "mqtt://broker/blinky/", prefix: "blinky/", clientID: "blinky:b1"},
		{url: "mqtt://broker", prefix: "", clientID: "blinky:b1"},
		{url: "mqtt://broker/blinky/?client-id=board", prefix: "blinky/", clientID: "board"},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			opts, prefix, err := boardLinkOptions(tc.url, "b1")
			require.NoError(t, err)
			require.Equal(t, tc.prefix, prefix)
			require.True(t, opts.WillEnabled)
			require.Equal(t, tc.prefix+"b1/meta", opts.WillTopic)
			require.True(t, opts.WillRetained)
			require.Equal(t, byte(1), opts.WillQos)
			require.Empty(t, opts.WillPayload)
			require.Equal(t, tc.clientID, opts.ClientID)
		})
	}

	_, _, err := boardLinkOptions("://bad", "b1")
	require.Error(t, err)
}

func TestQueueFanOut(t *testing.T) {
	q, c := newTestQueue("blinky/")
	var lock sync.Mutex
	var received []string
	handler := func(name string) Handler {
		return func(topic string, payload []byte) {
			lock.Lock()
			received = append(received, fmt.Sprintf("%s %s %s", name, topic, payload))
			lock.Unlock()
		}
	}

	sub1 := q.Sub(EventsFilter, handler("h1"))
	sub2 := q.Sub(EventsFilter, handler("h2"))
	require.NoError(t, sub1.Token.Error())
	require.NoError(t, sub2.Token.Error())
	require.Equal(t, []string{"sub blinky/+/events"}, c.recorded())

	c.deliver("blinky/+/events", "blinky/b1/events", []byte("x"))
	c.deliver("blinky/+/events", "other/b1/events", []byte("y"))
	require.ElementsMatch(t, []string{"h1 b1/events x", "h2 b1/events x"}, received)

	require.NoError(t, sub1.Close())
	require.Equal(t, []string{"sub blinky/+/events"}, c.recorded())
	received = nil
	c.deliver("blinky/+/events", "blinky/b2/events", []byte("z"))
	require.Equal(t, []string{"h2 b2/events z"}, received)

	require.NoError(t, sub2.Close())
	require.Equal(t, []string{"sub blinky/+/events", "unsub blinky/+/events"}, c.recorded())
}

func TestQueueResubscribeOnConnect(t *testing.T) {
	q, c := newTestQueue("blinky/")
	q.Sub(MetaFilter, func(string, []byte) {})
	var connected bool
	q.OnConnect = func(*Queue) { connected = true }
	q.onConnect(c)
	require.True(t, connected)
	require.Equal(t, []string{"sub blinky/+/meta", "sub blinky/+/meta"}, c.recorded())
}

func TestBoardLink(t *testing.T) {
	q, c := newTestQueue("blinky/")
	l := newBoardLink(q, "b1", []byte("meta"))

	// meta is retained on every (re)connect
	q.onConnect(c)
	require.NoError(t, l.WritePacket([]byte("event")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Run(ctx))

	require.Equal(t, []string{
		"pub blinky/b1/meta",
		"pub blinky/b1/events",
		"connect",
		"pub blinky/b1/meta",
		"disconnect",
	}, c.recorded())
	require.Equal(t, []published{
		{topic: "blinky/b1/meta", qos: 1, retained: true, payload: []byte("meta")},
		{topic: "blinky/b1/events", payload: []byte("event")},
		{topic: "blinky/b1/meta", qos: 1, retained: true},
	}, c.published)
}
