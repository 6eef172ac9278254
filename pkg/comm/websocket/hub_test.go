package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitClients(t *testing.T, h *Hub, n int) {
	deadline := time.Now().Add(time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expect %d clients, got %d", n, h.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	c1, err := Dial(url)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := Dial(url)
	require.NoError(t, err)
	waitClients(t, hub, 2)

	require.NoError(t, hub.WritePacket([]byte{1, 2, 3}))
	for _, c := range []*ReadWriter{c1, c2} {
		pkt, err := c.ReadPacket()
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3}, pkt)
	}

	require.NoError(t, c2.Close())
	waitClients(t, hub, 1)
	require.NoError(t, hub.WritePacket([]byte{4}))
	pkt, err := c1.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{4}, pkt)
}
