// Package websocket streams telemetry packets to websocket clients.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// DefaultQueueLen is the per-client backlog before packets are dropped.
const DefaultQueueLen = 64

// Hub fans out packets to all connected clients. A client which can't
// keep up loses packets instead of slowing down the writer.
type Hub struct {
	QueueLen int

	lock    sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{QueueLen: DefaultQueueLen}
}

// Handler returns the http.Handler accepting clients.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// WritePacket implements PacketWriter.
func (h *Hub) WritePacket(pkt []byte) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- pkt:
		default:
			glog.V(2).Infof("websocket %s: packet dropped", conn.Request().RemoteAddr)
		}
	}
	return nil
}

func (h *Hub) serve(conn *websocket.Conn) {
	queueLen := h.QueueLen
	if queueLen <= 0 {
		queueLen = DefaultQueueLen
	}
	ch := make(chan []byte, queueLen)
	h.lock.Lock()
	if h.clients == nil {
		h.clients = make(map[*websocket.Conn]chan []byte)
	}
	h.clients[conn] = ch
	h.lock.Unlock()
	remote := conn.Request().RemoteAddr
	glog.Infof("websocket %s connected", remote)

	defer func() {
		h.lock.Lock()
		delete(h.clients, conn)
		h.lock.Unlock()
		glog.Infof("websocket %s disconnected", remote)
	}()

	// Clients don't send anything; reading detects the close.
	closed := make(chan struct{})
	go func() {
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		close(closed)
	}()

	for {
		select {
		case <-closed:
			return
		case pkt := <-ch:
			if err := websocket.Message.Send(conn, pkt); err != nil {
				glog.Warningf("websocket %s: %v", remote, err)
				return
			}
		}
	}
}

// Server serves a Hub on an address.
type Server struct {
	Addr string
	Hub  *Hub
	Path string
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	path := s.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, s.Hub.Handler())
	srv := &http.Server{Addr: s.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("websocket listening on %s%s", s.Addr, path)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		srv.Close()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
