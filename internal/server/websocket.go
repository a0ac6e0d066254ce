package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/jamesruggles/scanledger/internal/records"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsSendBuffer   = 16
)

// wsClient is one subscribed connection. Events queue on send and are
// written by the connection's own handler goroutine.
type wsClient struct {
	send chan []byte
}

func newWSClient() *wsClient {
	return &wsClient{send: make(chan []byte, wsSendBuffer)}
}

// Hub fans record change events out to WebSocket clients subscribed to a
// record kind. It is the records.Publisher of the server's writer and never
// blocks on a client.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*wsClient]struct{}),
	}
}

func (h *Hub) Subscribe(kind string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[kind] == nil {
		h.clients[kind] = make(map[*wsClient]struct{})
	}
	h.clients[kind][c] = struct{}{}
}

func (h *Hub) Unsubscribe(kind string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(kind, c)
}

// remove drops c and closes its queue. h.mu must be held.
func (h *Hub) remove(kind string, c *wsClient) {
	conns, ok := h.clients[kind]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, kind)
	}
}

func (h *Hub) subscribers(kind string) []*wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*wsClient, 0, len(h.clients[kind]))
	for c := range h.clients[kind] {
		out = append(out, c)
	}
	return out
}

// Publish queues e for every subscriber of e.Kind. A client whose queue is
// full is disconnected.
func (h *Hub) Publish(e records.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("ws marshal error", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[e.Kind] {
		select {
		case c.send <- data:
		default:
			slog.Warn("ws client too slow, disconnecting", "kind", e.Kind)
			h.remove(e.Kind, c)
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for kind, conns := range h.clients {
		for c := range conns {
			h.remove(kind, c)
		}
	}
}

type wsSubscribeMsg struct {
	Kind string `json:"kind"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Error("ws accept error", "error", err)
		return
	}
	defer conn.CloseNow()

	_, data, err := conn.Read(r.Context())
	if err != nil {
		return
	}

	var msg wsSubscribeMsg
	if err := json.Unmarshal(data, &msg); err != nil ||
		(msg.Kind != records.KindArtifacts && msg.Kind != records.KindScans) {
		conn.Close(websocket.StatusInvalidFramePayloadData, "invalid subscribe message")
		return
	}

	c := newWSClient()
	s.hub.Subscribe(msg.Kind, c)
	defer s.hub.Unsubscribe(msg.Kind, c)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				slog.Debug("ws write error", "error", err)
				return
			}
		}
	}
}
