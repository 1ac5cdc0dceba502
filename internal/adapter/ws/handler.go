// Package ws implements the WebSocket adapter that pushes task changes to browsers.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// conn wraps a single WebSocket connection.
type conn struct {
	ws     *websocket.Conn
	cancel context.CancelFunc
}

// Hub manages all active WebSocket connections and broadcasts messages.
type Hub struct {
	originPatterns []string

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// NewHub creates a new WebSocket hub. origin is the configured CORS origin;
// "*" or "" accepts any origin.
func NewHub(origin string) *Hub {
	h := &Hub{conns: make(map[*conn]struct{})}
	if origin != "" && origin != "*" {
		h.originPatterns = []string{origin}
	}
	return h
}

// HandleWS upgrades the request to a WebSocket and blocks until the client
// goes away. The client is never expected to send anything.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: h.originPatterns}
	if len(h.originPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: ws, cancel: cancel}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr)

	defer func() {
		h.remove(c)
		_ = ws.Close(websocket.StatusNormalClosure, "")
	}()
	for {
		if _, _, err := ws.Read(ctx); err != nil {
			return
		}
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.ws.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			slog.Debug("websocket write failed", "error", err)
			go h.remove(c)
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected")
	}
}
