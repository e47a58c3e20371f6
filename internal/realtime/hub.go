// Package realtime pushes content change events to connected browsers over
// WebSocket so public pages refresh without polling.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iwvelando/temple-portal/internal/metrics"
	"github.com/iwvelando/temple-portal/internal/store"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 64
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxReadBytes = 1024
)

// Event is the envelope written to subscribers.
type Event struct {
	Type string `json:"type"`
	store.Change
}

// Hub tracks connected clients and fans change events out to them.
type Hub struct {
	logger   *zap.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub returns an empty hub. m may be nil.
func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

// Publish implements store.Publisher. Slow clients drop events rather than
// block the writer.
func (h *Hub) Publish(c store.Change) {
	msg, err := json.Marshal(Event{Type: "change", Change: c})
	if err != nil {
		h.logger.Error("failed to encode change event",
			zap.String("op", "realtime.Publish"),
			zap.Error(err),
		)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.wants(c.Collection) {
			continue
		}
		select {
		case client.send <- msg:
		default:
			if h.metrics != nil {
				h.metrics.RealtimeDropped.Inc()
			}
			h.logger.Warn("dropped change event for slow client",
				zap.String("op", "realtime.Publish"),
				zap.String("collection", c.Collection),
			)
		}
	}
}

// ServeHTTP upgrades the request and registers the connection. The optional
// "collections" query parameter may be repeated to limit the subscription.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("op", "realtime.ServeHTTP"),
			zap.Error(err),
		)
		return
	}

	client := newClient(h, conn, r.URL.Query()["collections"])
	if !h.add(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	h.updateGauge()
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.updateGauge()
	h.logger.Debug("realtime client connected",
		zap.String("op", "realtime.add"),
		zap.Int("clients", count),
	)
	return true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	h.updateGauge()
	h.logger.Debug("realtime client disconnected",
		zap.String("op", "realtime.remove"),
		zap.Int("clients", count),
	)
}

func (h *Hub) updateGauge() {
	if h.metrics != nil {
		h.metrics.RealtimeClients.Set(float64(h.ClientCount()))
	}
}
