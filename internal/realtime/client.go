package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one WebSocket subscriber.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu          sync.RWMutex
	collections map[string]bool // empty means every collection
}

// subscribeMsg replaces the client's collection filter.
type subscribeMsg struct {
	Type        string   `json:"type"`
	Collections []string `json:"collections"`
}

func newClient(h *Hub, conn *websocket.Conn, collections []string) *Client {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	c.subscribe(collections)
	return c
}

func (c *Client) subscribe(collections []string) {
	set := make(map[string]bool, len(collections))
	for _, name := range collections {
		if name != "" {
			set[name] = true
		}
	}
	c.mu.Lock()
	c.collections = set
	c.mu.Unlock()
}

func (c *Client) wants(collection string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.collections) == 0 || c.collections[collection]
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxReadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg subscribeMsg
		if json.Unmarshal(raw, &msg) != nil || msg.Type != "subscribe" {
			continue
		}
		c.subscribe(msg.Collections)
	}
}
