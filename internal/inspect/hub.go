package inspect

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Message is the JSON form of a reactive.Event sent to websocket clients.
type Message struct {
	Seq   uint64 `json:"seq"`
	Type  string `json:"type"`
	Node  uint64 `json:"node,omitempty"`
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Count int    `json:"count,omitempty"`
	Owner string `json:"owner,omitempty"`
	Value any    `json:"value,omitempty"`
	Where string `json:"where,omitempty"`
	Panic string `json:"panic,omitempty"`
}

// FromEvent converts e. Cell values arrive already in their plain
// projection.
func FromEvent(seq uint64, e reactive.Event) Message {
	m := Message{
		Seq:   seq,
		Type:  e.Type.String(),
		Node:  e.Node,
		Name:  e.Name,
		Count: e.Count,
		Value: e.Value,
		Where: e.Where,
	}
	if e.Kind != 0 {
		m.Kind = e.Kind.String()
	}
	if !e.Owner.IsZero() {
		m.Owner = e.Owner.String()
	}
	if e.Panic != nil {
		m.Panic = fmt.Sprint(e.Panic)
	}
	return m
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a reactive.Observer that fans engine events out to websocket
// clients. Observe never blocks the runtime: a client whose buffer is full
// misses the event.
type Hub struct {
	clients  map[*client]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	buffer   int
	logger   *slog.Logger

	seq     atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates a hub that buffers up to buffer encoded events per client.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		buffer:  buffer,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // inspection is a local debugging surface
			},
		},
	}
}

// Observe implements reactive.Observer. The event is encoded here, on the
// runtime's goroutine, so no engine value is shared with the writers.
func (h *Hub) Observe(e reactive.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg := FromEvent(h.seq.Add(1), e)
	data, err := json.Marshal(msg)
	if err != nil {
		msg.Value = fmt.Sprint(msg.Value)
		if data, err = json.Marshal(msg); err != nil {
			h.logger.Warn("inspect: dropping unencodable event", "type", msg.Type, "err", err)
			return
		}
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

// HandleWebSocket upgrades the request and streams events until the client
// disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("inspect: client connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
}

// remove unregisters c once and closes its connection and queue.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(c.send)
	c.conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of events not delivered to some client because
// its buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.remove(c)
	}
}
