package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/gamerelay-go/internal/dependencies/random"
	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/protocol"
)

const (
	// connIDLength is the length of generated connection identifiers
	connIDLength = 16
	// connIDAlphabet is the characters used in connection identifiers
	connIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Delivery errors
var (
	ErrConnectionGone = errors.New("connection gone")
	ErrBufferFull     = errors.New("send buffer full")
)

// Dispatcher consumes inbound connection events
type Dispatcher interface {
	Dispatch(conn model.ConnectionID, event protocol.ClientEvent)
	Disconnect(conn model.ConnectionID)
}

// Hub tracks live connections by their assigned identifiers and delivers
// outbound events to them
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnectionID]*Client
	random  random.Random
	logger  *slog.Logger
}

// NewHub creates a new Hub
func NewHub(rnd random.Random, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnectionID]*Client),
		random:  rnd,
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// newClient wraps a socket in a Client with a fresh connection ID
func (h *Hub) newClient(conn *websocket.Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	var id model.ConnectionID
	for {
		id = model.ConnectionID(h.random.String(connIDLength, connIDAlphabet))
		if _, taken := h.clients[id]; !taken {
			break
		}
	}

	client := &Client{
		id:          id,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		hub:         h,
		connectedAt: time.Now(),
	}
	h.clients[id] = client
	return client
}

// unregister drops a client and closes its send channel
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
	}
}

// Send delivers an event to one connection. It never blocks: a client whose
// buffer is full gets the event dropped and the error reported to the caller.
func (h *Hub) Send(conn model.ConnectionID, event protocol.ServerEvent) error {
	h.mu.RLock()
	client, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("connection %s: %w", conn, ErrConnectionGone)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case client.send <- data:
		return nil
	default:
		return fmt.Errorf("connection %s: %w", conn, ErrBufferFull)
	}
}

// ClientCount returns the number of live connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close tears down every connection, e.g. on shutdown
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
}
