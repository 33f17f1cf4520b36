package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping period must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 64 * 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one connected peer, identified by its assigned connection ID for
// the lifetime of the socket
type Client struct {
	id          model.ConnectionID
	conn        *websocket.Conn
	send        chan []byte
	hub         *Hub
	connectedAt time.Time
}

// readPump decodes inbound frames and hands them to the dispatcher. It runs
// until the socket closes; malformed payloads get an error event and the
// connection stays up.
func (c *Client) readPump(dispatcher Dispatcher) {
	defer func() {
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var event protocol.ClientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			_ = c.hub.Send(c.id, protocol.ServerEvent{
				Type:  protocol.ServerError,
				Error: "malformed event payload",
			})
			continue
		}

		dispatcher.Dispatch(c.id, event)
	}
}

// writePump drains the send buffer onto the socket and keeps the connection
// alive with transport-level pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
