package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests into relay connections
type Handler struct {
	hub        *Hub
	dispatcher Dispatcher
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHandler creates the websocket endpoint handler
func NewHandler(hub *Hub, dispatcher Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Sessions are unauthenticated and codes are unguessable;
				// cross-origin clients are allowed.
				return true
			},
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the connection, assigns it an identifier, and pumps
// events until the peer goes away
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := h.hub.newClient(conn)
	h.logger.Info("connection established",
		slog.String("connection_id", string(client.id)),
		slog.String("remote_addr", r.RemoteAddr))

	go client.writePump()
	client.readPump(h.dispatcher)

	h.hub.unregister(client)
	h.dispatcher.Disconnect(client.id)

	h.logger.Info("connection closed",
		slog.String("connection_id", string(client.id)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}
