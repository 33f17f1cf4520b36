package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/gamerelay-go/internal/model"
)

// ClientEventType identifies an inbound event from a connection
type ClientEventType string

const (
	ClientCreate   ClientEventType = "create"
	ClientJoin     ClientEventType = "join"
	ClientMove     ClientEventType = "move"
	ClientChat     ClientEventType = "chat"
	ClientGameOver ClientEventType = "game_over"
	ClientPing     ClientEventType = "ping"
)

// ClientEvent is the closed set of requests a connection may send. It is a
// flat envelope; which fields are meaningful depends on Type, enforced by
// Validate.
type ClientEvent struct {
	Type       ClientEventType `json:"type"`
	SessionID  model.SessionID `json:"session_id,omitempty"`
	PlayerName string          `json:"player_name,omitempty"`
	Move       json.RawMessage `json:"move,omitempty"`
	State      json.RawMessage `json:"state,omitempty"`
	Message    string          `json:"message,omitempty"`
	Sender     string          `json:"sender,omitempty"`
	Result     string          `json:"result,omitempty"`
}

// Validate checks that the event carries the fields its type requires.
// Unknown types are rejected rather than coerced.
func (e *ClientEvent) Validate() error {
	switch e.Type {
	case ClientCreate:
		if e.PlayerName == "" {
			return fmt.Errorf("%w: create requires player_name", model.ErrInvalidEvent)
		}
	case ClientJoin:
		if e.SessionID == "" {
			return fmt.Errorf("%w: join requires session_id", model.ErrInvalidEvent)
		}
		if e.PlayerName == "" {
			return fmt.Errorf("%w: join requires player_name", model.ErrInvalidEvent)
		}
	case ClientMove:
		if e.SessionID == "" {
			return fmt.Errorf("%w: move requires session_id", model.ErrInvalidEvent)
		}
		if len(e.State) == 0 {
			return fmt.Errorf("%w: move requires state", model.ErrInvalidEvent)
		}
		if len(e.Move) == 0 {
			return fmt.Errorf("%w: move requires move", model.ErrInvalidEvent)
		}
	case ClientChat:
		if e.SessionID == "" {
			return fmt.Errorf("%w: chat requires session_id", model.ErrInvalidEvent)
		}
		if e.Message == "" {
			return fmt.Errorf("%w: chat requires message", model.ErrInvalidEvent)
		}
		if e.Sender == "" {
			return fmt.Errorf("%w: chat requires sender", model.ErrInvalidEvent)
		}
	case ClientGameOver:
		if e.SessionID == "" {
			return fmt.Errorf("%w: game_over requires session_id", model.ErrInvalidEvent)
		}
		if e.Result == "" {
			return fmt.Errorf("%w: game_over requires result", model.ErrInvalidEvent)
		}
	case ClientPing:
		// No payload.
	default:
		return fmt.Errorf("%w: unknown event type %q", model.ErrInvalidEvent, e.Type)
	}
	return nil
}

// ServerEventType identifies an outbound event to a connection
type ServerEventType string

const (
	ServerCreated            ServerEventType = "created"
	ServerJoinedAsPlayer     ServerEventType = "joined_as_player"
	ServerJoinedAsSpectator  ServerEventType = "joined_as_spectator"
	ServerOpponentJoined     ServerEventType = "opponent_joined"
	ServerSpectatorJoined    ServerEventType = "spectator_joined"
	ServerMoveMade           ServerEventType = "move_made"
	ServerMessage            ServerEventType = "message"
	ServerEnded              ServerEventType = "ended"
	ServerPlayerDisconnected ServerEventType = "player_disconnected"
	ServerError              ServerEventType = "error"
	ServerPong               ServerEventType = "pong"
)

// ServerEvent is the closed set of events the relay delivers to connections
type ServerEvent struct {
	Type       ServerEventType `json:"type"`
	SessionID  model.SessionID `json:"session_id,omitempty"`
	Color      model.Color     `json:"color,omitempty"`
	PlayerName string          `json:"player_name,omitempty"`
	Move       json.RawMessage `json:"move,omitempty"`
	State      json.RawMessage `json:"state,omitempty"`
	Message    string          `json:"message,omitempty"`
	Sender     string          `json:"sender,omitempty"`
	Result     string          `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}
