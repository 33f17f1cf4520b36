package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mcoot/gamerelay-go/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintEvent outputs a server event as it arrives
func (o *Output) PrintEvent(event protocol.ServerEvent) {
	if o.format == "json" {
		o.printJSON(event)
		return
	}

	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] %s\n", timestamp, describeEvent(event))
}

func describeEvent(event protocol.ServerEvent) string {
	switch event.Type {
	case protocol.ServerCreated:
		return fmt.Sprintf("session created: %s (you are %s)", event.SessionID, event.Color)
	case protocol.ServerJoinedAsPlayer:
		return fmt.Sprintf("joined %s as player (%s)", event.SessionID, event.Color)
	case protocol.ServerJoinedAsSpectator:
		return fmt.Sprintf("joined %s as spectator", event.SessionID)
	case protocol.ServerOpponentJoined:
		return fmt.Sprintf("opponent joined: %s", event.PlayerName)
	case protocol.ServerSpectatorJoined:
		return fmt.Sprintf("spectator joined: %s", event.PlayerName)
	case protocol.ServerMoveMade:
		return fmt.Sprintf("move: %s", event.Move)
	case protocol.ServerMessage:
		return fmt.Sprintf("%s: %s", event.Sender, event.Message)
	case protocol.ServerEnded:
		return fmt.Sprintf("game over: %s", event.Result)
	case protocol.ServerPlayerDisconnected:
		return fmt.Sprintf("player disconnected: %s", event.PlayerName)
	case protocol.ServerError:
		return fmt.Sprintf("error: %s", event.Error)
	case protocol.ServerPong:
		return "pong"
	default:
		data, _ := json.Marshal(event)
		return string(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case SessionSummary:
		o.printSessionSummary(v)
	case SessionList:
		o.printSessionList(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Member response type (matches API)
type Member struct {
	ConnectionID string `json:"connection_id"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	Color        string `json:"color,omitempty"`
}

// SessionSummary response type
type SessionSummary struct {
	ID            string    `json:"id"`
	Players       []Member  `json:"players"`
	Spectators    []Member  `json:"spectators"`
	SeatsAssigned int       `json:"seats_assigned"`
	HasState      bool      `json:"has_state"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionList response type
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func (o *Output) printSessionSummary(s SessionSummary) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("Created: %s\n", s.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Seats assigned: %d\n", s.SeatsAssigned)
	fmt.Printf("Has state: %t\n", s.HasState)
	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, m := range s.Players {
		fmt.Printf("  - %s (%s) %s\n", m.DisplayName, m.ConnectionID, m.Color)
	}
	fmt.Printf("Spectators (%d):\n", len(s.Spectators))
	for _, m := range s.Spectators {
		fmt.Printf("  - %s (%s)\n", m.DisplayName, m.ConnectionID)
	}
}

func (o *Output) printSessionList(l SessionList) {
	fmt.Printf("Sessions (%d):\n", l.Count)
	for _, s := range l.Sessions {
		fmt.Printf("  - %s: %d players, %d spectators\n",
			s.ID, len(s.Players), len(s.Spectators))
	}
}
