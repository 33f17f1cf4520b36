package response

import (
	"time"

	"github.com/mcoot/gamerelay-go/internal/model"
)

// Member represents a session member in API responses
type Member struct {
	ConnectionID string `json:"connection_id"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	Color        string `json:"color,omitempty"`
}

// MemberFromModel converts a model.Participant to a response Member
func MemberFromModel(p model.Participant) Member {
	m := Member{
		ConnectionID: string(p.ConnectionID),
		DisplayName:  p.DisplayName,
		Role:         string(p.Role),
	}
	if p.Color != model.ColorNone {
		m.Color = string(p.Color)
	}
	return m
}

// SessionSummary represents a session in API responses. The relayed game
// state is deliberately omitted; this surface is for inspection, not play.
type SessionSummary struct {
	ID            string    `json:"id"`
	Players       []Member  `json:"players"`
	Spectators    []Member  `json:"spectators"`
	SeatsAssigned int       `json:"seats_assigned"`
	HasState      bool      `json:"has_state"`
	CreatedAt     time.Time `json:"created_at"`
}

// SessionSummaryFromModel converts a model.Session to a SessionSummary
func SessionSummaryFromModel(s *model.Session) SessionSummary {
	players := make([]Member, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, MemberFromModel(p))
	}
	spectators := make([]Member, 0, len(s.Spectators))
	for _, p := range s.Spectators {
		spectators = append(spectators, MemberFromModel(p))
	}
	return SessionSummary{
		ID:            string(s.ID),
		Players:       players,
		Spectators:    spectators,
		SeatsAssigned: s.SeatsAssigned,
		HasState:      len(s.State) > 0,
		CreatedAt:     s.CreatedAt,
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}
