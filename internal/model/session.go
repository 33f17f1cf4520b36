package model

import (
	"encoding/json"
	"time"
)

// SessionID is a short unguessable token for joining sessions
type SessionID string

// MaxPlayers is the number of player seats in a session
const MaxPlayers = 2

// Session represents one hosted match: up to two players plus any number of
// spectators
type Session struct {
	ID SessionID `json:"id"`

	// Players is the ordered list of currently connected players. The first
	// admitted player holds ColorFirst, the second ColorSecond.
	Players []Participant `json:"players"`

	// Spectators are currently connected onlookers.
	Spectators []Participant `json:"spectators"`

	// SeatsAssigned counts player seats ever handed out. It never decreases,
	// so a seat vacated by a disconnect stays reserved and later joins become
	// spectators.
	SeatsAssigned int `json:"seats_assigned"`

	// State is the last-known game snapshot. It is replaced verbatim by move
	// events and handed verbatim to new spectators; the relay never parses it.
	State json.RawMessage `json:"state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
