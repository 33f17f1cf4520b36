package model

// ConnectionID is the stable opaque identifier assigned to a live network
// connection for its duration
type ConnectionID string

// Role distinguishes players from spectators
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// Color is the side assigned to a player when admitted
type Color string

const (
	ColorFirst  Color = "first"
	ColorSecond Color = "second"
	ColorNone   Color = "none"
)

// Participant is a connection's membership record within one session
type Participant struct {
	ConnectionID ConnectionID `json:"connection_id"`
	DisplayName  string       `json:"display_name"`
	Role         Role         `json:"role"`
	Color        Color        `json:"color"`
}
