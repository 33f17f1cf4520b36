package redis

import (
	"fmt"

	"github.com/mcoot/gamerelay-go/internal/model"
)

// Key prefix for all relay data
const keyPrefix = "gamerelay"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionKeyPattern matches all session keys, used by ListSessions
func sessionKeyPattern() string {
	return fmt.Sprintf("%s:session:*", keyPrefix)
}

// connectionKey returns the Redis key for the connection -> session index
func connectionKey(conn model.ConnectionID) string {
	return fmt.Sprintf("%s:idx:connection:%s", keyPrefix, conn)
}
