package storage

import (
	"context"

	"github.com/mcoot/gamerelay-go/internal/model"
)

// Storage defines the interface for the session registry's backing store.
// It owns both the session records and the reverse connection index; the two
// are kept consistent by the session controller, which is the only writer.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	SessionExists(ctx context.Context, id model.SessionID) (bool, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)

	// Reverse index operations (connection -> session)
	SaveConnectionSession(ctx context.Context, conn model.ConnectionID, id model.SessionID) error
	GetConnectionSession(ctx context.Context, conn model.ConnectionID) (model.SessionID, error)
	DeleteConnectionSession(ctx context.Context, conn model.ConnectionID) error
}
