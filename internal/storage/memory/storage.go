package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions    map[model.SessionID]*model.Session
	connections map[model.ConnectionID]model.SessionID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:    make(map[model.SessionID]*model.Session),
		connections: make(map[model.ConnectionID]model.SessionID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// cloneSession deep-copies a session so callers never share mutable state
// with the store. Both directions go through it: saves detach from the
// caller's pointer and reads detach from the stored one.
func cloneSession(session *model.Session) *model.Session {
	copied := *session
	copied.Players = append([]model.Participant(nil), session.Players...)
	copied.Spectators = append([]model.Participant(nil), session.Spectators...)
	if session.State != nil {
		copied.State = append(json.RawMessage(nil), session.State...)
	}
	return &copied
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) SessionExists(ctx context.Context, id model.SessionID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, cloneSession(session))
	}
	return sessions, nil
}

// Reverse index operations

func (s *Storage) SaveConnectionSession(ctx context.Context, conn model.ConnectionID, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[conn] = id
	return nil
}

func (s *Storage) GetConnectionSession(ctx context.Context, conn model.ConnectionID) (model.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.connections[conn]
	if !ok {
		return "", model.ErrNotInSession
	}
	return id, nil
}

func (s *Storage) DeleteConnectionSession(ctx context.Context, conn model.ConnectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, conn)
	return nil
}
