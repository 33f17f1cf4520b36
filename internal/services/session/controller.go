package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/gamerelay-go/internal/dependencies/clock"
	"github.com/mcoot/gamerelay-go/internal/dependencies/random"
	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/storage"
)

const (
	// CodeLength is the length of generated session codes
	CodeLength = 6
	// CodeAlphabet is the characters used in session codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller owns the session registry and the reverse connection index.
// It is the only component that mutates either; callers obtain sessions per
// operation and must not cache them across operations.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new session controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// Create makes a new session with the given host seated as the first player.
// The session code is regenerated until it does not collide with a live
// session.
func (c *Controller) Create(ctx context.Context, host model.Participant) (*model.Session, error) {
	if _, err := c.storage.GetConnectionSession(ctx, host.ConnectionID); err == nil {
		return nil, model.ErrAlreadyInSession
	} else if !errors.Is(err, model.ErrNotInSession) {
		return nil, err
	}

	var id model.SessionID
	for {
		id = model.SessionID(c.random.String(CodeLength, CodeAlphabet))
		exists, err := c.storage.SessionExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	host.Role = model.RolePlayer
	host.Color = model.ColorFirst

	session := &model.Session{
		ID:            id,
		Players:       []model.Participant{host},
		Spectators:    []model.Participant{},
		SeatsAssigned: 1,
		State:         nil,
		CreatedAt:     c.clock.Now(),
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	if err := c.storage.SaveConnectionSession(ctx, host.ConnectionID, id); err != nil {
		// Leave no half-registered session behind.
		_ = c.storage.DeleteSession(ctx, id)
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("host", host.DisplayName))
	return session, nil
}

// Get retrieves a session by ID
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// Delete removes a session and the reverse-index entries of everyone still in
// it. Deleting an absent session is a no-op.
func (c *Controller) Delete(ctx context.Context, id model.SessionID) error {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	for _, p := range session.Players {
		if err := c.storage.DeleteConnectionSession(ctx, p.ConnectionID); err != nil {
			return err
		}
	}
	for _, p := range session.Spectators {
		if err := c.storage.DeleteConnectionSession(ctx, p.ConnectionID); err != nil {
			return err
		}
	}

	if err := c.storage.DeleteSession(ctx, id); err != nil {
		return err
	}

	c.logger.Info("session deleted", slog.String("session_id", string(id)))
	return nil
}

// UpdateState replaces the session's opaque snapshot verbatim and returns the
// updated session
func (c *Controller) UpdateState(ctx context.Context, id model.SessionID, state json.RawMessage) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.State = state
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// List returns every live session
func (c *Controller) List(ctx context.Context) ([]*model.Session, error) {
	return c.storage.ListSessions(ctx)
}

// SessionFor looks up which session a connection belongs to via the reverse
// index
func (c *Controller) SessionFor(ctx context.Context, conn model.ConnectionID) (model.SessionID, error) {
	return c.storage.GetConnectionSession(ctx, conn)
}

// DeleteExpired removes every session older than maxAge regardless of
// occupancy and returns how many were removed
func (c *Controller) DeleteExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return 0, err
	}

	now := c.clock.Now()
	deleted := 0
	for _, session := range sessions {
		if now.Sub(session.CreatedAt) <= maxAge {
			continue
		}
		if err := c.Delete(ctx, session.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
