package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gamerelay-go/internal/model"
)

// Admission is the outcome of admitting a participant to a session
type Admission struct {
	Role    model.Role
	Color   model.Color
	Session *model.Session
}

// Admit adds a participant to a session. The participant becomes a player
// while unassigned seats remain, otherwise a spectator. Seats are counted by
// SeatsAssigned, which never decreases: a seat vacated by a disconnect stays
// reserved, so a later join cannot reclaim it.
func (c *Controller) Admit(ctx context.Context, id model.SessionID, participant model.Participant) (*Admission, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	// A connection belongs to at most one session.
	if _, err := c.storage.GetConnectionSession(ctx, participant.ConnectionID); err == nil {
		return nil, model.ErrAlreadyInSession
	} else if !errors.Is(err, model.ErrNotInSession) {
		return nil, err
	}

	if session.SeatsAssigned < model.MaxPlayers {
		participant.Role = model.RolePlayer
		if session.SeatsAssigned == 0 {
			participant.Color = model.ColorFirst
		} else {
			participant.Color = model.ColorSecond
		}
		session.SeatsAssigned++
		session.Players = append(session.Players, participant)
	} else {
		participant.Role = model.RoleSpectator
		participant.Color = model.ColorNone
		session.Spectators = append(session.Spectators, participant)
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	if err := c.storage.SaveConnectionSession(ctx, participant.ConnectionID, id); err != nil {
		return nil, err
	}

	c.logger.Info("participant admitted",
		slog.String("session_id", string(id)),
		slog.String("name", participant.DisplayName),
		slog.String("role", string(participant.Role)))

	return &Admission{
		Role:    participant.Role,
		Color:   participant.Color,
		Session: session,
	}, nil
}

// Remove deletes the connection's participant from whichever collection holds
// it and clears its reverse-index entry. The removed participant is returned
// so callers can decide on notification wording by role.
func (c *Controller) Remove(ctx context.Context, id model.SessionID, conn model.ConnectionID) (*model.Participant, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	var removed *model.Participant
	for i, p := range session.Players {
		if p.ConnectionID == conn {
			removed = &p
			session.Players = append(session.Players[:i], session.Players[i+1:]...)
			break
		}
	}
	if removed == nil {
		for i, p := range session.Spectators {
			if p.ConnectionID == conn {
				removed = &p
				session.Spectators = append(session.Spectators[:i], session.Spectators[i+1:]...)
				break
			}
		}
	}

	// The reverse-index entry goes away regardless of whether the session
	// still listed the participant.
	if err := c.storage.DeleteConnectionSession(ctx, conn); err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, model.ErrNotInSession
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Info("participant removed",
		slog.String("session_id", string(id)),
		slog.String("name", removed.DisplayName),
		slog.String("role", string(removed.Role)))
	return removed, nil
}
