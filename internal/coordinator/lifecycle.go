package coordinator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/protocol"
)

// graceEligible reports whether a disconnect leaves a session a candidate
// for deferred deletion: at most one player remains and nobody is watching.
func graceEligible(sess *model.Session) bool {
	return len(sess.Players) <= 1 && len(sess.Spectators) == 0
}

// deserted reports whether a session has no connected members left. The
// grace check only deletes deserted sessions; anyone who joined after the
// timer was armed keeps the session alive even if they are now alone in it.
func deserted(sess *model.Session) bool {
	return len(sess.Players) == 0 && len(sess.Spectators) == 0
}

func (c *Coordinator) handleDisconnect(ctx context.Context, conn model.ConnectionID) {
	id, err := c.sessions.SessionFor(ctx, conn)
	if err != nil {
		// Not in any session; nothing to clean up.
		return
	}

	removed, err := c.sessions.Remove(ctx, id, conn)
	if err != nil {
		c.logger.Warn("disconnect cleanup failed",
			slog.String("connection_id", string(conn)),
			slog.Any("error", err))
		return
	}

	sess, err := c.sessions.Get(ctx, id)
	if err != nil {
		return
	}

	// Spectator departures are silent.
	if removed.Role == model.RolePlayer {
		c.broadcast(sess, protocol.ServerEvent{
			Type:       protocol.ServerPlayerDisconnected,
			PlayerName: removed.DisplayName,
		}, "")
	}

	if graceEligible(sess) {
		c.armGraceTimer(id)
	}
}

// armGraceTimer schedules a deferred deletion check. The timer only posts a
// task; the check itself runs on the coordinator loop against live state.
func (c *Coordinator) armGraceTimer(id model.SessionID) {
	c.logger.Info("grace timer armed",
		slog.String("session_id", string(id)),
		slog.Duration("delay", c.cfg.GraceDelay))
	c.clock.AfterFunc(c.cfg.GraceDelay, func() {
		c.inbox <- graceCheckTask{session: id}
	})
}

// handleGraceCheck re-fetches the session and deletes it only if it is now
// deserted. Membership may have changed since the timer was armed; acting on
// a snapshot captured at arm time could delete a session someone rejoined.
func (c *Coordinator) handleGraceCheck(ctx context.Context, id model.SessionID) {
	sess, err := c.sessions.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrSessionNotFound) {
			c.logger.Warn("grace check failed",
				slog.String("session_id", string(id)),
				slog.Any("error", err))
		}
		return
	}

	if !deserted(sess) {
		c.logger.Info("grace deletion cancelled, session active again",
			slog.String("session_id", string(id)))
		return
	}

	if err := c.sessions.Delete(ctx, id); err != nil {
		c.logger.Warn("grace deletion failed",
			slog.String("session_id", string(id)),
			slog.Any("error", err))
		return
	}
	c.logger.Info("session reclaimed", slog.String("session_id", string(id)))
}

// scheduleSweep arms the next periodic max-age scan
func (c *Coordinator) scheduleSweep() {
	c.clock.AfterFunc(c.cfg.SweepInterval, func() {
		c.inbox <- sweepTask{}
	})
}

func (c *Coordinator) handleSweep(ctx context.Context) {
	deleted, err := c.sessions.DeleteExpired(ctx, c.cfg.MaxSessionAge)
	if err != nil {
		c.logger.Warn("sweep failed", slog.Any("error", err))
	} else if deleted > 0 {
		c.logger.Info("sweep deleted expired sessions", slog.Int("count", deleted))
	}
	c.scheduleSweep()
}
