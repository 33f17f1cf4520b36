package coordinator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/protocol"
)

func (c *Coordinator) handleEvent(ctx context.Context, conn model.ConnectionID, event protocol.ClientEvent) {
	if err := event.Validate(); err != nil {
		c.sendError(conn, err)
		return
	}

	switch event.Type {
	case protocol.ClientCreate:
		c.handleCreate(ctx, conn, event)
	case protocol.ClientJoin:
		c.handleJoin(ctx, conn, event)
	case protocol.ClientMove:
		c.handleMove(ctx, conn, event)
	case protocol.ClientChat:
		c.handleChat(ctx, conn, event)
	case protocol.ClientGameOver:
		c.handleGameOver(ctx, conn, event)
	case protocol.ClientPing:
		c.send(conn, protocol.ServerEvent{Type: protocol.ServerPong})
	}
}

func (c *Coordinator) handleCreate(ctx context.Context, conn model.ConnectionID, event protocol.ClientEvent) {
	host := model.Participant{
		ConnectionID: conn,
		DisplayName:  event.PlayerName,
	}

	sess, err := c.sessions.Create(ctx, host)
	if err != nil {
		c.sendError(conn, err)
		return
	}

	c.send(conn, protocol.ServerEvent{
		Type:      protocol.ServerCreated,
		SessionID: sess.ID,
		Color:     model.ColorFirst,
	})
}

func (c *Coordinator) handleJoin(ctx context.Context, conn model.ConnectionID, event protocol.ClientEvent) {
	participant := model.Participant{
		ConnectionID: conn,
		DisplayName:  event.PlayerName,
	}

	admission, err := c.sessions.Admit(ctx, event.SessionID, participant)
	if err != nil {
		c.sendError(conn, err)
		return
	}

	if admission.Role == model.RolePlayer {
		c.send(conn, protocol.ServerEvent{
			Type:      protocol.ServerJoinedAsPlayer,
			SessionID: admission.Session.ID,
			Color:     admission.Color,
		})
		// Tell the seated opponent their match is on.
		for _, p := range admission.Session.Players {
			if p.ConnectionID == conn {
				continue
			}
			c.send(p.ConnectionID, protocol.ServerEvent{
				Type:       protocol.ServerOpponentJoined,
				PlayerName: event.PlayerName,
			})
		}
		return
	}

	// Spectators get the last-known snapshot verbatim; it may be null if no
	// move has been made yet.
	c.send(conn, protocol.ServerEvent{
		Type:      protocol.ServerJoinedAsSpectator,
		SessionID: admission.Session.ID,
		State:     admission.Session.State,
	})
	c.broadcast(admission.Session, protocol.ServerEvent{
		Type:       protocol.ServerSpectatorJoined,
		PlayerName: event.PlayerName,
	}, conn)
}

func (c *Coordinator) handleMove(ctx context.Context, conn model.ConnectionID, event protocol.ClientEvent) {
	sess, err := c.sessions.UpdateState(ctx, event.SessionID, event.State)
	if err != nil {
		c.sendError(conn, err)
		return
	}

	c.broadcast(sess, protocol.ServerEvent{
		Type:  protocol.ServerMoveMade,
		Move:  event.Move,
		State: event.State,
	}, conn)
}

func (c *Coordinator) handleChat(ctx context.Context, conn model.ConnectionID, event protocol.ClientEvent) {
	sess, err := c.sessions.Get(ctx, event.SessionID)
	if err != nil {
		// Chat has no existence precondition; a message to a vanished
		// session just has nowhere to go.
		if errors.Is(err, model.ErrSessionNotFound) {
			c.logger.Debug("chat for absent session",
				slog.String("session_id", string(event.SessionID)))
			return
		}
		c.sendError(conn, err)
		return
	}

	c.broadcast(sess, protocol.ServerEvent{
		Type:    protocol.ServerMessage,
		Sender:  event.Sender,
		Message: event.Message,
	}, conn)
}

func (c *Coordinator) handleGameOver(ctx context.Context, conn model.ConnectionID, event protocol.ClientEvent) {
	sess, err := c.sessions.Get(ctx, event.SessionID)
	if err != nil {
		c.sendError(conn, err)
		return
	}

	// Everyone hears the result, the sender included.
	c.broadcast(sess, protocol.ServerEvent{
		Type:   protocol.ServerEnded,
		Result: event.Result,
	}, "")
}

// sendError reports a failure to the requesting connection only
func (c *Coordinator) sendError(conn model.ConnectionID, err error) {
	c.send(conn, protocol.ServerEvent{
		Type:  protocol.ServerError,
		Error: errorMessage(err),
	})
}

// errorMessage maps internal errors to user-facing text
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, model.ErrAlreadyInSession):
		return "already in a session"
	case errors.Is(err, model.ErrInvalidEvent):
		return err.Error()
	default:
		return "internal error"
	}
}
