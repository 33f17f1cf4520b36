package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/gamerelay-go/internal/dependencies/clock"
	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/protocol"
	"github.com/mcoot/gamerelay-go/internal/services/session"
)

// Sender delivers an encoded event to a single connection. A failed delivery
// affects only that recipient.
type Sender interface {
	Send(conn model.ConnectionID, event protocol.ServerEvent) error
}

// Config holds timing settings for session reclamation
type Config struct {
	// GraceDelay is how long a vacated session is kept before the deferred
	// deletion check runs.
	GraceDelay time.Duration
	// SweepInterval is how often all sessions are scanned for expiry.
	SweepInterval time.Duration
	// MaxSessionAge is the age past which the sweep deletes a session
	// regardless of occupancy.
	MaxSessionAge time.Duration
}

// DefaultConfig returns the standard reclamation timings
func DefaultConfig() Config {
	return Config{
		GraceDelay:    60 * time.Second,
		SweepInterval: 30 * time.Minute,
		MaxSessionAge: 4 * time.Hour,
	}
}

// task is a unit of work for the coordinator loop
type task interface{ isTask() }

// eventTask carries an inbound client event
type eventTask struct {
	conn  model.ConnectionID
	event protocol.ClientEvent
}

// disconnectTask reports that a connection went away
type disconnectTask struct {
	conn model.ConnectionID
}

// graceCheckTask re-evaluates a deferred session deletion
type graceCheckTask struct {
	session model.SessionID
}

// sweepTask triggers the periodic max-age scan
type sweepTask struct{}

// flushTask is a barrier: its channel closes once every task queued before it
// has been processed. Used by tests to observe state without races.
type flushTask struct {
	done chan struct{}
}

func (eventTask) isTask()      {}
func (disconnectTask) isTask() {}
func (graceCheckTask) isTask() {}
func (sweepTask) isTask()      {}
func (flushTask) isTask()      {}

// Coordinator processes all session-mutating work on a single goroutine.
// Inbound connection events, disconnects, grace-timer checks and sweeps all
// arrive as tasks on one inbox, so registry access is never concurrent.
// Timers post their work back into the inbox rather than touching the
// registry from their own goroutines.
type Coordinator struct {
	cfg      Config
	sessions *session.Controller
	sender   Sender
	clock    clock.Clock
	logger   *slog.Logger
	inbox    chan task
}

// New creates a coordinator. Call Run to start processing.
func New(
	cfg Config,
	sessions *session.Controller,
	sender Sender,
	clk clock.Clock,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		sessions: sessions,
		sender:   sender,
		clock:    clk,
		logger:   logger.With(slog.String("component", "coordinator")),
		inbox:    make(chan task, 256),
	}
}

// Run processes tasks one at a time until ctx is cancelled
func (c *Coordinator) Run(ctx context.Context) {
	c.logger.Info("coordinator started")
	c.scheduleSweep()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("coordinator stopped")
			return
		case t := <-c.inbox:
			c.handle(ctx, t)
		}
	}
}

// Dispatch queues an inbound event from a connection
func (c *Coordinator) Dispatch(conn model.ConnectionID, event protocol.ClientEvent) {
	c.inbox <- eventTask{conn: conn, event: event}
}

// Disconnect queues a connection-gone notification
func (c *Coordinator) Disconnect(conn model.ConnectionID) {
	c.inbox <- disconnectTask{conn: conn}
}

// Flush blocks until all previously queued tasks have been processed
func (c *Coordinator) Flush() {
	done := make(chan struct{})
	c.inbox <- flushTask{done: done}
	<-done
}

func (c *Coordinator) handle(ctx context.Context, t task) {
	switch t := t.(type) {
	case eventTask:
		c.handleEvent(ctx, t.conn, t.event)
	case disconnectTask:
		c.handleDisconnect(ctx, t.conn)
	case graceCheckTask:
		c.handleGraceCheck(ctx, t.session)
	case sweepTask:
		c.handleSweep(ctx)
	case flushTask:
		close(t.done)
	}
}

// send unicasts an event; delivery failure is logged, never fatal
func (c *Coordinator) send(conn model.ConnectionID, event protocol.ServerEvent) {
	if err := c.sender.Send(conn, event); err != nil {
		c.logger.Warn("send failed",
			slog.String("connection_id", string(conn)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
	}
}

// broadcast delivers an event to every participant of the session, skipping
// exclude if non-empty. Each recipient is attempted independently.
func (c *Coordinator) broadcast(sess *model.Session, event protocol.ServerEvent, exclude model.ConnectionID) {
	for _, p := range sess.Players {
		if p.ConnectionID == exclude {
			continue
		}
		c.send(p.ConnectionID, event)
	}
	for _, p := range sess.Spectators {
		if p.ConnectionID == exclude {
			continue
		}
		c.send(p.ConnectionID, event)
	}
}
