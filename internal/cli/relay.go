package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/protocol"
)

func newCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session and stay connected as its first player",
		Long: `Connect to the relay, create a new session, and stream events
until interrupted. The session code is printed once the server
confirms creation.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelaySession(protocol.ClientEvent{
				Type:       protocol.ClientCreate,
				PlayerName: name,
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newJoinCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <session>",
		Short: "Join a session and stream its events",
		Long: `Connect to the relay and join an existing session. Whether you get
a player seat or become a spectator depends on how many seats the
session has already assigned.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelaySession(protocol.ClientEvent{
				Type:       protocol.ClientJoin,
				SessionID:  model.SessionID(args[0]),
				PlayerName: name,
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newChatCmd() *cobra.Command {
	var sender string
	var message string

	cmd := &cobra.Command{
		Use:   "chat <session>",
		Short: "Send a chat message to a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := DialRelay(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			err = conn.Send(protocol.ClientEvent{
				Type:      protocol.ClientChat,
				SessionID: model.SessionID(args[0]),
				Message:   message,
				Sender:    sender,
			})
			if err != nil {
				return err
			}

			// Give the relay a moment to push back an error before the
			// socket drops; chat itself produces no reply to the sender.
			_ = conn.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			if event, err := conn.Receive(); err == nil && event.Type == protocol.ServerError {
				return fmt.Errorf("%s", event.Error)
			}

			NewOutput(cfg.Output).PrintMessage("sent")
			return nil
		},
	}

	cmd.Flags().StringVarP(&sender, "sender", "n", "", "Sender name")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text")
	_ = cmd.MarkFlagRequired("sender")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

// runRelaySession connects, sends the opening event, and streams server
// events until interrupted
func runRelaySession(opening protocol.ClientEvent) error {
	conn, err := DialRelay(cfg.ServerURL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := conn.Send(opening); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	events := make(chan protocol.ServerEvent)
	errCh := make(chan error, 1)
	go func() {
		for {
			event, err := conn.Receive()
			if err != nil {
				errCh <- err
				return
			}
			events <- event
		}
	}()

	for {
		select {
		case <-sigCh:
			if cfg.Output != "json" {
				fmt.Println("\nDisconnected")
			}
			return nil
		case err := <-errCh:
			return fmt.Errorf("stream error: %w", err)
		case event := <-events:
			out.PrintEvent(event)
		}
	}
}
