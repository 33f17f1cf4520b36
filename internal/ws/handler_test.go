package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamerelay-go/internal/coordinator"
	"github.com/mcoot/gamerelay-go/internal/dependencies/clock"
	"github.com/mcoot/gamerelay-go/internal/dependencies/random"
	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/protocol"
	"github.com/mcoot/gamerelay-go/internal/services/session"
	"github.com/mcoot/gamerelay-go/internal/storage/memory"
	"github.com/mcoot/gamerelay-go/internal/testutil"
)

const eventWait = 2 * time.Second

// startRelay wires a real relay stack behind an httptest server
func startRelay(t *testing.T) *httptest.Server {
	t.Helper()

	logger := testutil.NopLogger()
	store := memory.New()
	clk := clock.New()
	rnd := random.New()
	sessions := session.NewController(store, clk, rnd, logger)
	hub := NewHub(rnd, logger)
	coord := coordinator.New(coordinator.DefaultConfig(), sessions, hub, clk, logger)
	handler := NewHandler(hub, coord, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go coord.Run(ctx)

	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		hub.Close()
		cancel()
	})
	return server
}

// relayClient is a test-side websocket peer
type relayClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, server *httptest.Server) *relayClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &relayClient{t: t, conn: conn}
}

func (c *relayClient) send(event protocol.ClientEvent) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(event))
}

func (c *relayClient) sendRaw(data string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(data)))
}

// receive reads the next event, failing the test if none arrives in time
func (c *relayClient) receive() protocol.ServerEvent {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(eventWait)))
	var event protocol.ServerEvent
	require.NoError(c.t, c.conn.ReadJSON(&event))
	return event
}

func TestFullSessionExchange(t *testing.T) {
	server := startRelay(t)

	ann := dial(t, server)
	bob := dial(t, server)

	// Ann opens a session.
	ann.send(protocol.ClientEvent{Type: protocol.ClientCreate, PlayerName: "Ann"})
	created := ann.receive()
	require.Equal(t, protocol.ServerCreated, created.Type)
	require.Equal(t, model.ColorFirst, created.Color)
	require.NotEmpty(t, created.SessionID)

	// Bob takes the other seat.
	bob.send(protocol.ClientEvent{
		Type:       protocol.ClientJoin,
		SessionID:  created.SessionID,
		PlayerName: "Bob",
	})
	joined := bob.receive()
	require.Equal(t, protocol.ServerJoinedAsPlayer, joined.Type)
	require.Equal(t, model.ColorSecond, joined.Color)

	opponent := ann.receive()
	require.Equal(t, protocol.ServerOpponentJoined, opponent.Type)
	require.Equal(t, "Bob", opponent.PlayerName)

	// A move from Ann lands on Bob only.
	ann.send(protocol.ClientEvent{
		Type:      protocol.ClientMove,
		SessionID: created.SessionID,
		Move:      json.RawMessage(`{"from":"e2","to":"e4"}`),
		State:     json.RawMessage(`{"turn":1}`),
	})
	move := bob.receive()
	require.Equal(t, protocol.ServerMoveMade, move.Type)
	require.JSONEq(t, `{"turn":1}`, string(move.State))

	// Chat from Bob lands on Ann only.
	bob.send(protocol.ClientEvent{
		Type:      protocol.ClientChat,
		SessionID: created.SessionID,
		Sender:    "Bob",
		Message:   "nice opening",
	})
	chat := ann.receive()
	require.Equal(t, protocol.ServerMessage, chat.Type)
	require.Equal(t, "nice opening", chat.Message)

	// Game over reaches both.
	ann.send(protocol.ClientEvent{
		Type:      protocol.ClientGameOver,
		SessionID: created.SessionID,
		Result:    "first wins",
	})
	for _, c := range []*relayClient{ann, bob} {
		ended := c.receive()
		require.Equal(t, protocol.ServerEnded, ended.Type)
		require.Equal(t, "first wins", ended.Result)
	}
}

func TestSpectatorSeesSnapshotAndMoves(t *testing.T) {
	server := startRelay(t)

	ann := dial(t, server)
	bob := dial(t, server)
	cid := dial(t, server)

	ann.send(protocol.ClientEvent{Type: protocol.ClientCreate, PlayerName: "Ann"})
	created := ann.receive()
	require.Equal(t, protocol.ServerCreated, created.Type)

	bob.send(protocol.ClientEvent{
		Type:       protocol.ClientJoin,
		SessionID:  created.SessionID,
		PlayerName: "Bob",
	})
	require.Equal(t, protocol.ServerJoinedAsPlayer, bob.receive().Type)
	require.Equal(t, protocol.ServerOpponentJoined, ann.receive().Type)

	ann.send(protocol.ClientEvent{
		Type:      protocol.ClientMove,
		SessionID: created.SessionID,
		Move:      json.RawMessage(`{"from":"e2","to":"e4"}`),
		State:     json.RawMessage(`{"turn":1}`),
	})
	require.Equal(t, protocol.ServerMoveMade, bob.receive().Type)

	cid.send(protocol.ClientEvent{
		Type:       protocol.ClientJoin,
		SessionID:  created.SessionID,
		PlayerName: "Cid",
	})
	joined := cid.receive()
	require.Equal(t, protocol.ServerJoinedAsSpectator, joined.Type)
	require.JSONEq(t, `{"turn":1}`, string(joined.State))

	for _, c := range []*relayClient{ann, bob} {
		watcher := c.receive()
		require.Equal(t, protocol.ServerSpectatorJoined, watcher.Type)
		require.Equal(t, "Cid", watcher.PlayerName)
	}

	bob.send(protocol.ClientEvent{
		Type:      protocol.ClientMove,
		SessionID: created.SessionID,
		Move:      json.RawMessage(`{"from":"e7","to":"e5"}`),
		State:     json.RawMessage(`{"turn":2}`),
	})
	require.Equal(t, protocol.ServerMoveMade, ann.receive().Type)
	require.Equal(t, protocol.ServerMoveMade, cid.receive().Type)
}

func TestDisconnectNotifiesRemainingPlayer(t *testing.T) {
	server := startRelay(t)

	ann := dial(t, server)
	bob := dial(t, server)

	ann.send(protocol.ClientEvent{Type: protocol.ClientCreate, PlayerName: "Ann"})
	created := ann.receive()

	bob.send(protocol.ClientEvent{
		Type:       protocol.ClientJoin,
		SessionID:  created.SessionID,
		PlayerName: "Bob",
	})
	require.Equal(t, protocol.ServerJoinedAsPlayer, bob.receive().Type)
	require.Equal(t, protocol.ServerOpponentJoined, ann.receive().Type)

	require.NoError(t, bob.conn.Close())

	gone := ann.receive()
	require.Equal(t, protocol.ServerPlayerDisconnected, gone.Type)
	require.Equal(t, "Bob", gone.PlayerName)
}

func TestMalformedPayloadKeepsConnectionAlive(t *testing.T) {
	server := startRelay(t)

	ann := dial(t, server)

	ann.sendRaw(`{not json`)
	errEvent := ann.receive()
	require.Equal(t, protocol.ServerError, errEvent.Type)
	require.Equal(t, "malformed event payload", errEvent.Error)

	// The socket survives the bad frame.
	ann.send(protocol.ClientEvent{Type: protocol.ClientPing})
	require.Equal(t, protocol.ServerPong, ann.receive().Type)
}

func TestHubTracksConnections(t *testing.T) {
	logger := testutil.NopLogger()
	store := memory.New()
	clk := clock.New()
	rnd := random.New()
	sessions := session.NewController(store, clk, rnd, logger)
	hub := NewHub(rnd, logger)
	coord := coordinator.New(coordinator.DefaultConfig(), sessions, hub, clk, logger)
	handler := NewHandler(hub, coord, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go coord.Run(ctx)
	defer cancel()

	server := httptest.NewServer(handler)
	defer server.Close()
	defer hub.Close()

	ann := dial(t, server)
	_ = dial(t, server)
	require.Equal(t, 2, hub.ClientCount())

	require.NoError(t, ann.conn.Close())
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, eventWait, 10*time.Millisecond)
}

func TestJoinUnknownSessionReturnsError(t *testing.T) {
	server := startRelay(t)

	ann := dial(t, server)
	ann.send(protocol.ClientEvent{
		Type:       protocol.ClientJoin,
		SessionID:  "NOPE22",
		PlayerName: "Ann",
	})

	errEvent := ann.receive()
	require.Equal(t, protocol.ServerError, errEvent.Type)
	require.Equal(t, "session not found", errEvent.Error)
}
