package suite

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/xosgame/xos-backend/internal/identity"
	"github.com/xosgame/xos-backend/internal/repository"
	"github.com/xosgame/xos-backend/internal/tictactoe"
	"github.com/xosgame/xos-backend/internal/usecase"
	socket "github.com/xosgame/xos-backend/transport/websocket"
)

const (
	maxWaitDuration = 30 * time.Second
	readWait        = 5 * time.Second

	// PublicURL - the base the suite server hands out in join links.
	PublicURL = "http://xos.test"
)

// Suite boots the full game stack - store, registry, manager and the
// websocket server - on an httptest server, and dials clients against it.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Server *httptest.Server
	Game   *usecase.GameManager
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sessionRepo := repository.NewSessionRepository()
	registry := identity.NewRegistry()
	gameManager := usecase.NewGameManager(logger, sessionRepo, tictactoe.DefaultWinsPerStreak)

	wsServer := socket.New(logger, gameManager, registry, PublicURL)
	httpServer := httptest.NewServer(wsServer.Handler())
	t.Cleanup(httpServer.Close)

	return ctx, &Suite{
		T:      t,
		Logger: logger,
		Server: httpServer,
		Game:   gameManager,
	}
}

// Dial - opens a websocket client against the suite's server.
func (that *Suite) Dial() *ClientConn {
	that.Helper()

	wsURL := "ws" + strings.TrimPrefix(that.Server.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(that.T, err)

	that.Cleanup(func() {
		_ = conn.Close()
	})

	return &ClientConn{t: that.T, conn: conn}
}

// ClientConn is one dialed test client speaking the wire protocol.
type ClientConn struct {
	t    *testing.T
	conn *websocket.Conn
}

// Close - drops the connection, simulating a client disconnect.
func (that *ClientConn) Close() {
	that.t.Helper()

	_ = that.conn.Close()
}

// Emit - sends one action with its payload.
func (that *ClientConn) Emit(action string, payload any) {
	that.t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(that.t, err)

	require.NoError(that.t, that.conn.WriteJSON(socket.Message{Action: action, Payload: raw}))
}

// Next - reads the next message within the read deadline.
func (that *ClientConn) Next() socket.Message {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(readWait)))

	var message socket.Message
	require.NoError(that.t, that.conn.ReadJSON(&message))

	return message
}

// Expect - reads the next message and requires it to carry the given
// event, decoding its payload into out when out is non-nil.
func (that *ClientConn) Expect(event string, out any) {
	that.t.Helper()

	message := that.Next()
	require.Equal(that.t, event, message.Action, "unexpected event, payload: %s", string(message.Payload))

	if out != nil {
		require.NoError(that.t, json.Unmarshal(message.Payload, out))
	}
}
