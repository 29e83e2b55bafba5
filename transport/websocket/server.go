package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/xosgame/xos-backend/internal/entity"
	"github.com/xosgame/xos-backend/internal/identity"
	"github.com/xosgame/xos-backend/internal/usecase"
)

type gameManager interface {
	CreateSession(playerID string) (*entity.Session, error)
	JoinSession(sessionID, playerID string) (*usecase.JoinResult, error)
	MakeTurn(sessionID, playerID string, cell int, imageID string) (*entity.Session, error)
	StartNewRound(sessionID string) (*entity.Session, error)
	DeleteSession(sessionID, playerID string) (*entity.Session, error)
	ListSessions(playerID string) []usecase.SessionSummary
}

type Server struct {
	logger    *slog.Logger
	game      gameManager
	registry  *identity.Registry
	publicURL string

	upgrader websocket.Upgrader
	handlers map[string]func(client *Client, message *Message) error
}

func New(logger *slog.Logger, game gameManager, registry *identity.Registry, publicURL string) *Server {
	server := &Server{
		logger:    logger,
		game:      game,
		registry:  registry,
		publicURL: publicURL,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// the persistent id in the payload is the identity; the
				// origin carries no trust here
				return true
			},
		},
		handlers: make(map[string]func(*Client, *Message) error),
	}

	server.handlers[ActionRegisterIdentity] = server.handleRegisterIdentity
	server.handlers[ActionCreateSession] = server.handleCreateSession
	server.handlers[ActionListMySessions] = server.handleListMySessions
	server.handlers[ActionJoinSession] = server.handleJoinSession
	server.handlers[ActionMove] = server.handleMove
	server.handlers[ActionStartNewRound] = server.handleStartNewRound
	server.handlers[ActionDeleteSession] = server.handleDeleteSession

	return server
}

// Handler - the HTTP handler serving the websocket endpoint; exposed so
// tests can mount it on httptest.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - runs the WebSocket server until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and starts the client pumps.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(that, conn)

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	go client.writePump()
	go client.readPump()
}

// dispatch - routes one inbound message. Every client mistake resolves to
// a typed error response to the sender; nothing a client sends may take
// the process down.
func (that *Server) dispatch(client *Client, message *Message) {
	log := that.logger.With("method", "dispatch", "action", message.Action)

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic in handler", "panic", r)
			that.sendBadRequest(client, "internal handler failure")
		}
	}()

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Debug("unknown action")
		that.sendBadRequest(client, fmt.Sprintf("unknown action: %q", message.Action))
		return
	}

	if err := handler(client, message); err != nil {
		log.Debug("event rejected", "error", err)
		that.sendError(client, err)
	}
}
