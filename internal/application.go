package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xosgame/xos-backend/internal/config"
	"github.com/xosgame/xos-backend/internal/identity"
	"github.com/xosgame/xos-backend/internal/repository"
	"github.com/xosgame/xos-backend/internal/usecase"
	"github.com/xosgame/xos-backend/transport/rest"
	"github.com/xosgame/xos-backend/transport/websocket"
)

// RunApp - wires the components and runs the servers until a signal or a
// server error stops them.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionRepo := repository.NewSessionRepository()
	registry := identity.NewRegistry()
	gameManager := usecase.NewGameManager(logger, sessionRepo, conf.Session.WinsPerStreak)

	if conf.Session.TTL() > 0 {
		go runSessionReaper(ctx, gameManager, conf.Session.TTL(), conf.Session.ReapInterval())
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, registry, conf.PublicURL)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// runSessionReaper - periodically drops sessions idle longer than the
// configured TTL.
func runSessionReaper(ctx context.Context, gameManager *usecase.GameManager, ttl, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gameManager.ReapIdleSessions(ttl)
		}
	}
}
