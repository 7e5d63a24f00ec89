package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/auth"
	"github.com/roomtalk/roomtalk-server/internal/config"
	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/service/messages"
	"github.com/roomtalk/roomtalk-server/internal/store"
	"github.com/roomtalk/roomtalk-server/internal/store/sqlite"
	transporthttp "github.com/roomtalk/roomtalk-server/internal/transport/http"
)

// App wires the broadcast engine, storage and transport together.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	router          *core.Router
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	// Everyone lands in the default room; make sure it exists up front.
	if _, err := st.GetOrCreateRoom(context.Background(), cfg.DefaultRoom); err != nil {
		st.Close()
		return nil, fmt.Errorf("ensure default room: %w", err)
	}

	authService := auth.NewService(st, &auth.TokenConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      24 * time.Hour,
	})

	registry := core.NewRegistry()
	presence := core.NewPresence()
	router := core.NewRouter(registry, logger)
	msgService := messages.NewService(st, logger)

	server := transporthttp.NewServer(transporthttp.Deps{
		Registry: registry,
		Presence: presence,
		Router:   router,
		Messages: msgService,
		Auth:     authService,
	}, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		router:          router,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup stops the router and closes the store.
func (a *App) cleanup() {
	a.router.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	} else {
		a.log.Info().Msg("store closed")
	}
}
