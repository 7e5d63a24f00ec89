package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/auth"
	"github.com/roomtalk/roomtalk-server/internal/config"
	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/service/messages"
)

// Deps bundles what the HTTP layer needs from the rest of the application.
type Deps struct {
	Registry *core.Registry
	Presence *core.Presence
	Router   *core.Router
	Messages *messages.Service
	Auth     *auth.Service
}

// NewServer builds the HTTP server: REST surface plus the WebSocket entry
// point for chat sessions.
func NewServer(deps Deps, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	api := NewAPIHandlers(deps.Auth, deps.Messages, cfg.HistoryLimit, logger)
	engine.POST("/api/register", api.Register)
	engine.POST("/api/login", api.Login)
	engine.POST("/api/guest", api.GuestLogin)

	authorized := engine.Group("/api", AuthMiddleware(deps.Auth, logger))
	authorized.GET("/rooms/:room/messages", api.RoomHistory)

	ws := NewWSHandler(deps, cfg.EventBuffer, logger)
	engine.GET("/ws/:room", ws.Handle)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
