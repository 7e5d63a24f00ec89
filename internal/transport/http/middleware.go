package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/auth"
)

const (
	// ContextKeyUserID is the context key for the authenticated user id.
	ContextKeyUserID = "user_id"
	// ContextKeyUsername is the context key for the authenticated username.
	ContextKeyUsername = "username"
)

// AuthMiddleware validates bearer tokens and stores the identity in the
// request context.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(authService, c)
		if err != nil {
			logger.Debug().Err(err).Msg("unauthorized request")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Next()
	}
}

// claimsFromRequest extracts and validates a token from the Authorization
// header or, for WebSocket dials where headers are awkward, the token query
// parameter.
func claimsFromRequest(authService *auth.Service, c *gin.Context) (*auth.Claims, error) {
	token := ""
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		token = c.Query("token")
	}
	return authService.ValidateToken(token)
}

// LoggerMiddleware logs each HTTP request after it completes.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
