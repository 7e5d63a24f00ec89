package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/auth"
	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/proto"
	"github.com/roomtalk/roomtalk-server/internal/service/messages"
)

// APIHandlers provides the REST endpoints: identity boundary and the bounded
// recent-history fetch.
type APIHandlers struct {
	auth         *auth.Service
	messages     *messages.Service
	historyLimit int
	log          *zerolog.Logger
}

// NewAPIHandlers creates the REST handler set.
func NewAPIHandlers(authService *auth.Service, msgService *messages.Service, historyLimit int, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		auth:         authService,
		messages:     msgService,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response body.
type AuthResponse struct {
	Token string `json:"token"`
}

// HistoryResponse represents the recent-history response body.
type HistoryResponse struct {
	Room     string                 `json:"room"`
	Messages []proto.MessagePayload `json:"messages"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles user registration.
// POST /api/register
func (h *APIHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "user already exists"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to register user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// Login handles user login.
// POST /api/login
func (h *APIHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to login user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// GuestLogin creates a guest user and returns a token.
// POST /api/guest
func (h *APIHandlers) GuestLogin(c *gin.Context) {
	token, sessionID, err := h.auth.GuestLogin(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create guest user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.SetCookie("guest_session", sessionID, 3600*24*7, "/", "", false, true)
	c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// RoomHistory returns the room's latest messages, oldest first.
// GET /api/rooms/:room/messages
func (h *APIHandlers) RoomHistory(c *gin.Context) {
	room := c.Param("room")

	history, err := h.messages.RecentHistory(c.Request.Context(), room, h.historyLimit)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to fetch history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	payloads := make([]proto.MessagePayload, 0, len(history))
	for _, msg := range history {
		payloads = append(payloads, messagePayload(msg))
	}
	c.JSON(http.StatusOK, HistoryResponse{Room: room, Messages: payloads})
}

func messagePayload(msg core.Message) proto.MessagePayload {
	return proto.MessagePayload{
		Sender:    msg.Sender,
		Message:   msg.Body,
		Timestamp: msg.Timestamp,
		ReplyToID: msg.ReplyToID,
	}
}
