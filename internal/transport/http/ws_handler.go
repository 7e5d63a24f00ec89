package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/proto"
	"github.com/roomtalk/roomtalk-server/internal/utils"
)

// WSHandler upgrades connections and bridges them to chat sessions. The room
// comes from the route, the identity from the validated token; neither is
// ever taken from inbound frames.
type WSHandler struct {
	deps        Deps
	eventBuffer int
	log         *zerolog.Logger
}

// NewWSHandler builds the WebSocket handler.
func NewWSHandler(deps Deps, eventBuffer int, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{deps: deps, eventBuffer: eventBuffer, log: logger}
}

// Handle serves GET /ws/:room.
func (h *WSHandler) Handle(c *gin.Context) {
	room := c.Param("room")
	if room == "" {
		c.JSON(stdhttp.StatusBadRequest, ErrorResponse{Error: "room is required"})
		return
	}

	claims, err := claimsFromRequest(h.deps.Auth, c)
	if err != nil {
		c.JSON(stdhttp.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(utils.NewID(), claims.Username, h.eventBuffer)
	session := core.NewSession(client, room, h.deps.Registry, h.deps.Presence, h.deps.Router, h.deps.Messages, h.log)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	session.Connect()
	defer session.Close()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other loop
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			status = websocket.StatusInternalError
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		var inbound proto.InboundMessage
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}
		session.HandleMessage(ctx, inbound.Message, inbound.Sender, inbound.ReplyToID)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Warn().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
