package http

import (
	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/proto"
)

// outboundFromEvent re-encodes a core event for the wire. The session on the
// receiving end discriminates by the wrapping key: "message" or "user_count".
func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventUserCount:
		return proto.OutboundUserCount{UserCount: event.UserCount}
	default:
		return proto.OutboundMessage{Message: messagePayload(event.Message)}
	}
}
