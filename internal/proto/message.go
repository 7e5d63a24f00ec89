package proto

// InboundMessage is a chat frame received from the client. Room and identity
// are established out of band at connect time; Sender is carried for wire
// compatibility only and never trusted.
type InboundMessage struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	ReplyToID string `json:"reply_to_id"`
}

// MessagePayload is the canonical chat message as sent to clients.
type MessagePayload struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	ReplyToID string `json:"reply_to_id"`
}

// OutboundMessage wraps a chat message event.
type OutboundMessage struct {
	Message MessagePayload `json:"message"`
}

// OutboundUserCount wraps a presence count event.
type OutboundUserCount struct {
	UserCount int64 `json:"user_count"`
}
