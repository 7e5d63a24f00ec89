package core

// TimestampLayout is the wire format for message timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Message is the canonical form of a persisted chat message, as broadcast to
// room members. Fields are pre-formatted so downstream payloads stay stable
// regardless of storage internals.
type Message struct {
	ID        int64
	Sender    string
	Body      string
	Timestamp string // TimestampLayout
	ReplyToID string // empty when the message is not a reply
}
