package core

// EventKind is a notification the core emits to room members.
type EventKind int

const (
	// EventChatMessage carries a persisted chat message.
	EventChatMessage EventKind = iota
	// EventUserCount carries the updated presence count for a room.
	EventUserCount
)

// Event is fanned out to every connection registered in a room.
type Event struct {
	Kind      EventKind
	Room      string
	Message   Message // set for EventChatMessage
	UserCount int64   // set for EventUserCount
}
