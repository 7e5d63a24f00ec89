package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a unique constraint rejects an insert.
	ErrAlreadyExists = errors.New("record already exists")
)

// User represents a user in the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsGuest      bool
	SessionID    string // guest session tracking
	CreatedAt    time.Time
}

// Room represents a chat room. Rooms are created lazily on first reference
// and never deleted.
type Room struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Message represents a persisted chat message. Messages are immutable after
// creation.
type Message struct {
	ID        int64
	RoomID    int64
	UserID    int64
	Sender    string // username, resolved on read
	Body      string
	ParentID  *int64 // nil when the message is not a reply
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// CreateGuestUser creates a temporary guest user with session ID.
	CreateGuestUser(ctx context.Context, sessionID string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// GetUserBySessionID retrieves a guest user by session ID.
	GetUserBySessionID(ctx context.Context, sessionID string) (*User, error)
}

// RoomStore handles room persistence.
type RoomStore interface {
	// GetOrCreateRoom resolves a room by name, creating it if absent.
	GetOrCreateRoom(ctx context.Context, name string) (*Room, error)

	// GetRoomByName retrieves a room by name.
	GetRoomByName(ctx context.Context, name string) (*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message with a server-assigned timestamp and
	// returns the stored record.
	CreateMessage(ctx context.Context, roomID, userID int64, body string, parentID *int64) (*Message, error)

	// GetMessageByID retrieves a message by ID, used for reply resolution.
	GetMessageByID(ctx context.Context, id int64) (*Message, error)

	// ListRecentMessages returns the newest messages of a room, oldest first,
	// capped at limit.
	ListRecentMessages(ctx context.Context, roomID int64, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
