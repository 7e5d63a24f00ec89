package core

import "errors"

// Error codes for message-handling failures. They are logged for
// observability; none of them terminates the originating session.
const (
	ErrCodeSenderNotFound     = "sender_not_found"
	ErrCodeReplyTargetMissing = "reply_target_missing"
	ErrCodeStorageError       = "storage_error"
	ErrCodeDeliveryFailure    = "delivery_failure"
)

var (
	// ErrSenderNotFound means the supplied identity does not resolve to a
	// known user. Message creation aborts and nothing is broadcast.
	ErrSenderNotFound = errors.New("sender not found")
	// ErrStorage wraps unexpected failures of the durable collaborator.
	ErrStorage = errors.New("storage error")
)

// CodeForError maps a message-creation error to its taxonomy code.
func CodeForError(err error) string {
	switch {
	case errors.Is(err, ErrSenderNotFound):
		return ErrCodeSenderNotFound
	default:
		return ErrCodeStorageError
	}
}
