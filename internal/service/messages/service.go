package messages

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/store"
)

// Service validates and persists inbound messages, resolving optional reply
// threading, and maps stored records to their canonical broadcast form.
type Service struct {
	store store.Store
	log   *zerolog.Logger
}

// NewService creates a message service over the given store.
func NewService(st store.Store, logger *zerolog.Logger) *Service {
	return &Service{store: st, log: logger}
}

// CreateMessage persists one inbound message and returns its canonical form.
//
// Rooms are resolved-or-created by name, so a missing room is never an error.
// An unknown sender aborts creation with core.ErrSenderNotFound. A reply
// target that does not resolve is tolerated: the message is created without a
// thread link and the miss is logged. Anything else surfaces wrapped in
// core.ErrStorage.
func (s *Service) CreateMessage(ctx context.Context, room, sender, body, replyToID string) (core.Message, error) {
	r, err := s.store.GetOrCreateRoom(ctx, room)
	if err != nil {
		return core.Message{}, fmt.Errorf("%w: resolve room %q: %v", core.ErrStorage, room, err)
	}

	user, err := s.store.GetUserByUsername(ctx, sender)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Message{}, fmt.Errorf("%w: %q", core.ErrSenderNotFound, sender)
		}
		return core.Message{}, fmt.Errorf("%w: resolve sender %q: %v", core.ErrStorage, sender, err)
	}

	parentID, effectiveReply := s.resolveParent(ctx, r, replyToID)

	msg, err := s.store.CreateMessage(ctx, r.ID, user.ID, body, parentID)
	if err != nil {
		return core.Message{}, fmt.Errorf("%w: create message: %v", core.ErrStorage, err)
	}

	return canonical(msg, effectiveReply), nil
}

// resolveParent turns a raw reply_to_id into a parent message reference.
// Unparseable or missing targets yield no parent; the original system also
// lets a parent live in a different room, which is kept but logged.
func (s *Service) resolveParent(ctx context.Context, room *store.Room, replyToID string) (*int64, string) {
	if replyToID == "" {
		return nil, ""
	}

	id, err := strconv.ParseInt(replyToID, 10, 64)
	if err != nil {
		s.log.Warn().
			Str("error_code", core.ErrCodeReplyTargetMissing).
			Str("reply_to_id", replyToID).
			Msg("reply target id is not numeric")
		return nil, ""
	}

	parent, err := s.store.GetMessageByID(ctx, id)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("error_code", core.ErrCodeReplyTargetMissing).
			Str("reply_to_id", replyToID).
			Msg("reply target does not exist")
		return nil, ""
	}

	if parent.RoomID != room.ID {
		s.log.Debug().
			Int64("parent_room_id", parent.RoomID).
			Int64("room_id", room.ID).
			Str("reply_to_id", replyToID).
			Msg("reply target belongs to another room")
	}

	return &parent.ID, replyToID
}

// RecentHistory returns the room's latest messages in canonical form, oldest
// first. The room is resolved-or-created like everywhere else.
func (s *Service) RecentHistory(ctx context.Context, room string, limit int) ([]core.Message, error) {
	r, err := s.store.GetOrCreateRoom(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve room %q: %v", core.ErrStorage, room, err)
	}

	stored, err := s.store.ListRecentMessages(ctx, r.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", core.ErrStorage, err)
	}

	history := make([]core.Message, 0, len(stored))
	for _, msg := range stored {
		reply := ""
		if msg.ParentID != nil {
			reply = strconv.FormatInt(*msg.ParentID, 10)
		}
		history = append(history, canonical(msg, reply))
	}
	return history, nil
}

func canonical(msg *store.Message, replyToID string) core.Message {
	return core.Message{
		ID:        msg.ID,
		Sender:    msg.Sender,
		Body:      msg.Body,
		Timestamp: msg.CreatedAt.Format(core.TimestampLayout),
		ReplyToID: replyToID,
	}
}
