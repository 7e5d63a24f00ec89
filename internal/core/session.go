package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// MessageCreator persists an inbound message and resolves reply threading.
// Implemented by the messages service; faked in tests.
type MessageCreator interface {
	CreateMessage(ctx context.Context, room, sender, body, replyToID string) (Message, error)
}

// SessionState tracks a session through its lifecycle.
type SessionState int32

const (
	// StateConnecting is the initial state before registration.
	StateConnecting SessionState = iota
	// StateActive means the session is registered and processing events.
	StateActive
	// StateClosed is terminal; no further events are processed.
	StateClosed
)

// Session drives the registry, presence counter and router for one live
// connection. Its identity (room, user) is fixed at construction from the
// authenticated connect request and never read from inbound frames.
type Session struct {
	client   *Client
	room     string
	registry *Registry
	presence *Presence
	router   *Router
	messages MessageCreator
	log      zerolog.Logger

	state     atomic.Int32
	closeOnce sync.Once
}

// NewSession constructs a session in the Connecting state.
func NewSession(client *Client, room string, registry *Registry, presence *Presence, router *Router, messages MessageCreator, logger *zerolog.Logger) *Session {
	return &Session{
		client:   client,
		room:     room,
		registry: registry,
		presence: presence,
		router:   router,
		messages: messages,
		log: logger.With().
			Str("client_id", client.ID).
			Str("user", client.User).
			Str("room", room).
			Logger(),
	}
}

// Client returns the session's connection handle.
func (s *Session) Client() *Client { return s.client }

// Room returns the room this session is bound to.
func (s *Session) Room() string { return s.room }

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Connect registers the connection in its room, moves the session to Active
// and broadcasts the incremented presence count to all members, including
// this one.
func (s *Session) Connect() {
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return
	}
	s.registry.Join(s.room, s.client)

	n := s.presence.Announce(s.room,
		func() int64 { return s.presence.Increment(s.room) },
		func(n int64) {
			s.router.Broadcast(s.room, &Event{Kind: EventUserCount, Room: s.room, UserCount: n})
		})

	s.log.Info().Int64("user_count", n).Msg("session connected")
}

// HandleMessage processes one inbound chat frame. The persisted canonical
// message is broadcast to the room, originator included. Creation failures
// are logged and swallowed: nothing is broadcast and the session stays
// active. The frame's claimed sender is ignored for trust purposes.
func (s *Session) HandleMessage(ctx context.Context, body, claimedSender, replyToID string) {
	if s.State() != StateActive {
		return
	}
	if claimedSender != "" && claimedSender != s.client.User {
		s.log.Debug().Str("claimed_sender", claimedSender).Msg("frame sender differs from session identity")
	}

	msg, err := s.messages.CreateMessage(ctx, s.room, s.client.User, body, replyToID)
	if err != nil {
		s.log.Warn().Err(err).Str("error_code", CodeForError(err)).Msg("message creation failed")
		return
	}

	s.router.Broadcast(s.room, &Event{Kind: EventChatMessage, Room: s.room, Message: msg})
}

// Close runs the disconnect path exactly once: deregister, decrement the
// presence count, broadcast the updated count to the remaining members.
// Closed is terminal; duplicate disconnect events are tolerated.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		prev := SessionState(s.state.Swap(int32(StateClosed)))
		s.registry.Leave(s.room, s.client)
		if prev != StateActive {
			return
		}

		n := s.presence.Announce(s.room,
			func() int64 { return s.presence.Decrement(s.room) },
			func(n int64) {
				s.router.Broadcast(s.room, &Event{Kind: EventUserCount, Room: s.room, UserCount: n})
			})

		s.log.Info().Int64("user_count", n).Msg("session closed")
	})
}
