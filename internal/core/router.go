package core

import (
	"sync"

	"github.com/rs/zerolog"
)

// queueSize bounds the number of events waiting to be fanned out per room.
const queueSize = 256

// Router delivers events to every connection registered in a room. Each room
// gets its own dispatch goroutine draining a FIFO queue, so events submitted
// for one room are delivered to all members in submission order while rooms
// stay independent of each other.
type Router struct {
	registry *Registry
	log      *zerolog.Logger

	mu     sync.Mutex
	queues map[string]chan *Event
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewRouter constructs a router fanning out over the given registry.
func NewRouter(registry *Registry, logger *zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		log:      logger,
		queues:   make(map[string]chan *Event),
		quit:     make(chan struct{}),
	}
}

// Broadcast enqueues the event for delivery to the room's current members.
// Delivery happens on the room's dispatch goroutine against the membership
// snapshot taken there; a connection joining afterwards is not guaranteed to
// receive this event. After Close the event is dropped.
func (r *Router) Broadcast(room string, event *Event) {
	r.mu.Lock()
	select {
	case <-r.quit:
		r.mu.Unlock()
		return
	default:
	}
	q, ok := r.queues[room]
	if !ok {
		q = make(chan *Event, queueSize)
		r.queues[room] = q
		r.wg.Add(1)
		go r.dispatch(room, q)
	}
	r.mu.Unlock()

	// Queues are never closed; shutdown is signalled via quit, so a send
	// racing Close parks on the select instead of panicking.
	select {
	case q <- event:
	case <-r.quit:
	}
}

// dispatch drains one room's queue, one event at a time, until shutdown.
func (r *Router) dispatch(room string, q chan *Event) {
	defer r.wg.Done()

	for {
		select {
		case <-r.quit:
			return
		case event := <-q:
			for _, c := range r.registry.Members(room) {
				select {
				case c.Events <- event:
				default:
					// Slow or dead consumer; drop for this recipient only.
					r.log.Warn().
						Str("error_code", ErrCodeDeliveryFailure).
						Str("room", room).
						Str("client_id", c.ID).
						Msg("dropping event for backlogged connection")
				}
			}
		}
	}
}

// Close stops all dispatchers and waits for them to exit. Events still queued
// and broadcasts submitted after Close are discarded. Safe to call more than
// once and concurrently with Broadcast.
func (r *Router) Close() {
	r.mu.Lock()
	select {
	case <-r.quit:
		r.mu.Unlock()
		return
	default:
		close(r.quit)
	}
	r.mu.Unlock()

	r.wg.Wait()
}
