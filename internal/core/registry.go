package core

import "sync"

// Registry tracks which live connections belong to which room. Mutations are
// serialized by a single lock; Members hands out point-in-time snapshots so
// fan-out never iterates a set that is being mutated.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[*Client]struct{})}
}

// Join adds the client to the room's membership set. Idempotent: joining a
// room the client is already in is a no-op. Rooms are created lazily on first
// join, including rooms previously pruned empty.
func (r *Registry) Join(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	members[c] = struct{}{}
}

// Leave removes the client from the room's membership set. A leave for an
// absent client is a no-op, not an error: disconnects may race with cleanup.
// The room entry is pruned once its last member leaves.
func (r *Registry) Leave(room string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Members returns a snapshot of the room's current connections. The slice is
// owned by the caller; later joins and leaves do not affect it.
func (r *Registry) Members(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	snapshot := make([]*Client, 0, len(members))
	for c := range members {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// Count returns the size of the room's live membership set. Used to reconcile
// the presence counter against actual registrations.
func (r *Registry) Count(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}
