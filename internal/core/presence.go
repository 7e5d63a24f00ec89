package core

import (
	"sync"
	"sync/atomic"
)

// roomCount holds one room's presence state. The counter itself is atomic;
// announceMu serializes the mutate-then-publish pair so a stale count can
// never be submitted to the router after a newer one.
type roomCount struct {
	announceMu sync.Mutex
	n          atomic.Int64
}

// Presence maintains a non-negative connection count per room. Counts live
// for the duration of the process and are rebuilt from zero on restart as
// connections re-register.
type Presence struct {
	mu    sync.Mutex
	rooms map[string]*roomCount
}

// NewPresence constructs an empty presence counter.
func NewPresence() *Presence {
	return &Presence{rooms: make(map[string]*roomCount)}
}

func (p *Presence) room(room string) *roomCount {
	p.mu.Lock()
	defer p.mu.Unlock()

	rc, ok := p.rooms[room]
	if !ok {
		rc = &roomCount{}
		p.rooms[room] = rc
	}
	return rc
}

// Increment atomically adds one to the room's count and returns the result.
func (p *Presence) Increment(room string) int64 {
	return p.room(room).n.Add(1)
}

// Decrement atomically subtracts one from the room's count, clamped at zero,
// and returns the result. The clamp tolerates duplicate or late disconnects
// rather than surfacing them as errors.
func (p *Presence) Decrement(room string) int64 {
	rc := p.room(room)
	for {
		cur := rc.n.Load()
		if cur <= 0 {
			return 0
		}
		if rc.n.CompareAndSwap(cur, cur-1) {
			return cur - 1
		}
	}
}

// Count returns the room's current count.
func (p *Presence) Count(room string) int64 {
	return p.room(room).n.Load()
}

// Announce runs mutate and hands its result to publish while holding the
// room's announce lock. Sessions use it so counter mutation order and count
// broadcast order agree per room; publish must only enqueue, not block on
// delivery.
func (p *Presence) Announce(room string, mutate func() int64, publish func(int64)) int64 {
	rc := p.room(room)
	rc.announceMu.Lock()
	defer rc.announceMu.Unlock()

	n := mutate()
	publish(n)
	return n
}
