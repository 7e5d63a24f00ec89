package core

import (
	"sync"
	"testing"
)

func TestPresenceConcurrentIncrements(t *testing.T) {
	p := NewPresence()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment("general")
		}()
	}
	wg.Wait()

	if got := p.Count("general"); got != n {
		t.Fatalf("expected count %d, got %d", n, got)
	}
}

func TestPresencePairedJoinLeave(t *testing.T) {
	p := NewPresence()

	// Each worker models one connection lifecycle: increment on connect,
	// decrement on disconnect. No update may be lost.
	const workers = 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment("general")
			p.Decrement("general")
		}()
	}
	wg.Wait()

	if got := p.Count("general"); got != 0 {
		t.Fatalf("expected count 0 after paired join/leave, got %d", got)
	}
}

func TestPresenceDecrementClampsAtZero(t *testing.T) {
	p := NewPresence()

	if got := p.Decrement("general"); got != 0 {
		t.Fatalf("decrement on empty room should clamp to 0, got %d", got)
	}

	p.Increment("general")
	p.Decrement("general")
	if got := p.Decrement("general"); got != 0 {
		t.Fatalf("duplicate decrement should clamp to 0, got %d", got)
	}
	if got := p.Count("general"); got != 0 {
		t.Fatalf("count went negative: %d", got)
	}
}

func TestPresenceExcessDecrements(t *testing.T) {
	p := NewPresence()

	const incs, decs = 30, 50
	var wg sync.WaitGroup
	for i := 0; i < incs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment("general")
		}()
	}
	wg.Wait()

	for i := 0; i < decs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Decrement("general")
		}()
	}
	wg.Wait()

	if got := p.Count("general"); got != 0 {
		t.Fatalf("expected max(0, %d-%d)=0, got %d", incs, decs, got)
	}
}

func TestPresenceRoomsAreIndependent(t *testing.T) {
	p := NewPresence()

	p.Increment("general")
	p.Increment("general")
	p.Increment("random")

	if got := p.Count("general"); got != 2 {
		t.Fatalf("expected general count 2, got %d", got)
	}
	if got := p.Count("random"); got != 1 {
		t.Fatalf("expected random count 1, got %d", got)
	}
}

func TestPresenceAnnounceSerializesPublishOrder(t *testing.T) {
	p := NewPresence()

	var mu sync.Mutex
	var published []int64
	publish := func(n int64) {
		mu.Lock()
		published = append(published, n)
		mu.Unlock()
	}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Announce("general", func() int64 { return p.Increment("general") }, publish)
		}()
	}
	wg.Wait()

	if len(published) != workers {
		t.Fatalf("expected %d published counts, got %d", workers, len(published))
	}
	for i, n := range published {
		if n != int64(i+1) {
			t.Fatalf("published counts out of order at %d: %v", i, published)
		}
	}
}
