package core

import (
	"sync"
	"testing"
)

func TestRegistryJoinIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	c := NewClient("a", "alice", 0)

	reg.Join("general", c)
	reg.Join("general", c)

	if got := reg.Count("general"); got != 1 {
		t.Fatalf("expected 1 member after double join, got %d", got)
	}
}

func TestRegistryLeaveAbsentIsNoop(t *testing.T) {
	reg := NewRegistry()
	c := NewClient("a", "alice", 0)

	reg.Leave("general", c)
	reg.Join("general", c)
	reg.Leave("general", c)
	reg.Leave("general", c)

	if got := reg.Count("general"); got != 0 {
		t.Fatalf("expected empty room, got %d members", got)
	}
}

func TestRegistryRejoinPrunedRoom(t *testing.T) {
	reg := NewRegistry()
	c := NewClient("a", "alice", 0)

	reg.Join("general", c)
	reg.Leave("general", c)
	reg.Join("general", c)

	if got := reg.Count("general"); got != 1 {
		t.Fatalf("expected 1 member after rejoin, got %d", got)
	}
}

func TestRegistryMembersIsSnapshot(t *testing.T) {
	reg := NewRegistry()
	a := NewClient("a", "alice", 0)
	b := NewClient("b", "bob", 0)

	reg.Join("general", a)
	snapshot := reg.Members("general")

	reg.Join("general", b)
	reg.Leave("general", a)

	if len(snapshot) != 1 || snapshot[0] != a {
		t.Fatalf("snapshot should be unaffected by later mutations: %v", snapshot)
	}
}

func TestRegistryConcurrentJoinLeave(t *testing.T) {
	reg := NewRegistry()

	const workers = 50
	var wg sync.WaitGroup
	clients := make([]*Client, workers)
	for i := range clients {
		clients[i] = NewClient("c", "user", 0)
	}

	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			reg.Join("general", c)
			reg.Join("other", c)
			reg.Leave("other", c)
		}(c)
	}
	wg.Wait()

	if got := reg.Count("general"); got != workers {
		t.Fatalf("expected %d members in general, got %d", workers, got)
	}
	if got := reg.Count("other"); got != 0 {
		t.Fatalf("expected other room empty, got %d", got)
	}
}
