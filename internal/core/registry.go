package core

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Handle is a transport-specific way of pushing events to one client.
// Send must never block: implementations drop events they cannot deliver.
// Polling clients carry no handle.
type Handle interface {
	Open() bool
	Send(Event)
}

// ClientRecord tracks one registered participant.
type ClientRecord struct {
	ID          string
	Nickname    string
	ConnectedAt time.Time
	LastSeen    time.Time
	Handle      Handle
}

// Registry owns every ClientRecord. All mutation goes through the single
// internal lock, so connection handlers and sweepers may call it concurrently.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*ClientRecord
	clk     clock.Clock
}

// NewRegistry constructs an empty registry.
func NewRegistry(clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.New()
	}
	return &Registry{
		clients: make(map[string]*ClientRecord),
		clk:     clk,
	}
}

// Upsert inserts or overwrites the record for id and returns the new total
// count. A second join with the same id wins: nickname, handle, and LastSeen
// are replaced while ConnectedAt keeps the first join's timestamp.
func (r *Registry) Upsert(id, nickname string, h Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clk.Now()
	if existing, ok := r.clients[id]; ok {
		existing.Nickname = nickname
		existing.Handle = h
		existing.LastSeen = now
		return len(r.clients)
	}

	r.clients[id] = &ClientRecord{
		ID:          id,
		Nickname:    nickname,
		ConnectedAt: now,
		LastSeen:    now,
		Handle:      h,
	}
	return len(r.clients)
}

// Touch updates LastSeen for id and reports whether it existed. Heartbeats
// from expired ids are routine under polling, so an unknown id is a no-op.
func (r *Registry) Touch(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.clients[id]
	if !ok {
		return false
	}
	rec.LastSeen = r.clk.Now()
	return true
}

// Remove deletes the record for id, returning it if it was present.
// Double-closes reference stale ids routinely, so absence is not an error.
func (r *Registry) Remove(id string) (ClientRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.clients[id]
	if !ok {
		return ClientRecord{}, false
	}
	delete(r.clients, id)
	return *rec, true
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id string) (ClientRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.clients[id]
	if !ok {
		return ClientRecord{}, false
	}
	return *rec, true
}

// All returns a snapshot of every record. No ordering is guaranteed.
func (r *Registry) All() []ClientRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ClientRecord, 0, len(r.clients))
	for _, rec := range r.clients {
		out = append(out, *rec)
	}
	return out
}

// Count returns the number of registered clients.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
