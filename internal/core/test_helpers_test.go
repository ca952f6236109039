package core

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// stubHandle records pushed events and can simulate a dead transport.
type stubHandle struct {
	mu     sync.Mutex
	closed bool
	events []Event
}

func (h *stubHandle) Open() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed
}

func (h *stubHandle) Send(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.events = append(h.events, ev)
}

func (h *stubHandle) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

func (h *stubHandle) received() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

func newTestCore(t *testing.T) (*Registry, *Router, *clock.Mock) {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(time.Unix(1_700_000_000, 0))

	reg := NewRegistry(mock)
	logger := zerolog.Nop()
	return reg, NewRouter(reg, mock, &logger), mock
}

// oneDelivery asserts ds holds exactly one delivery and returns it.
func oneDelivery(t *testing.T, ds []Delivery) Delivery {
	t.Helper()
	if len(ds) != 1 {
		t.Fatalf("expected exactly one delivery, got %d: %+v", len(ds), ds)
	}
	return ds[0]
}
