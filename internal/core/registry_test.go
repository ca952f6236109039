package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestRegistryCountsDistinctJoins(t *testing.T) {
	reg := NewRegistry(clock.NewMock())

	for i := 1; i <= 5; i++ {
		count := reg.Upsert(fmt.Sprintf("id-%d", i), fmt.Sprintf("nick-%d", i), nil)
		if count != i {
			t.Fatalf("after %d joins count = %d", i, count)
		}
	}
	if reg.Count() != 5 {
		t.Fatalf("count = %d, want 5", reg.Count())
	}
}

func TestRegistryRejoinOverwrites(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Unix(1_700_000_000, 0))
	reg := NewRegistry(mock)

	reg.Upsert("a1", "Alice", nil)
	first, _ := reg.Get("a1")

	mock.Add(10 * time.Second)
	count := reg.Upsert("a1", "Alicia", &stubHandle{})

	if count != 1 {
		t.Fatalf("rejoin changed count: %d", count)
	}
	rec, ok := reg.Get("a1")
	if !ok {
		t.Fatal("record missing after rejoin")
	}
	if rec.Nickname != "Alicia" {
		t.Fatalf("nickname not overwritten: %s", rec.Nickname)
	}
	if rec.Handle == nil {
		t.Fatal("handle not overwritten")
	}
	if !rec.ConnectedAt.Equal(first.ConnectedAt) {
		t.Fatalf("ConnectedAt reset on rejoin: %v != %v", rec.ConnectedAt, first.ConnectedAt)
	}
	if !rec.LastSeen.After(first.LastSeen) {
		t.Fatalf("LastSeen not advanced: %v", rec.LastSeen)
	}
}

func TestRegistryTouch(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Unix(1_700_000_000, 0))
	reg := NewRegistry(mock)

	reg.Upsert("a1", "Alice", nil)
	before, _ := reg.Get("a1")

	mock.Add(time.Second)
	if !reg.Touch("a1") {
		t.Fatal("touch on known id returned false")
	}
	after, _ := reg.Get("a1")
	if !after.LastSeen.After(before.LastSeen) {
		t.Fatal("touch did not advance LastSeen")
	}

	if reg.Touch("ghost") {
		t.Fatal("touch on unknown id returned true")
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry(clock.NewMock())
	reg.Upsert("a1", "Alice", nil)
	reg.Upsert("b1", "Bob", nil)

	rec, ok := reg.Remove("a1")
	if !ok || rec.Nickname != "Alice" {
		t.Fatalf("remove returned %+v, %v", rec, ok)
	}
	if reg.Count() != 1 {
		t.Fatalf("count after remove = %d", reg.Count())
	}
	if _, ok := reg.Get("a1"); ok {
		t.Fatal("removed record still retrievable")
	}
	if _, ok := reg.Remove("a1"); ok {
		t.Fatal("double remove reported success")
	}
}

func TestRegistryAllSnapshot(t *testing.T) {
	reg := NewRegistry(clock.NewMock())
	reg.Upsert("a1", "Alice", nil)
	reg.Upsert("b1", "Bob", nil)

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("snapshot size = %d", len(all))
	}

	// Mutating the registry must not affect a taken snapshot.
	reg.Remove("a1")
	if len(all) != 2 {
		t.Fatal("snapshot mutated by remove")
	}
}
