package core

import (
	"testing"
)

func TestJoinProducesReplyAndBroadcast(t *testing.T) {
	_, router, _ := newTestCore(t)

	ds := router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1", Nickname: "Alice"})
	if len(ds) != 2 {
		t.Fatalf("join produced %d deliveries, want 2", len(ds))
	}

	reply := ds[0]
	if reply.Scope != ScopeSender || reply.Event.Kind != EventJoined {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.Event.ID != "a1" || reply.Event.Nickname != "Alice" || reply.Event.ClientsOnline != 1 {
		t.Fatalf("unexpected joined payload: %+v", reply.Event)
	}

	announce := ds[1]
	if announce.Scope != ScopeBroadcast || announce.Event.Kind != EventUserJoined {
		t.Fatalf("unexpected broadcast: %+v", announce)
	}
	if announce.Event.Nickname != "Alice" || announce.Event.ClientsOnline != 1 {
		t.Fatalf("unexpected user_joined payload: %+v", announce.Event)
	}
}

func TestJoinDefaultsNickname(t *testing.T) {
	reg, router, _ := newTestCore(t)

	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1"})
	rec, _ := reg.Get("a1")
	if rec.Nickname != "Anonymous" {
		t.Fatalf("nickname = %q, want Anonymous", rec.Nickname)
	}
}

func TestChatBroadcastsWithSenderIdentity(t *testing.T) {
	_, router, mock := newTestCore(t)

	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1", Nickname: "Alice"})
	d := oneDelivery(t, router.Dispatch("a1", Inbound{Kind: InboundChat, Text: "hello"}))

	if d.Scope != ScopeBroadcast {
		t.Fatalf("chat scope = %v, want broadcast", d.Scope)
	}
	ev := d.Event
	if ev.Kind != EventChat || ev.From != "Alice" || ev.FromID != "a1" || ev.Text != "hello" {
		t.Fatalf("unexpected chat event: %+v", ev)
	}
	if ev.Timestamp != mock.Now().UnixMilli() {
		t.Fatalf("timestamp = %d, want %d", ev.Timestamp, mock.Now().UnixMilli())
	}
}

func TestChatBeforeJoinRejected(t *testing.T) {
	_, router, _ := newTestCore(t)

	d := oneDelivery(t, router.Dispatch("", Inbound{Kind: InboundChat, Text: "hi"}))
	if d.Scope != ScopeSender || d.Event.Kind != EventError || d.Event.Message != ErrMsgNotRegistered {
		t.Fatalf("unexpected delivery: %+v", d)
	}
}

func TestPrivateMessageScenario(t *testing.T) {
	_, router, _ := newTestCore(t)

	alice := &stubHandle{}
	bob := &stubHandle{}
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1", Nickname: "Alice", Handle: alice})
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "b1", Nickname: "Bob", Handle: bob})

	ds := router.Dispatch("a1", Inbound{Kind: InboundPrivate, ToID: "b1", Text: "hi"})
	if len(ds) != 2 {
		t.Fatalf("private produced %d deliveries, want 2", len(ds))
	}

	toBob := ds[0]
	if toBob.Scope != ScopeUnicast || toBob.TargetID != "b1" {
		t.Fatalf("unexpected recipient delivery: %+v", toBob)
	}
	if toBob.Event.Kind != EventPrivate || toBob.Event.From != "Alice" || toBob.Event.FromID != "a1" || toBob.Event.Text != "hi" {
		t.Fatalf("unexpected private payload: %+v", toBob.Event)
	}

	confirm := ds[1]
	if confirm.Scope != ScopeSender || confirm.Event.Kind != EventPrivateSent {
		t.Fatalf("unexpected confirmation: %+v", confirm)
	}
	if confirm.Event.To != "Bob" || confirm.Event.Text != "hi" {
		t.Fatalf("unexpected private_sent payload: %+v", confirm.Event)
	}
}

func TestPrivateToUnknownIDErrorsSenderOnly(t *testing.T) {
	_, router, _ := newTestCore(t)

	bob := &stubHandle{}
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1", Nickname: "Alice", Handle: &stubHandle{}})
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "b1", Nickname: "Bob", Handle: bob})

	d := oneDelivery(t, router.Dispatch("a1", Inbound{Kind: InboundPrivate, ToID: "zz", Text: "hi"}))
	if d.Scope != ScopeSender || d.Event.Kind != EventError || d.Event.Message != ErrMsgRecipientOffline {
		t.Fatalf("unexpected delivery: %+v", d)
	}
	if len(bob.received()) != 0 {
		t.Fatalf("bystander received events: %+v", bob.received())
	}
}

func TestPrivateToClosedHandleErrors(t *testing.T) {
	_, router, _ := newTestCore(t)

	dead := &stubHandle{}
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1", Nickname: "Alice", Handle: &stubHandle{}})
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "b1", Nickname: "Bob", Handle: dead})
	dead.close()

	d := oneDelivery(t, router.Dispatch("a1", Inbound{Kind: InboundPrivate, ToID: "b1", Text: "hi"}))
	if d.Event.Kind != EventError || d.Event.Message != ErrMsgRecipientOffline {
		t.Fatalf("unexpected delivery: %+v", d)
	}
}

func TestListUsersIncludesSender(t *testing.T) {
	_, router, _ := newTestCore(t)

	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1", Nickname: "Alice"})
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "b1", Nickname: "Bob"})

	d := oneDelivery(t, router.Dispatch("a1", Inbound{Kind: InboundListUsers}))
	if d.Scope != ScopeSender || d.Event.Kind != EventUserList {
		t.Fatalf("unexpected delivery: %+v", d)
	}

	seen := map[string]string{}
	for _, u := range d.Event.Users {
		seen[u.ID] = u.Nickname
	}
	if len(seen) != 2 || seen["a1"] != "Alice" || seen["b1"] != "Bob" {
		t.Fatalf("unexpected user list: %+v", d.Event.Users)
	}
}

func TestDisconnectBroadcastsUserLeft(t *testing.T) {
	reg, router, _ := newTestCore(t)

	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "a1", Nickname: "Alice"})
	router.Dispatch("", Inbound{Kind: InboundJoin, ID: "b1", Nickname: "Bob"})

	d := oneDelivery(t, router.Dispatch("a1", Inbound{Kind: InboundDisconnect}))
	if d.Scope != ScopeBroadcast || d.Event.Kind != EventUserLeft {
		t.Fatalf("unexpected delivery: %+v", d)
	}
	if d.Event.Nickname != "Alice" || d.Event.ClientsOnline != 1 {
		t.Fatalf("unexpected user_left payload: %+v", d.Event)
	}
	if reg.Count() != 1 {
		t.Fatalf("count after disconnect = %d", reg.Count())
	}

	// Double-close produces nothing.
	if ds := router.Dispatch("a1", Inbound{Kind: InboundDisconnect}); len(ds) != 0 {
		t.Fatalf("double disconnect produced deliveries: %+v", ds)
	}
}

func TestUnknownInboundProducesNothing(t *testing.T) {
	_, router, _ := newTestCore(t)

	if ds := router.Dispatch("a1", Inbound{Kind: InboundUnknown}); len(ds) != 0 {
		t.Fatalf("unknown inbound produced deliveries: %+v", ds)
	}
}

func TestMalformedProducesSingleError(t *testing.T) {
	_, router, _ := newTestCore(t)

	d := oneDelivery(t, router.Malformed())
	if d.Scope != ScopeSender || d.Event.Kind != EventError || d.Event.Message != ErrMsgInvalidFormat {
		t.Fatalf("unexpected delivery: %+v", d)
	}
}
