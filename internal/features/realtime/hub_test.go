package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBroadcastToDashboardReachesOnlySubscribers(t *testing.T) {
	registry := newTestRegistry()
	hub := NewHub(registry, zap.NewNop())

	w1, w2, w3 := &fakeWriter{}, &fakeWriter{}, &fakeWriter{}
	c1 := registry.Register(w1)
	c2 := registry.Register(w2)
	c3 := registry.Register(w3)
	registry.Subscribe(c1.ID, "dash-1")
	registry.Subscribe(c2.ID, "dash-1")
	registry.Subscribe(c3.ID, "dash-2")

	hub.BroadcastToDashboard("dash-1", EventDataUpdate, DataUpdatePayload{DashboardID: "dash-1"})

	for _, w := range []*fakeWriter{w1, w2} {
		msgs := waitForMessages(t, w, 1)
		var env Envelope
		if err := json.Unmarshal(msgs[0], &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		if env.Type != EventDataUpdate {
			t.Errorf("event type = %q, want %q", env.Type, EventDataUpdate)
		}
		if env.Timestamp.IsZero() {
			t.Error("envelope timestamp not stamped")
		}
	}

	// The dash-2 subscriber must see nothing.
	time.Sleep(50 * time.Millisecond)
	if n := len(w3.messages()); n != 0 {
		t.Errorf("non-subscriber received %d messages", n)
	}

	stats := hub.Stats()
	if stats.Delivered != 2 || stats.Dropped != 0 {
		t.Errorf("stats = %+v, want 2 delivered, 0 dropped", stats)
	}
}

func TestBroadcastGlobalReachesUnsubscribed(t *testing.T) {
	registry := newTestRegistry()
	hub := NewHub(registry, zap.NewNop())

	w1, w2 := &fakeWriter{}, &fakeWriter{}
	c1 := registry.Register(w1)
	registry.Register(w2)
	registry.Subscribe(c1.ID, "dash-1")

	hub.BroadcastGlobal(EventDashboardCreated, DashboardCreatedPayload{DashboardID: "dash-9", Name: "new"})

	waitForMessages(t, w1, 1)
	waitForMessages(t, w2, 1)
}

func TestBroadcastSkipsClosedConnections(t *testing.T) {
	registry := newTestRegistry()
	hub := NewHub(registry, zap.NewNop())

	wOpen, wClosed := &fakeWriter{}, &fakeWriter{}
	open := registry.Register(wOpen)
	closed := registry.Register(wClosed)
	registry.Subscribe(open.ID, "dash-1")
	registry.Subscribe(closed.ID, "dash-1")

	// Close the handle but leave it registered, as happens when a socket
	// drops mid-broadcast. The failed target must not abort the batch.
	closed.Close()

	hub.BroadcastToDashboard("dash-1", EventDataUpdate, DataUpdatePayload{DashboardID: "dash-1"})

	waitForMessages(t, wOpen, 1)

	stats := hub.Stats()
	if stats.Delivered != 1 {
		t.Errorf("delivered = %d, want 1", stats.Delivered)
	}
	if stats.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", stats.Dropped)
	}
}

func TestBroadcastPerDashboardOrdering(t *testing.T) {
	registry := newTestRegistry()
	hub := NewHub(registry, zap.NewNop())

	w := &fakeWriter{}
	conn := registry.Register(w)
	registry.Subscribe(conn.ID, "dash-1")

	hub.BroadcastToDashboard("dash-1", EventWidgetUpdate, nil)
	hub.BroadcastToDashboard("dash-1", EventWidgetDeleted, nil)
	hub.BroadcastToDashboard("dash-1", EventDataUpdate, nil)

	msgs := waitForMessages(t, w, 3)
	want := []string{EventWidgetUpdate, EventWidgetDeleted, EventDataUpdate}
	for i, raw := range msgs {
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad envelope %d: %v", i, err)
		}
		if env.Type != want[i] {
			t.Errorf("message %d type = %q, want %q", i, env.Type, want[i])
		}
	}
}

func TestBroadcastNoSubscribersIsNoop(t *testing.T) {
	registry := newTestRegistry()
	hub := NewHub(registry, zap.NewNop())

	hub.BroadcastToDashboard("dash-1", EventDataUpdate, nil)

	stats := hub.Stats()
	if stats.Delivered != 0 || stats.Dropped != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}
