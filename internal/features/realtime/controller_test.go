package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-opsboard/internal/apperrors"
)

// stubAccess answers CanView with a fixed error per dashboard id.
type stubAccess struct {
	denials map[string]error
}

func (s *stubAccess) CanView(ctx context.Context, dashboardID string, userID primitive.ObjectID) error {
	return s.denials[dashboardID]
}

func newTestController(denials map[string]error) (*RealtimeController, *Registry) {
	registry := newTestRegistry()
	ctrl := NewRealtimeController(registry, &stubAccess{denials: denials}, zap.NewNop())
	return ctrl, registry
}

func dispatch(t *testing.T, ctrl *RealtimeController, conn *Connection, msg ClientMessage) {
	t.Helper()
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal command: %v", err)
	}
	ctrl.handleMessage(conn, primitive.NewObjectID(), raw)
}

func lastEnvelope(t *testing.T, w *fakeWriter, n int) Envelope {
	t.Helper()
	msgs := waitForMessages(t, w, n)
	var env Envelope
	if err := json.Unmarshal(msgs[n-1], &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	return env
}

func TestPingPong(t *testing.T) {
	ctrl, registry := newTestController(nil)
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	dispatch(t, ctrl, conn, ClientMessage{Type: MsgPing})

	env := lastEnvelope(t, writer, 1)
	if env.Type != MsgPong {
		t.Errorf("reply type = %q, want %q", env.Type, MsgPong)
	}
}

func TestSubscribeConfirmed(t *testing.T) {
	ctrl, registry := newTestController(nil)
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	dispatch(t, ctrl, conn, ClientMessage{Type: MsgSubscribeDashboard, DashboardID: "dash-1"})

	env := lastEnvelope(t, writer, 1)
	if env.Type != MsgSubscriptionConfirmed {
		t.Fatalf("reply type = %q, want %q", env.Type, MsgSubscriptionConfirmed)
	}
	if registry.CountSubscribers("dash-1") != 1 {
		t.Error("subscription not recorded")
	}
	if conn.State() != StateSubscribed {
		t.Errorf("state = %v, want subscribed", conn.State())
	}
}

func TestSubscribeDeniedForPrivateDashboard(t *testing.T) {
	ctrl, registry := newTestController(map[string]error{
		"dash-private": apperrors.ErrAccessDenied,
	})
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	dispatch(t, ctrl, conn, ClientMessage{Type: MsgSubscribeDashboard, DashboardID: "dash-private"})

	env := lastEnvelope(t, writer, 1)
	if env.Type != MsgError || env.ErrorCode != CodeSubscriptionDenied {
		t.Fatalf("reply = %+v, want ERROR/%s", env, CodeSubscriptionDenied)
	}
	if registry.CountSubscribers("dash-private") != 0 {
		t.Error("denied subscription must not be recorded")
	}
	if conn.State() != StateConnected {
		t.Errorf("state = %v, want connected", conn.State())
	}
}

func TestSubscribeMissingDashboardReadsAsDenied(t *testing.T) {
	ctrl, registry := newTestController(map[string]error{
		"dash-gone": apperrors.ErrNotFound,
	})
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	dispatch(t, ctrl, conn, ClientMessage{Type: MsgSubscribeDashboard, DashboardID: "dash-gone"})

	env := lastEnvelope(t, writer, 1)
	if env.ErrorCode != CodeSubscriptionDenied {
		t.Errorf("error code = %q, want %q", env.ErrorCode, CodeSubscriptionDenied)
	}
}

func TestSubscribeRejectsBadIDs(t *testing.T) {
	ctrl, registry := newTestController(map[string]error{
		"not-hex": apperrors.Validationf("invalid dashboard id"),
	})
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	// Empty id is rejected before the access check.
	dispatch(t, ctrl, conn, ClientMessage{Type: MsgSubscribeDashboard})
	env := lastEnvelope(t, writer, 1)
	if env.ErrorCode != CodeInvalidDashboardID {
		t.Errorf("empty id error code = %q, want %q", env.ErrorCode, CodeInvalidDashboardID)
	}

	dispatch(t, ctrl, conn, ClientMessage{Type: MsgSubscribeDashboard, DashboardID: "not-hex"})
	env = lastEnvelope(t, writer, 2)
	if env.ErrorCode != CodeInvalidDashboardID {
		t.Errorf("malformed id error code = %q, want %q", env.ErrorCode, CodeInvalidDashboardID)
	}
}

func TestUnsubscribeReturnsToConnected(t *testing.T) {
	ctrl, registry := newTestController(nil)
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	dispatch(t, ctrl, conn, ClientMessage{Type: MsgSubscribeDashboard, DashboardID: "dash-1"})
	dispatch(t, ctrl, conn, ClientMessage{Type: MsgUnsubscribeDashboard})

	env := lastEnvelope(t, writer, 2)
	if env.Type != MsgUnsubscriptionConfirmed {
		t.Fatalf("reply type = %q, want %q", env.Type, MsgUnsubscriptionConfirmed)
	}
	if registry.CountSubscribers("dash-1") != 0 {
		t.Error("subscription not dropped")
	}
	if conn.State() != StateConnected {
		t.Errorf("state = %v, want connected", conn.State())
	}
}

func TestUnknownMessageType(t *testing.T) {
	ctrl, registry := newTestController(nil)
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	dispatch(t, ctrl, conn, ClientMessage{Type: "TELEPORT"})

	env := lastEnvelope(t, writer, 1)
	if env.Type != MsgError || env.ErrorCode != CodeUnknownMessageType {
		t.Fatalf("reply = %+v, want ERROR/%s", env, CodeUnknownMessageType)
	}
	if conn.State() != StateConnected {
		t.Error("bad commands must not close the connection")
	}
}

func TestMalformedMessageKeepsConnectionOpen(t *testing.T) {
	ctrl, registry := newTestController(nil)
	writer := &fakeWriter{}
	conn := registry.Register(writer)

	ctrl.handleMessage(conn, primitive.NewObjectID(), []byte("{not-json"))

	env := lastEnvelope(t, writer, 1)
	if env.ErrorCode != CodeMessageHandlingError {
		t.Errorf("error code = %q, want %q", env.ErrorCode, CodeMessageHandlingError)
	}
	if _, ok := registry.Get(conn.ID); !ok {
		t.Error("connection must survive a malformed message")
	}
}
