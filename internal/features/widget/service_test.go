package widget

import (
	"context"
	"testing"
	"time"

	"go-opsboard/internal/apperrors"
	common_models "go-opsboard/internal/common/models"
	"go-opsboard/internal/features/dashboard"
	"go-opsboard/internal/features/realtime"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockWidgetRepo struct {
	Stored map[primitive.ObjectID]*Widget

	DeactivatedID primitive.ObjectID
}

func NewMockWidgetRepo(widgets ...*Widget) *MockWidgetRepo {
	m := &MockWidgetRepo{Stored: map[primitive.ObjectID]*Widget{}}
	for _, w := range widgets {
		m.Stored[w.ID] = w
	}
	return m
}

func (m *MockWidgetRepo) Create(ctx context.Context, w *Widget) error {
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	w.Version = 1
	w.IsActive = true
	w.IsVisible = true
	m.Stored[w.ID] = w
	return nil
}

func (m *MockWidgetRepo) Get(ctx context.Context, id primitive.ObjectID) (*Widget, error) {
	w, ok := m.Stored[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (m *MockWidgetRepo) ApplyPatch(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (*Widget, error) {
	w, ok := m.Stored[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if w.Version != expectedVersion {
		return nil, apperrors.ErrVersionConflict
	}
	if title, ok := set["title"].(string); ok {
		w.Title = title
	}
	if pos, ok := set["position"].(Position); ok {
		w.Position = pos
	}
	w.Version++
	copied := *w
	return &copied, nil
}

func (m *MockWidgetRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	w, ok := m.Stored[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.DeactivatedID = id
	w.IsActive = false
	return nil
}

func (m *MockWidgetRepo) DeactivateByDashboard(ctx context.Context, dashboardID primitive.ObjectID) error {
	for _, w := range m.Stored {
		if w.DashboardID == dashboardID {
			w.IsActive = false
		}
	}
	return nil
}

func (m *MockWidgetRepo) ListByDashboard(ctx context.Context, dashboardID primitive.ObjectID, activeVisibleOnly bool) ([]Widget, error) {
	var out []Widget
	for _, w := range m.Stored {
		if w.DashboardID != dashboardID {
			continue
		}
		if activeVisibleOnly && (!w.IsActive || !w.IsVisible) {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (m *MockWidgetRepo) ListActive(ctx context.Context) ([]Widget, error) {
	var out []Widget
	for _, w := range m.Stored {
		if w.IsActive {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (m *MockWidgetRepo) MarkRefreshed(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	w, ok := m.Stored[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	w.LastRefreshedAt = &at
	return nil
}

func (m *MockWidgetRepo) EnsureIndexes(ctx context.Context) error { return nil }

// StubDashboardRepo serves fixed dashboards for the ownership checks.
type StubDashboardRepo struct {
	Stored map[primitive.ObjectID]*dashboard.Dashboard
}

func (m *StubDashboardRepo) Create(ctx context.Context, d *dashboard.Dashboard) error { return nil }

func (m *StubDashboardRepo) Get(ctx context.Context, id primitive.ObjectID) (*dashboard.Dashboard, error) {
	d, ok := m.Stored[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *StubDashboardRepo) Touch(ctx context.Context, id primitive.ObjectID) error { return nil }

func (m *StubDashboardRepo) ApplyPatch(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (*dashboard.Dashboard, error) {
	return nil, apperrors.ErrNotFound
}

func (m *StubDashboardRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error { return nil }

func (m *StubDashboardRepo) ListOwned(ctx context.Context, ownerID primitive.ObjectID, activeOnly bool, page common_models.PageRequest) ([]dashboard.Dashboard, int64, error) {
	return nil, 0, nil
}

func (m *StubDashboardRepo) ListPublic(ctx context.Context, page common_models.PageRequest) ([]dashboard.Dashboard, int64, error) {
	return nil, 0, nil
}

func (m *StubDashboardRepo) Search(ctx context.Context, term string, page common_models.PageRequest) ([]dashboard.Dashboard, int64, error) {
	return nil, 0, nil
}

func (m *StubDashboardRepo) ListPopular(ctx context.Context, page common_models.PageRequest) ([]dashboard.Dashboard, int64, error) {
	return nil, 0, nil
}

func (m *StubDashboardRepo) EnsureIndexes(ctx context.Context) error { return nil }

type CapturedEvent struct {
	DashboardID string
	Event       string
	Payload     any
}

type MockPublisher struct {
	Events []CapturedEvent
}

func (m *MockPublisher) BroadcastToDashboard(dashboardID string, event string, payload any) {
	m.Events = append(m.Events, CapturedEvent{DashboardID: dashboardID, Event: event, Payload: payload})
}

func fixtureSetup(owner primitive.ObjectID, public bool) (*WidgetServiceImpl, *MockWidgetRepo, *MockPublisher, *dashboard.Dashboard) {
	dash := &dashboard.Dashboard{
		ID:              primitive.NewObjectID(),
		Name:            "ops overview",
		OwnerID:         owner,
		IsPublic:        public,
		IsActive:        true,
		RefreshInterval: 60,
		Version:         1,
	}
	widgetRepo := NewMockWidgetRepo()
	publisher := &MockPublisher{}
	service := &WidgetServiceImpl{
		WidgetRepo: widgetRepo,
		Dashboards: &StubDashboardRepo{Stored: map[primitive.ObjectID]*dashboard.Dashboard{dash.ID: dash}},
		Events:     publisher,
	}
	return service, widgetRepo, publisher, dash
}

func TestCreateWidgetInheritsDashboardInterval(t *testing.T) {
	owner := primitive.NewObjectID()
	service, _, publisher, dash := fixtureSetup(owner, false)

	w := validWidget()
	w.RefreshInterval = 0
	if err := service.CreateWidget(context.Background(), dash.ID.Hex(), w, owner); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if w.RefreshInterval != dash.RefreshInterval {
		t.Errorf("interval = %d, want inherited %d", w.RefreshInterval, dash.RefreshInterval)
	}
	if w.DashboardID != dash.ID {
		t.Errorf("dashboard id not stamped")
	}
	if len(publisher.Events) != 1 || publisher.Events[0].Event != realtime.EventWidgetUpdate {
		t.Fatalf("expected one WIDGET_UPDATE broadcast, got %+v", publisher.Events)
	}
}

func TestCreateWidgetRequiresOwnership(t *testing.T) {
	owner := primitive.NewObjectID()
	service, repo, _, dash := fixtureSetup(owner, true)

	err := service.CreateWidget(context.Background(), dash.ID.Hex(), validWidget(), primitive.NewObjectID())
	if !apperrors.IsAccessDenied(err) {
		t.Fatalf("expected access denied for non-owner, got %v", err)
	}
	if len(repo.Stored) != 0 {
		t.Errorf("denied create must not persist")
	}
}

func TestUpdateWidgetVersionConflict(t *testing.T) {
	owner := primitive.NewObjectID()
	service, repo, publisher, dash := fixtureSetup(owner, false)

	w := validWidget()
	if err := service.CreateWidget(context.Background(), dash.ID.Hex(), w, owner); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	publisher.Events = nil

	title1 := "latency p99"
	if _, err := service.UpdateWidget(context.Background(), w.ID.Hex(), &Patch{Title: &title1}, 1, owner); err != nil {
		t.Fatalf("first update should win: %v", err)
	}

	title2 := "latency p50"
	_, err := service.UpdateWidget(context.Background(), w.ID.Hex(), &Patch{Title: &title2}, 1, owner)
	if !apperrors.IsVersionConflict(err) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	if repo.Stored[w.ID].Title != "latency p99" {
		t.Errorf("losing write landed: %q", repo.Stored[w.ID].Title)
	}
	if len(publisher.Events) != 1 {
		t.Fatalf("only the winning update broadcasts, got %d", len(publisher.Events))
	}
}

func TestDeleteWidgetBroadcastsRemoval(t *testing.T) {
	owner := primitive.NewObjectID()
	service, repo, publisher, dash := fixtureSetup(owner, false)

	w := validWidget()
	if err := service.CreateWidget(context.Background(), dash.ID.Hex(), w, owner); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	publisher.Events = nil

	if err := service.DeleteWidget(context.Background(), w.ID.Hex(), owner); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if repo.DeactivatedID != w.ID {
		t.Errorf("widget not deactivated")
	}

	if len(publisher.Events) != 1 || publisher.Events[0].Event != realtime.EventWidgetDeleted {
		t.Fatalf("expected one WIDGET_DELETED broadcast, got %+v", publisher.Events)
	}
	payload, ok := publisher.Events[0].Payload.(realtime.WidgetDeletedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", publisher.Events[0].Payload)
	}
	if payload.WidgetID != w.ID.Hex() || payload.DashboardID != dash.ID.Hex() {
		t.Errorf("payload = %+v", payload)
	}
}

func TestListWidgetsViewRule(t *testing.T) {
	owner := primitive.NewObjectID()
	service, _, _, dash := fixtureSetup(owner, false)

	w := validWidget()
	if err := service.CreateWidget(context.Background(), dash.ID.Hex(), w, owner); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := service.ListWidgets(context.Background(), dash.ID.Hex(), primitive.NewObjectID(), true)
	if !apperrors.IsAccessDenied(err) {
		t.Fatalf("expected access denied on private dashboard, got %v", err)
	}

	widgets, err := service.ListWidgets(context.Background(), dash.ID.Hex(), owner, true)
	if err != nil {
		t.Fatalf("owner list failed: %v", err)
	}
	if len(widgets) != 1 {
		t.Errorf("got %d widgets, want 1", len(widgets))
	}
}
