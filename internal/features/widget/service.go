package widget

import (
	"context"

	"go-opsboard/internal/apperrors"
	"go-opsboard/internal/features/dashboard"
	"go-opsboard/internal/features/realtime"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventPublisher is the slice of the broadcast hub this service needs.
type EventPublisher interface {
	BroadcastToDashboard(dashboardID string, event string, payload any)
}

type WidgetService interface {
	CreateWidget(ctx context.Context, dashboardID string, widget *Widget, userID primitive.ObjectID) error
	UpdateWidget(ctx context.Context, id string, patch *Patch, expectedVersion int64, userID primitive.ObjectID) (*Widget, error)
	DeleteWidget(ctx context.Context, id string, userID primitive.ObjectID) error
	ListWidgets(ctx context.Context, dashboardID string, userID primitive.ObjectID, activeVisibleOnly bool) ([]Widget, error)
}

type WidgetServiceImpl struct {
	WidgetRepo WidgetRepository
	Dashboards dashboard.DashboardRepository
	Events     EventPublisher
}

func NewWidgetService(widgetRepo WidgetRepository, dashboards dashboard.DashboardRepository, events EventPublisher) WidgetService {
	return &WidgetServiceImpl{
		WidgetRepo: widgetRepo,
		Dashboards: dashboards,
		Events:     events,
	}
}

func (s *WidgetServiceImpl) CreateWidget(ctx context.Context, dashboardID string, widget *Widget, userID primitive.ObjectID) error {
	dash, err := s.ownedDashboard(ctx, dashboardID, userID)
	if err != nil {
		return err
	}

	widget.DashboardID = dash.ID
	if widget.RefreshInterval == 0 {
		// Inherit the dashboard cadence unless the widget overrides it.
		widget.RefreshInterval = dash.RefreshInterval
	}
	if err := widget.Validate(); err != nil {
		return err
	}

	if err := s.WidgetRepo.Create(ctx, widget); err != nil {
		return err
	}

	s.Events.BroadcastToDashboard(dashboardID, realtime.EventWidgetUpdate, widget)
	return nil
}

func (s *WidgetServiceImpl) UpdateWidget(ctx context.Context, id string, patch *Patch, expectedVersion int64, userID primitive.ObjectID) (*Widget, error) {
	oid, err := parseWidgetID(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.WidgetRepo.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedDashboard(ctx, existing.DashboardID.Hex(), userID); err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.DataSource != nil {
		set["data_source"] = *patch.DataSource
	}
	if patch.Config != nil {
		set["config"] = patch.Config
	}
	if patch.Position != nil {
		set["position"] = *patch.Position
	}
	if patch.Size != nil {
		set["size"] = *patch.Size
	}
	if patch.RefreshInterval != nil {
		set["refresh_interval"] = *patch.RefreshInterval
	}
	if patch.IsVisible != nil {
		set["is_visible"] = *patch.IsVisible
	}

	updated, err := s.WidgetRepo.ApplyPatch(ctx, oid, expectedVersion, set)
	if err != nil {
		return nil, err
	}

	s.Events.BroadcastToDashboard(updated.DashboardID.Hex(), realtime.EventWidgetUpdate, updated)
	return updated, nil
}

func (s *WidgetServiceImpl) DeleteWidget(ctx context.Context, id string, userID primitive.ObjectID) error {
	oid, err := parseWidgetID(id)
	if err != nil {
		return err
	}

	existing, err := s.WidgetRepo.Get(ctx, oid)
	if err != nil {
		return err
	}
	if _, err := s.ownedDashboard(ctx, existing.DashboardID.Hex(), userID); err != nil {
		return err
	}

	if err := s.WidgetRepo.Deactivate(ctx, oid); err != nil {
		return err
	}

	s.Events.BroadcastToDashboard(existing.DashboardID.Hex(), realtime.EventWidgetDeleted, realtime.WidgetDeletedPayload{
		WidgetID:    id,
		DashboardID: existing.DashboardID.Hex(),
	})
	return nil
}

func (s *WidgetServiceImpl) ListWidgets(ctx context.Context, dashboardID string, userID primitive.ObjectID, activeVisibleOnly bool) ([]Widget, error) {
	dash, err := s.viewableDashboard(ctx, dashboardID, userID)
	if err != nil {
		return nil, err
	}
	return s.WidgetRepo.ListByDashboard(ctx, dash.ID, activeVisibleOnly)
}

// ownedDashboard resolves the dashboard and requires the requester to own it.
func (s *WidgetServiceImpl) ownedDashboard(ctx context.Context, dashboardID string, userID primitive.ObjectID) (*dashboard.Dashboard, error) {
	oid, err := primitive.ObjectIDFromHex(dashboardID)
	if err != nil {
		return nil, apperrors.Validationf("invalid dashboard id %q", dashboardID)
	}
	dash, err := s.Dashboards.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if dash.OwnerID != userID {
		return nil, apperrors.ErrAccessDenied
	}
	return dash, nil
}

// viewableDashboard applies the same read rule as the dashboard service:
// owner always, otherwise public and active.
func (s *WidgetServiceImpl) viewableDashboard(ctx context.Context, dashboardID string, userID primitive.ObjectID) (*dashboard.Dashboard, error) {
	oid, err := primitive.ObjectIDFromHex(dashboardID)
	if err != nil {
		return nil, apperrors.Validationf("invalid dashboard id %q", dashboardID)
	}
	dash, err := s.Dashboards.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if dash.OwnerID == userID {
		return dash, nil
	}
	if !dash.IsActive {
		return nil, apperrors.ErrNotFound
	}
	if !dash.IsPublic {
		return nil, apperrors.ErrAccessDenied
	}
	return dash, nil
}

func parseWidgetID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validationf("invalid widget id %q", id)
	}
	return oid, nil
}
