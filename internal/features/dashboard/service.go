package dashboard

import (
	"context"
	"time"

	"go-opsboard/internal/apperrors"
	common_models "go-opsboard/internal/common/models"
	"go-opsboard/internal/features/realtime"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventPublisher is the slice of the broadcast hub this service needs. Every
// successful mutation is followed by exactly one publish call.
type EventPublisher interface {
	BroadcastGlobal(event string, payload any)
	BroadcastToDashboard(dashboardID string, event string, payload any)
}

// WidgetCascader deactivates all widgets under a dashboard when the dashboard
// itself is logically deleted. Implemented by the widget feature; wired as an
// adapter in main to avoid a package cycle.
type WidgetCascader interface {
	DeactivateByDashboard(ctx context.Context, dashboardID primitive.ObjectID) error
}

type DashboardService interface {
	CreateDashboard(ctx context.Context, dashboard *Dashboard, ownerID primitive.ObjectID) error
	// GetDashboard returns the dashboard when the requester is the owner or
	// the dashboard is public. A successful read increments the view counter
	// and stamps last_accessed_at, owner included.
	GetDashboard(ctx context.Context, id string, userID primitive.ObjectID) (*Dashboard, error)
	UpdateDashboard(ctx context.Context, id string, patch *Patch, expectedVersion int64, userID primitive.ObjectID) (*Dashboard, error)
	DeleteDashboard(ctx context.Context, id string, userID primitive.ObjectID) error
	ListOwned(ctx context.Context, userID primitive.ObjectID, activeOnly bool, page common_models.PageRequest) ([]Dashboard, int64, error)
	ListPublic(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error)
	Search(ctx context.Context, term string, page common_models.PageRequest) ([]Dashboard, int64, error)
	ListPopular(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error)
	// CanView runs the same access rule as GetDashboard without the
	// view-count side effect. Used at subscribe time.
	CanView(ctx context.Context, id string, userID primitive.ObjectID) error
	ExportOwned(ctx context.Context, userID primitive.ObjectID) ([]byte, string, error)
}

type DashboardServiceImpl struct {
	DashboardRepo DashboardRepository
	Widgets       WidgetCascader
	Events        EventPublisher
}

func NewDashboardService(dashboardRepo DashboardRepository, widgets WidgetCascader, events EventPublisher) DashboardService {
	return &DashboardServiceImpl{
		DashboardRepo: dashboardRepo,
		Widgets:       widgets,
		Events:        events,
	}
}

func (s *DashboardServiceImpl) CreateDashboard(ctx context.Context, dashboard *Dashboard, ownerID primitive.ObjectID) error {
	dashboard.OwnerID = ownerID

	if err := dashboard.Validate(); err != nil {
		return err
	}

	if err := s.DashboardRepo.Create(ctx, dashboard); err != nil {
		return err
	}

	s.Events.BroadcastGlobal(realtime.EventDashboardCreated, realtime.DashboardCreatedPayload{
		DashboardID: dashboard.ID.Hex(),
		Name:        dashboard.Name,
	})
	return nil
}

func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, id string, userID primitive.ObjectID) (*Dashboard, error) {
	dashboard, err := s.authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.DashboardRepo.Touch(ctx, dashboard.ID); err != nil {
		return nil, err
	}
	dashboard.ViewCount++
	dashboard.LastAccessedAt = time.Now()

	return dashboard, nil
}

func (s *DashboardServiceImpl) UpdateDashboard(ctx context.Context, id string, patch *Patch, expectedVersion int64, userID primitive.ObjectID) (*Dashboard, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.DashboardRepo.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != userID {
		return nil, apperrors.ErrAccessDenied
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.IsPublic != nil {
		set["is_public"] = *patch.IsPublic
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}
	if patch.Theme != nil {
		set["theme"] = *patch.Theme
	}
	if patch.RefreshInterval != nil {
		set["refresh_interval"] = *patch.RefreshInterval
	}

	updated, err := s.DashboardRepo.ApplyPatch(ctx, oid, expectedVersion, set)
	if err != nil {
		return nil, err
	}

	s.Events.BroadcastToDashboard(id, realtime.EventDashboardUpdate, realtime.DashboardUpdatePayload{
		DashboardID:   id,
		ChangedFields: patch.ChangedFields(),
	})
	return updated, nil
}

func (s *DashboardServiceImpl) DeleteDashboard(ctx context.Context, id string, userID primitive.ObjectID) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	existing, err := s.DashboardRepo.Get(ctx, oid)
	if err != nil {
		return err
	}
	if existing.OwnerID != userID {
		return apperrors.ErrAccessDenied
	}

	if err := s.DashboardRepo.Deactivate(ctx, oid); err != nil {
		return err
	}
	if err := s.Widgets.DeactivateByDashboard(ctx, oid); err != nil {
		return err
	}

	s.Events.BroadcastToDashboard(id, realtime.EventDashboardDeleted, realtime.DashboardDeletedPayload{
		DashboardID: id,
	})
	return nil
}

func (s *DashboardServiceImpl) ListOwned(ctx context.Context, userID primitive.ObjectID, activeOnly bool, page common_models.PageRequest) ([]Dashboard, int64, error) {
	return s.DashboardRepo.ListOwned(ctx, userID, activeOnly, page)
}

func (s *DashboardServiceImpl) ListPublic(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error) {
	return s.DashboardRepo.ListPublic(ctx, page)
}

func (s *DashboardServiceImpl) Search(ctx context.Context, term string, page common_models.PageRequest) ([]Dashboard, int64, error) {
	return s.DashboardRepo.Search(ctx, term, page)
}

func (s *DashboardServiceImpl) ListPopular(ctx context.Context, page common_models.PageRequest) ([]Dashboard, int64, error) {
	return s.DashboardRepo.ListPopular(ctx, page)
}

func (s *DashboardServiceImpl) CanView(ctx context.Context, id string, userID primitive.ObjectID) error {
	_, err := s.authorize(ctx, id, userID)
	return err
}

// authorize fetches the dashboard and applies the read access rule: owners
// always see their dashboards; everyone else needs it public and active.
// Private dashboards surface ErrAccessDenied rather than ErrNotFound, so
// existence is not hidden.
func (s *DashboardServiceImpl) authorize(ctx context.Context, id string, userID primitive.ObjectID) (*Dashboard, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	dashboard, err := s.DashboardRepo.Get(ctx, oid)
	if err != nil {
		return nil, err
	}

	if dashboard.OwnerID == userID {
		return dashboard, nil
	}
	if !dashboard.IsActive {
		return nil, apperrors.ErrNotFound
	}
	if !dashboard.IsPublic {
		return nil, apperrors.ErrAccessDenied
	}
	return dashboard, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validationf("invalid dashboard id %q", id)
	}
	return oid, nil
}
