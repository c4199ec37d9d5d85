package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"go-opsboard/internal/config"
	"go-opsboard/internal/features/realtime"
	"go-opsboard/internal/features/widget"
)

// RefreshService periodically walks active widgets, refetches the ones
// whose refresh interval has elapsed, and pushes the new data to
// dashboard subscribers.
type RefreshService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	// SweepOnce runs a single refresh pass. It is what the scheduler
	// invokes on every tick.
	SweepOnce(ctx context.Context) (int, error)
}

type EventPublisher interface {
	BroadcastToDashboard(dashboardID string, event string, payload any)
}

type RefreshServiceImpl struct {
	WidgetRepo widget.WidgetRepository
	Source     DataSource
	Events     EventPublisher
	Config     *config.Config
	Logger     *zap.Logger

	scheduler *cron.Cron
}

func NewRefreshService(
	widgetRepo widget.WidgetRepository,
	source DataSource,
	events EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) RefreshService {
	return &RefreshServiceImpl{
		WidgetRepo: widgetRepo,
		Source:     source,
		Events:     events,
		Config:     cfg,
		Logger:     logger,
	}
}

func (s *RefreshServiceImpl) InitializeScheduler(ctx context.Context) error {
	if _, err := cron.ParseStandard(s.Config.RefreshSpec); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.Config.RefreshSpec, err)
	}

	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(s.Config.RefreshSpec, func() {
		refreshed, err := s.SweepOnce(context.Background())
		if err != nil {
			s.Logger.Error("refresh sweep failed", zap.Error(err))
			return
		}
		if refreshed > 0 {
			s.Logger.Info("refresh sweep completed", zap.Int("refreshed", refreshed))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh sweep: %w", err)
	}

	s.scheduler.Start()
	s.Logger.Info("refresh scheduler started", zap.String("schedule", s.Config.RefreshSpec))
	return nil
}

func (s *RefreshServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

func (s *RefreshServiceImpl) SweepOnce(ctx context.Context) (int, error) {
	widgets, err := s.WidgetRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	refreshed := 0
	for i := range widgets {
		w := &widgets[i]
		if !widget.NeedsRefresh(w, now) {
			continue
		}

		data, err := s.Source.Fetch(ctx, w.DataSource, w.Config)
		if err != nil {
			// One broken source must not stall the rest of the sweep.
			s.Logger.Warn("widget data fetch failed",
				zap.String("widget_id", w.ID.Hex()),
				zap.String("data_source", w.DataSource),
				zap.Error(err))
			continue
		}

		if err := s.WidgetRepo.MarkRefreshed(ctx, w.ID, now); err != nil {
			s.Logger.Warn("failed to stamp widget refresh",
				zap.String("widget_id", w.ID.Hex()),
				zap.Error(err))
			continue
		}

		s.Events.BroadcastToDashboard(w.DashboardID.Hex(), realtime.EventDataUpdate, realtime.DataUpdatePayload{
			DashboardID: w.DashboardID.Hex(),
			WidgetID:    w.ID.Hex(),
			Data:        data,
		})
		refreshed++
	}

	return refreshed, nil
}
