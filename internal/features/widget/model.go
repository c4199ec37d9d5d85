package widget

import (
	"time"

	"go-opsboard/internal/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WidgetType string

const (
	TypeChart   WidgetType = "chart"
	TypeTable   WidgetType = "table"
	TypeMetric  WidgetType = "metric"
	TypeGauge   WidgetType = "gauge"
	TypeHeatmap WidgetType = "heatmap"
	TypeText    WidgetType = "text"
	TypeImage   WidgetType = "image"
	TypeList    WidgetType = "list"
)

var validTypes = map[WidgetType]bool{
	TypeChart:   true,
	TypeTable:   true,
	TypeMetric:  true,
	TypeGauge:   true,
	TypeHeatmap: true,
	TypeText:    true,
	TypeImage:   true,
	TypeList:    true,
}

// Valid reports whether t is one of the closed widget type enumeration.
func (t WidgetType) Valid() bool {
	return validTypes[t]
}

type Position struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

type Size struct {
	Width  int `json:"width" bson:"width"`
	Height int `json:"height" bson:"height"`
}

// Widget is a positioned, sized display unit on one dashboard, bound to an
// external data source. Config is an opaque blob; its schema belongs to the
// data-source collaborator, not this service.
type Widget struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	DashboardID     primitive.ObjectID     `json:"dashboard_id" bson:"dashboard_id"`
	Title           string                 `json:"title" bson:"title"`
	Description     string                 `json:"description,omitempty" bson:"description,omitempty"`
	Type            WidgetType             `json:"type" bson:"type"`
	DataSource      string                 `json:"data_source" bson:"data_source"`
	Config          map[string]interface{} `json:"config,omitempty" bson:"config,omitempty"`
	Position        Position               `json:"position" bson:"position"`
	Size            Size                   `json:"size" bson:"size"`
	RefreshInterval int                    `json:"refresh_interval" bson:"refresh_interval"` // seconds
	IsVisible       bool                   `json:"is_visible" bson:"is_visible"`
	IsActive        bool                   `json:"is_active" bson:"is_active"`
	LastRefreshedAt *time.Time             `json:"last_refreshed_at,omitempty" bson:"last_refreshed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" bson:"updated_at"`
	Version         int64                  `json:"version" bson:"version"`
}

// Validate checks the widget invariants.
func (w *Widget) Validate() error {
	if w.Title == "" {
		return apperrors.Validationf("widget title must not be blank")
	}
	if !w.Type.Valid() {
		return apperrors.Validationf("invalid widget type %q", w.Type)
	}
	if w.Size.Width <= 0 || w.Size.Height <= 0 {
		return apperrors.Validationf("widget size must be positive, got %dx%d", w.Size.Width, w.Size.Height)
	}
	if w.Position.X < 0 || w.Position.Y < 0 {
		return apperrors.Validationf("widget position must be non-negative, got (%d,%d)", w.Position.X, w.Position.Y)
	}
	if w.RefreshInterval <= 0 {
		return apperrors.Validationf("refresh interval must be positive, got %d", w.RefreshInterval)
	}
	return nil
}

// Patch carries the editable fields for reposition/resize/reconfigure.
type Patch struct {
	Title           *string                `json:"title,omitempty"`
	Description     *string                `json:"description,omitempty"`
	Type            *WidgetType            `json:"type,omitempty"`
	DataSource      *string                `json:"data_source,omitempty"`
	Config          map[string]interface{} `json:"config,omitempty"`
	Position        *Position              `json:"position,omitempty"`
	Size            *Size                  `json:"size,omitempty"`
	RefreshInterval *int                   `json:"refresh_interval,omitempty"`
	IsVisible       *bool                  `json:"is_visible,omitempty"`
}

func (p *Patch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return apperrors.Validationf("widget title must not be blank")
	}
	if p.Type != nil && !p.Type.Valid() {
		return apperrors.Validationf("invalid widget type %q", *p.Type)
	}
	if p.Size != nil && (p.Size.Width <= 0 || p.Size.Height <= 0) {
		return apperrors.Validationf("widget size must be positive, got %dx%d", p.Size.Width, p.Size.Height)
	}
	if p.Position != nil && (p.Position.X < 0 || p.Position.Y < 0) {
		return apperrors.Validationf("widget position must be non-negative, got (%d,%d)", p.Position.X, p.Position.Y)
	}
	if p.RefreshInterval != nil && *p.RefreshInterval <= 0 {
		return apperrors.Validationf("refresh interval must be positive, got %d", *p.RefreshInterval)
	}
	return nil
}
