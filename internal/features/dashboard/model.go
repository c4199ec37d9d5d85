package dashboard

import (
	"time"

	"go-opsboard/internal/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dashboard is an owned, named collection of widgets with visibility and
// refresh-cadence settings. Version backs optimistic concurrency: every
// mutating write bumps it, and writes carrying a stale expected version are
// rejected with ErrVersionConflict.
type Dashboard struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	OwnerID         primitive.ObjectID `json:"owner_id" bson:"owner_id"`
	IsPublic        bool               `json:"is_public" bson:"is_public"`
	IsActive        bool               `json:"is_active" bson:"is_active"`
	Category        string             `json:"category,omitempty" bson:"category,omitempty"`
	Tags            []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Theme           string             `json:"theme,omitempty" bson:"theme,omitempty"`
	RefreshInterval int                `json:"refresh_interval" bson:"refresh_interval"` // seconds
	ViewCount       int64              `json:"view_count" bson:"view_count"`
	LastAccessedAt  time.Time          `json:"last_accessed_at,omitempty" bson:"last_accessed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
	Version         int64              `json:"version" bson:"version"`
}

// Validate checks the creation invariants.
func (d *Dashboard) Validate() error {
	if d.Name == "" {
		return apperrors.Validationf("dashboard name must not be blank")
	}
	if d.RefreshInterval <= 0 {
		return apperrors.Validationf("refresh interval must be positive, got %d", d.RefreshInterval)
	}
	return nil
}

// Patch carries the owner-editable fields of a dashboard. Nil pointers leave
// the stored value untouched; Tags replaces the whole set when non-nil.
type Patch struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	IsPublic        *bool    `json:"is_public,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Theme           *string  `json:"theme,omitempty"`
	RefreshInterval *int     `json:"refresh_interval,omitempty"`
}

// Validate rejects patches that would break the dashboard invariants.
func (p *Patch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return apperrors.Validationf("dashboard name must not be blank")
	}
	if p.RefreshInterval != nil && *p.RefreshInterval <= 0 {
		return apperrors.Validationf("refresh interval must be positive, got %d", *p.RefreshInterval)
	}
	return nil
}

// ChangedFields lists the field names this patch touches, for UPDATE events.
func (p *Patch) ChangedFields() []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.IsPublic != nil {
		fields = append(fields, "is_public")
	}
	if p.IsActive != nil {
		fields = append(fields, "is_active")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Tags != nil {
		fields = append(fields, "tags")
	}
	if p.Theme != nil {
		fields = append(fields, "theme")
	}
	if p.RefreshInterval != nil {
		fields = append(fields, "refresh_interval")
	}
	return fields
}
