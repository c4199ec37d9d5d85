package dashboard

import (
	"reflect"
	"testing"

	"go-opsboard/internal/apperrors"
)

func validDashboard() *Dashboard {
	return &Dashboard{
		Name:            "prod overview",
		RefreshInterval: 60,
	}
}

func TestDashboardValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Dashboard)
		wantErr bool
	}{
		{"valid", func(d *Dashboard) {}, false},
		{"blank name", func(d *Dashboard) { d.Name = "" }, true},
		{"zero interval", func(d *Dashboard) { d.RefreshInterval = 0 }, true},
		{"negative interval", func(d *Dashboard) { d.RefreshInterval = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDashboard()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr && !apperrors.IsValidation(err) {
				t.Errorf("want validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDashboardPatchValidate(t *testing.T) {
	blank := ""
	zero := 0

	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"empty patch", Patch{}, false},
		{"blank name", Patch{Name: &blank}, true},
		{"zero interval", Patch{RefreshInterval: &zero}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr && !apperrors.IsValidation(err) {
				t.Errorf("want validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPatchChangedFields(t *testing.T) {
	name := "renamed"
	public := true
	interval := 120

	p := Patch{Name: &name, IsPublic: &public, RefreshInterval: &interval, Tags: []string{"ops"}}
	want := []string{"name", "is_public", "tags", "refresh_interval"}

	if got := p.ChangedFields(); !reflect.DeepEqual(got, want) {
		t.Errorf("ChangedFields() = %v, want %v", got, want)
	}

	if got := (&Patch{}).ChangedFields(); len(got) != 0 {
		t.Errorf("empty patch should report no fields, got %v", got)
	}
}
