package widget

import (
	"testing"

	"go-opsboard/internal/apperrors"
)

func validWidget() *Widget {
	return &Widget{
		Title:           "error rate",
		Type:            TypeChart,
		DataSource:      "metrics/errors",
		Position:        Position{X: 0, Y: 0},
		Size:            Size{Width: 4, Height: 2},
		RefreshInterval: 30,
	}
}

func TestWidgetValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Widget)
		wantErr bool
	}{
		{"valid", func(w *Widget) {}, false},
		{"blank title", func(w *Widget) { w.Title = "" }, true},
		{"unknown type", func(w *Widget) { w.Type = "hologram" }, true},
		{"zero width", func(w *Widget) { w.Size.Width = 0 }, true},
		{"negative height", func(w *Widget) { w.Size.Height = -1 }, true},
		{"negative position", func(w *Widget) { w.Position.X = -1 }, true},
		{"zero interval", func(w *Widget) { w.RefreshInterval = 0 }, true},
		{"origin position ok", func(w *Widget) { w.Position = Position{} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWidget()
			tt.mutate(w)
			err := w.Validate()
			if tt.wantErr && !apperrors.IsValidation(err) {
				t.Errorf("want validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPatchValidate(t *testing.T) {
	blank := ""
	badType := WidgetType("hologram")
	zero := 0

	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"empty patch", Patch{}, false},
		{"blank title", Patch{Title: &blank}, true},
		{"bad type", Patch{Type: &badType}, true},
		{"flat size", Patch{Size: &Size{Width: 3, Height: 0}}, true},
		{"negative position", Patch{Position: &Position{X: -2, Y: 1}}, true},
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
