package usecases_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
)

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name    string
		color   string
		wantErr string
	}{
		{"hex", "#FF0000", ""},
		{"short hex", "#f00", ""},
		{"rgb", "rgb(255,0,0)", ""},
		{"keyword", "purple", ""},
		{"missing color", "", "LineColor failed required"},
		{"not a color", "#zzzzzz", "LineColor failed linecolor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := usecases.ValidateRow(domain.RouteRow{DepartureCity: "Paris", ArrivalCity: "Lyon", LineColor: tt.color})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrInvalidRow) {
				t.Fatalf("expected ErrInvalidRow, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRoute_RequiresColor(t *testing.T) {
	rt := domain.Route{
		DepartureCity: "Paris",
		ArrivalCity:   "Lyon",
		Departure:     domain.GeoPoint{Lat: 48.8566, Lon: 2.3522},
		Arrival:       domain.GeoPoint{Lat: 45.764, Lon: 4.8357},
	}
	if err := usecases.ValidateRoute(rt); !errors.Is(err, domain.ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow for a route without color, got %v", err)
	}
	rt.LineColor = "#00ff00"
	if err := usecases.ValidateRoute(rt); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
