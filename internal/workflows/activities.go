package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
	"github.com/Seikonolff/map-to-seventy/internal/core/usecases"
)

// Activity names, as registered from PlotActivities' methods.
const (
	ActivityGeocodeRows    = "GeocodeRows"
	ActivityRenderAndStore = "RenderAndStore"
)

// errTypeInvalidInput marks failures that retrying cannot fix.
const errTypeInvalidInput = "invalid_input"

// GeocodeResult is the output of GeocodeRows.
type GeocodeResult struct {
	Routes  []domain.Route      `json:"routes"`
	Dropped []domain.DroppedRow `json:"dropped"`
}

// RenderInput is the input of RenderAndStore.
type RenderInput struct {
	MapID     string              `json:"map_id"`
	TileStyle string              `json:"tile_style"`
	Routes    []domain.Route      `json:"routes"`
	Dropped   []domain.DroppedRow `json:"dropped"`
}

// PlotOutcome summarizes a finished plot workflow.
type PlotOutcome struct {
	MapID       string `json:"map_id"`
	TileStyle   string `json:"tile_style"`
	RouteCount  int    `json:"route_count"`
	DroppedRows int    `json:"dropped_rows"`
}

// PlotActivities holds the activity implementations for the plot workflow.
type PlotActivities struct {
	Plots *usecases.PlotService
}

// GeocodeRows resolves the job's rows. Geocoder outages surface as
// retryable errors; bad input does not.
func (a *PlotActivities) GeocodeRows(ctx context.Context, rows []domain.RouteRow) (*GeocodeResult, error) {
	info := activity.GetInfo(ctx)
	activity.GetLogger(ctx).Info("geocoding rows", "rows", len(rows), "attempt", info.Attempt)

	routes, dropped, err := a.Plots.Resolve(ctx, rows)
	if err != nil {
		return nil, classify("geocode rows", err)
	}
	return &GeocodeResult{Routes: routes, Dropped: dropped}, nil
}

// RenderAndStore renders resolved routes and stores the map under the
// job's ID. Re-running it for the same ID after a partial failure
// overwrites the artifact.
func (a *PlotActivities) RenderAndStore(ctx context.Context, in RenderInput) (*PlotOutcome, error) {
	res, err := a.Plots.RenderAndStore(ctx, in.MapID, in.TileStyle, in.Routes, in.Dropped)
	if err != nil {
		return nil, classify("render map "+in.MapID, err)
	}
	return &PlotOutcome{
		MapID:       res.Record.ID,
		TileStyle:   res.Record.TileStyle,
		RouteCount:  res.Record.RouteCount,
		DroppedRows: len(res.Record.Dropped),
	}, nil
}

func classify(op string, err error) error {
	if usecases.IsClientError(err) {
		return temporal.NewNonRetryableApplicationError(fmt.Sprintf("%s: %v", op, err), errTypeInvalidInput, err)
	}
	if errors.Is(err, domain.ErrGeocoderFailed) {
		return temporal.NewApplicationError(fmt.Sprintf("%s: %v", op, err), "geocoder_failed", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
