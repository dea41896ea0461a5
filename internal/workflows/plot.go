package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// DefaultTaskQueue is the task queue plot workflows run on.
const DefaultTaskQueue = "routemap-plot"

// WorkflowID is the workflow ID used for a map, so a map is plotted at
// most once at a time.
func WorkflowID(mapID string) string {
	return "plot-" + mapID
}

// PlotWorkflow geocodes the job's rows, then renders and stores the map.
// Geocoding is retried with backoff since public geocoders throttle;
// invalid input fails the workflow immediately.
func PlotWorkflow(ctx workflow.Context, job domain.PlotJob) (*PlotOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting plot workflow", "mapID", job.MapID, "rows", len(job.Rows))

	geocodeCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{errTypeInvalidInput},
		},
	})

	var resolved GeocodeResult
	if err := workflow.ExecuteActivity(geocodeCtx, ActivityGeocodeRows, job.Rows).Get(ctx, &resolved); err != nil {
		logger.Warn("geocoding failed", "mapID", job.MapID, "error", err)
		return nil, err
	}

	renderCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{errTypeInvalidInput},
		},
	})

	var outcome PlotOutcome
	err := workflow.ExecuteActivity(renderCtx, ActivityRenderAndStore, RenderInput{
		MapID:     job.MapID,
		TileStyle: job.TileStyle,
		Routes:    resolved.Routes,
		Dropped:   resolved.Dropped,
	}).Get(ctx, &outcome)
	if err != nil {
		return nil, err
	}

	logger.Info("Map plotted", "mapID", outcome.MapID, "routes", outcome.RouteCount, "dropped", outcome.DroppedRows)
	return &outcome, nil
}
