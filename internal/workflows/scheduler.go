package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

// Scheduler starts plot workflows on Temporal. It implements
// ports.PlotScheduler.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

// NewScheduler creates a Scheduler. An empty taskQueue uses DefaultTaskQueue.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// SchedulePlot starts PlotWorkflow for job and returns the run ID.
func (s *Scheduler) SchedulePlot(ctx context.Context, job domain.PlotJob) (string, error) {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       WorkflowID(job.MapID),
		TaskQueue:                s.taskQueue,
		WorkflowExecutionTimeout: 30 * time.Minute,
	}, PlotWorkflow, job)
	if err != nil {
		return "", fmt.Errorf("start plot workflow: %w", err)
	}
	return run.GetRunID(), nil
}

// Ping checks the Temporal frontend.
func (s *Scheduler) Ping(ctx context.Context) error {
	_, err := s.client.CheckHealth(ctx, &client.CheckHealthRequest{})
	return err
}
