package jobs

import (
	"fmt"
	"log/slog"

	"tripmgr/internal/core/application/usecases/commands"
	"tripmgr/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	tripExecutionJob  *TripExecutionJob
	staleExecutionJob *StaleExecutionJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes the execution repository and command handler as dependencies to wire
// up the worker and the reaper.
func NewJobManager(
	executionRepo ports.ExecutionRepository,
	executeTripHandler commands.ExecuteTripCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		tripExecutionJob:  NewTripExecutionJob(executionRepo, executeTripHandler, logger),
		staleExecutionJob: NewStaleExecutionJob(executionRepo, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.tripExecutionJob.Start(); err != nil {
		return fmt.Errorf("failed to start trip execution job: %w", err)
	}

	if err := jm.staleExecutionJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.tripExecutionJob.Stop()
		return fmt.Errorf("failed to start stale execution job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleExecutionJob.Stop()
	jm.tripExecutionJob.Stop()
}
