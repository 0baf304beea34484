package jobs

import (
	"context"
	"log/slog"
	"time"

	"tripmgr/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// staleThreshold is how long an execution record may stay processing before
// the reaper fails it. Longer than executionTimeout so a slow but live
// attempt is never reaped out from under its worker.
const staleThreshold = 15 * time.Minute

// StaleExecutionJob recovers the queue after worker crashes. A worker that
// dies mid-run leaves its record processing forever, which blocks requeueing
// for that trip; this job periodically fails such records.
type StaleExecutionJob struct {
	executionRepo ports.ExecutionRepository
	cron          *cron.Cron
	logger        *slog.Logger
}

// NewStaleExecutionJob creates the reaper job for abandoned execution records.
func NewStaleExecutionJob(executionRepo ports.ExecutionRepository, logger *slog.Logger) *StaleExecutionJob {
	return &StaleExecutionJob{
		executionRepo: executionRepo,
		cron:          cron.New(cron.WithSeconds()),
		logger:        logger.With("component", "stale_execution_job"),
	}
}

// Start begins the reaper to run every thirty seconds.
func (j *StaleExecutionJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		failed, err := j.executionRepo.FailStale(ctx, staleThreshold, time.Now())
		if err != nil {
			j.logger.ErrorContext(ctx, "Stale execution sweep failed", "error", err)
			return
		}
		if failed > 0 {
			j.logger.WarnContext(ctx, "Failed stale execution records", "count", failed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale execution job started (running every 30 seconds)")
	return nil
}

// Stop stops the stale execution job.
func (j *StaleExecutionJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale execution job stopped")
}
