package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tripmgr/internal/core/application/usecases/commands"
	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/ports"
	"tripmgr/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// executionTimeout bounds a single execution attempt. A trip of twenty orders
// makes at most a few dozen remote calls, each retried with backoff; an
// attempt running longer than this is stuck, not slow.
const executionTimeout = 10 * time.Minute

// finalizationTimeout bounds the single database write that fails a claimed
// record after a broken attempt.
const finalizationTimeout = 30 * time.Second

// TripExecutionJob is the background worker for queued trip executions.
// Every second it claims the oldest queued execution record and runs the
// attempt end to end. Claiming is atomic at the database level, so multiple
// application instances can run this job side by side.
type TripExecutionJob struct {
	executionRepo ports.ExecutionRepository
	handler       commands.ExecuteTripCommandHandler
	cron          *cron.Cron
	logger        *slog.Logger
}

// NewTripExecutionJob creates the worker job for trip executions.
func NewTripExecutionJob(
	executionRepo ports.ExecutionRepository,
	handler commands.ExecuteTripCommandHandler,
	logger *slog.Logger,
) *TripExecutionJob {
	return &TripExecutionJob{
		executionRepo: executionRepo,
		handler:       handler,
		cron: cron.New(cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("component", "trip_execution_job"),
	}
}

// Start begins polling the execution queue every second. A tick that fires
// while the previous run is still executing is skipped, so this worker
// processes one trip at a time.
func (j *TripExecutionJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Trip execution job started (polling every second)")
	return nil
}

// Stop stops the trip execution job.
func (j *TripExecutionJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Trip execution job stopped")
}

// runOnce claims and executes a single queued record, if any.
func (j *TripExecutionJob) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), executionTimeout)
	defer cancel()

	record, err := j.executionRepo.ClaimNextQueued(ctx, time.Now())
	if err != nil {
		// An empty queue is the normal case for most ticks.
		if !errors.Is(err, errs.ErrObjectNotFound) {
			j.logger.ErrorContext(ctx, "Failed to claim queued execution", "error", err)
		}
		return
	}

	cmd, err := commands.NewExecuteTripCommand(record.TripID())
	if err != nil {
		j.failRecord(record, err)
		return
	}

	if err := j.handler.Handle(ctx, cmd); err != nil {
		// The handler finalizes the record for every outcome it can decide;
		// an error here means the record is still processing and must be
		// failed by the worker.
		j.logger.ErrorContext(ctx, "Trip execution attempt failed",
			"trip", record.TripID(), "job", record.JobID(), "error", err)
		j.failRecord(record, err)
	}
}

// failRecord runs on its own context: the job context is already expired when
// the attempt failed by timeout, and the failure must still be persisted.
func (j *TripExecutionJob) failRecord(record *execution.TripExecution, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizationTimeout)
	defer cancel()

	if err := record.Fail(time.Now(), cause.Error()); err != nil {
		j.logger.ErrorContext(ctx, "Failed to mark execution record failed", "error", err)
		return
	}
	if err := j.executionRepo.Update(ctx, record); err != nil {
		j.logger.ErrorContext(ctx, "Failed to persist failed execution record", "error", err)
	}
}
