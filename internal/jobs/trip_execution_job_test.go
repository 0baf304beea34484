package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tripmgr/internal/core/application/usecases/commands"
	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingExecutionRepo captures the state of the context passed to Update.
type recordingExecutionRepo struct {
	updated      *execution.TripExecution
	updateCtxErr error
	hadDeadline  bool
}

func (r *recordingExecutionRepo) Upsert(context.Context, kernel.UUID, time.Time) (*execution.TripExecution, error) {
	return nil, errors.New("not used")
}

func (r *recordingExecutionRepo) ClaimNextQueued(context.Context, time.Time) (*execution.TripExecution, error) {
	return nil, errs.NewObjectNotFoundError("tripExecution", "next queued")
}

func (r *recordingExecutionRepo) Update(ctx context.Context, record *execution.TripExecution) error {
	r.updated = record
	r.updateCtxErr = ctx.Err()
	_, r.hadDeadline = ctx.Deadline()
	return nil
}

func (r *recordingExecutionRepo) GetByTripID(context.Context, kernel.UUID) (*execution.TripExecution, error) {
	return nil, errs.NewObjectNotFoundError("tripExecution", "unknown")
}

func (r *recordingExecutionRepo) FailStale(context.Context, time.Duration, time.Time) (int, error) {
	return 0, nil
}

func claimedRecord(t *testing.T) *execution.TripExecution {
	t.Helper()
	record, err := execution.NewTripExecution(kernel.NewUUID(), kernel.NewUUID(), time.Now())
	require.NoError(t, err)
	require.NoError(t, record.Start(time.Now()))
	return record
}

// The job context is already expired when an attempt fails by timeout; the
// failure write must still reach the database.
func TestTripExecutionJob_FailRecordSurvivesExpiredJobContext(t *testing.T) {
	repo := &recordingExecutionRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := NewTripExecutionJob(repo, commands.ExecuteTripCommandHandler{}, logger)
	record := claimedRecord(t)

	job.failRecord(record, context.DeadlineExceeded)

	require.NotNil(t, repo.updated)
	assert.NoError(t, repo.updateCtxErr)
	assert.True(t, repo.hadDeadline)
	assert.Equal(t, execution.StatusFailed, record.Status())
	assert.Equal(t, context.DeadlineExceeded.Error(), record.GeneralError())
}
