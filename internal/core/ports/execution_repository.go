package ports

import (
	"context"
	"time"

	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"
)

// ExecutionRepository defines the persistence contract for TripExecution
// records. One record exists per trip, enforced by a unique constraint on the
// trip id.
//
// Methods on this repository manage their own transactions. Execution state
// must remain observable while a long run is in flight, so each write commits
// on its own instead of joining the business transaction.
type ExecutionRepository interface {
	// Upsert atomically creates the execution record for a trip or, when a
	// record already exists, applies the queue semantics: an active record
	// is returned unchanged, a finished record is requeued for another
	// attempt. Safe to call concurrently; exactly one caller creates the
	// record, the rest converge on it.
	Upsert(ctx context.Context, tripID kernel.UUID, now time.Time) (*execution.TripExecution, error)

	// ClaimNextQueued atomically claims the oldest queued record and moves
	// it to processing. Returns errs.ErrObjectNotFound when the queue is
	// empty. Two concurrent workers never claim the same record.
	ClaimNextQueued(ctx context.Context, now time.Time) (*execution.TripExecution, error)

	// Update persists changes to a claimed execution record.
	Update(ctx context.Context, record *execution.TripExecution) error

	// GetByTripID retrieves the execution record for a trip.
	// Returns errs.ErrObjectNotFound when the trip was never queued.
	GetByTripID(ctx context.Context, tripID kernel.UUID) (*execution.TripExecution, error)

	// FailStale marks records that have been processing longer than
	// threshold as failed. Returns the number of records failed. Used by
	// the reaper job to recover from crashed workers.
	FailStale(ctx context.Context, threshold time.Duration, now time.Time) (int, error)
}
