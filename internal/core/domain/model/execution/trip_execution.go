package execution

import (
	"errors"
	"time"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/errs"
)

var (
	// ErrTripExecutionIsNotConstructed is returned when a TripExecution was
	// not created through NewTripExecution or RestoreTripExecution.
	ErrTripExecutionIsNotConstructed = errors.New("TripExecution must be created via NewTripExecution constructor")

	// ErrExecutionStillActive is returned by Requeue when the execution is
	// queued or processing. Callers attach to the active run instead of
	// starting a new one.
	ErrExecutionStillActive = errors.New("trip execution is still active")
)

// TripExecution is the durable record of a trip's execution attempts. Exactly
// one record exists per trip: a new execute request either attaches to the
// active record or requeues a finished one, so the record doubles as the
// queue entry for the background worker and as the status document polled by
// clients.
type TripExecution struct {
	// id is the unique identifier for the execution record
	id kernel.UUID

	// tripID is the trip this record belongs to; unique across records
	tripID kernel.UUID

	// jobID is the identifier handed back to clients for status polling
	jobID kernel.UUID

	// status is the queue state of the record
	status Status

	// progressMessage is a short human-readable description of the current step
	progressMessage string

	// generalError holds the trip-scoped error text when the run was aborted
	generalError string

	// attempts counts how many times this trip has been queued for execution
	attempts int

	// queuedAt records when the record was last queued
	queuedAt time.Time

	// startedAt records when a worker last claimed the record
	startedAt *time.Time

	// completedAt records when the record last reached a terminal status
	completedAt *time.Time

	// isConstructed ensures the record was created via a constructor
	isConstructed bool
}

// NewTripExecution creates the first execution record for a trip, queued and
// ready for a worker to claim.
func NewTripExecution(id, tripID kernel.UUID, now time.Time) (*TripExecution, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := tripID.Validate(); err != nil {
		return nil, err
	}

	return &TripExecution{
		id:              id,
		tripID:          tripID,
		jobID:           kernel.NewUUID(),
		status:          StatusQueued,
		progressMessage: "queued",
		attempts:        1,
		queuedAt:        now,
		isConstructed:   true,
	}, nil
}

// RestoreTripExecution reconstructs a TripExecution from persistence.
func RestoreTripExecution(
	id, tripID, jobID kernel.UUID,
	status Status,
	progressMessage string,
	generalError string,
	attempts int,
	queuedAt time.Time,
	startedAt *time.Time,
	completedAt *time.Time,
) (*TripExecution, error) {
	if err := errors.Join(id.Validate(), tripID.Validate(), jobID.Validate(), status.Validate()); err != nil {
		return nil, err
	}
	if attempts < 1 {
		return nil, errs.NewValueIsInvalidError("attempts")
	}

	return &TripExecution{
		id:              id,
		tripID:          tripID,
		jobID:           jobID,
		status:          status,
		progressMessage: progressMessage,
		generalError:    generalError,
		attempts:        attempts,
		queuedAt:        queuedAt,
		startedAt:       startedAt,
		completedAt:     completedAt,
		isConstructed:   true,
	}, nil
}

// Validate ensures the TripExecution was properly constructed.
func (e *TripExecution) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrTripExecutionIsNotConstructed
	}
	return nil
}

// ID returns the record's unique identifier.
func (e *TripExecution) ID() kernel.UUID { return e.id }

// TripID returns the trip this record belongs to.
func (e *TripExecution) TripID() kernel.UUID { return e.tripID }

// JobID returns the identifier clients use to poll execution status.
func (e *TripExecution) JobID() kernel.UUID { return e.jobID }

// Status returns the record's queue state.
func (e *TripExecution) Status() Status { return e.status }

// ProgressMessage returns the description of the current or last step.
func (e *TripExecution) ProgressMessage() string { return e.progressMessage }

// GeneralError returns the trip-scoped error text, or an empty string.
func (e *TripExecution) GeneralError() string { return e.generalError }

// Attempts returns how many times this trip has been queued.
func (e *TripExecution) Attempts() int { return e.attempts }

// QueuedAt returns when the record was last queued.
func (e *TripExecution) QueuedAt() time.Time { return e.queuedAt }

// StartedAt returns when a worker last claimed the record, or nil.
func (e *TripExecution) StartedAt() *time.Time { return e.startedAt }

// CompletedAt returns when the record last finished, or nil.
func (e *TripExecution) CompletedAt() *time.Time { return e.completedAt }

// Requeue resets a finished record for another attempt: a fresh job id, a
// bumped attempt counter and cleared outcome fields.
//
// Returns ErrExecutionStillActive when the record is queued or processing;
// the caller then attaches to the active run instead.
func (e *TripExecution) Requeue(now time.Time) error {
	if e.status.IsActive() {
		return ErrExecutionStillActive
	}

	e.status = StatusQueued
	e.jobID = kernel.NewUUID()
	e.progressMessage = "queued"
	e.generalError = ""
	e.attempts++
	e.queuedAt = now
	e.startedAt = nil
	e.completedAt = nil
	return nil
}

// Start marks the record as claimed by a worker.
func (e *TripExecution) Start(now time.Time) error {
	if e.status != StatusQueued {
		return errs.NewValueIsInvalidError("executionStatus")
	}

	e.status = StatusProcessing
	e.progressMessage = "processing"
	e.startedAt = &now
	return nil
}

// SetProgress updates the human-readable description of the current step.
// Only meaningful while processing; other states keep their message.
func (e *TripExecution) SetProgress(message string) {
	if e.status == StatusProcessing {
		e.progressMessage = message
	}
}

// Complete marks the record as finished successfully.
func (e *TripExecution) Complete(now time.Time) error {
	if e.status != StatusProcessing {
		return errs.NewValueIsInvalidError("executionStatus")
	}

	e.status = StatusCompleted
	e.progressMessage = "completed"
	e.completedAt = &now
	return nil
}

// Fail marks the record as finished unsuccessfully with the given trip-scoped
// error text.
func (e *TripExecution) Fail(now time.Time, generalError string) error {
	if e.status != StatusProcessing && e.status != StatusQueued {
		return errs.NewValueIsInvalidError("executionStatus")
	}

	e.status = StatusFailed
	e.progressMessage = "failed"
	e.generalError = generalError
	e.completedAt = &now
	return nil
}
