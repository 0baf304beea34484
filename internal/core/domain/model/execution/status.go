package execution

import (
	"fmt"

	"tripmgr/internal/pkg/errs"
)

// Status is the queue state of a TripExecution record:
//
//	Queued ──> Processing ──> Completed
//	              │               │
//	              └──> Failed <───┘  (requeue resets to Queued)
//
// Queued records are picked up by the background job. Completed and Failed
// are terminal until a new execute request requeues the record.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusQueued means the execution is waiting for a worker.
	StatusQueued

	// StatusProcessing means a worker claimed the execution and is running it.
	StatusProcessing

	// StatusCompleted means the execution finished and manifested at least
	// one order.
	StatusCompleted

	// StatusFailed means the execution finished without manifesting any
	// order, or was aborted by a trip-scoped error.
	StatusFailed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:    "unknown",
		StatusQueued:     "queued",
		StatusProcessing: "processing",
		StatusCompleted:  "completed",
		StatusFailed:     "failed",
	}
}

// Validate checks if the Status value is one of the closed enumeration.
func (s Status) Validate() error {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("executionStatus",
			fmt.Errorf("%d is not a valid execution status", s))
	}
}

// String returns the persisted/reported name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsActive reports whether the execution is still in flight: queued or
// claimed by a worker. At most one active execution exists per trip.
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusProcessing
}

// IsTerminal reports whether the execution has finished.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
