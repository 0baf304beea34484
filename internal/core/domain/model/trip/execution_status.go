package trip

import (
	"fmt"

	"tripmgr/internal/pkg/errs"
)

// ExecutionStatus represents the overall execution state of a trip as seen by
// polling clients:
//
//	NotStarted ──> Processing ──> Completed
//	                   │              │
//	                   └──> Failed <──┘ (re-execution allowed)
//
// Every state is re-enterable into Processing: a new execute request resets a
// finished trip for another attempt, and a trip left Processing by a crashed
// worker is picked up again by the next attempt. Concurrent attempts on one
// trip are prevented by the execution queue record, which admits a single
// active attempt per trip, not by this status.
type ExecutionStatus int

const (
	// ExecutionStatusUnknown represents an invalid or undefined status.
	ExecutionStatusUnknown ExecutionStatus = iota

	// ExecutionStatusNotStarted means no execution attempt has been made.
	ExecutionStatusNotStarted

	// ExecutionStatusProcessing means an execution attempt is in flight.
	ExecutionStatusProcessing

	// ExecutionStatusCompleted means the last attempt manifested at least
	// one order.
	ExecutionStatusCompleted

	// ExecutionStatusFailed means the last attempt manifested no orders or
	// was aborted by a trip-scoped error.
	ExecutionStatusFailed
)

func getExecutionStatusStrings() map[ExecutionStatus]string {
	return map[ExecutionStatus]string{
		ExecutionStatusUnknown:    "unknown",
		ExecutionStatusNotStarted: "not_started",
		ExecutionStatusProcessing: "processing",
		ExecutionStatusCompleted:  "completed",
		ExecutionStatusFailed:     "failed",
	}
}

// Validate checks if the ExecutionStatus value is one of the closed enumeration.
func (s ExecutionStatus) Validate() error {
	switch s {
	case ExecutionStatusNotStarted, ExecutionStatusProcessing,
		ExecutionStatusCompleted, ExecutionStatusFailed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("executionStatus",
			fmt.Errorf("%d is not a valid execution status", s))
	}
}

// String returns the persisted/reported name of the status.
func (s ExecutionStatus) String() string {
	if str, ok := getExecutionStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Start transitions into Processing. Starting is allowed from every state,
// Processing included: a trip stuck in Processing after a worker crash must
// remain executable by the next claimed attempt.
func (s ExecutionStatus) Start() (ExecutionStatus, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return ExecutionStatusProcessing, nil
}

// Finish transitions Processing -> Completed or Failed depending on whether
// any order succeeded.
func (s ExecutionStatus) Finish(anySucceeded bool) (ExecutionStatus, error) {
	if s != ExecutionStatusProcessing {
		return 0, errs.NewValueIsInvalidErrorWithCause("executionStatus",
			fmt.Errorf("cannot finish from %s", s))
	}
	if anySucceeded {
		return ExecutionStatusCompleted, nil
	}
	return ExecutionStatusFailed, nil
}
