package commands

import (
	"errors"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/guard"
)

var ErrEnqueueTripExecutionCommandIsNotConstructed = errors.New(
	"EnqueueTripExecutionCommand must be created via NewEnqueueTripExecutionCommand constructor",
)

// EnqueueTripExecutionCommand represents a request to execute a trip
// asynchronously. The trip is queued for the background worker; the caller
// receives a job identifier to poll for status.
type EnqueueTripExecutionCommand struct { //nolint:recvcheck //using for validation
	tripID kernel.UUID

	guard guard.ConstructorGuard
}

// NewEnqueueTripExecutionCommand creates a command to queue a trip for
// execution.
func NewEnqueueTripExecutionCommand(tripID kernel.UUID) (EnqueueTripExecutionCommand, error) {
	cmd := EnqueueTripExecutionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := tripID.Validate(); err != nil {
		return EnqueueTripExecutionCommand{}, err
	}
	cmd.tripID = tripID

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c EnqueueTripExecutionCommand) Validate() error {
	return c.guard.Validate(ErrEnqueueTripExecutionCommandIsNotConstructed)
}

// TripID returns the trip to execute.
func (c EnqueueTripExecutionCommand) TripID() kernel.UUID {
	return c.tripID
}
