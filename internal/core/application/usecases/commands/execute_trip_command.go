package commands

import (
	"errors"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/guard"
)

var ErrExecuteTripCommandIsNotConstructed = errors.New(
	"ExecuteTripCommand must be created via NewExecuteTripCommand constructor",
)

// ExecuteTripCommand represents a request to run one claimed execution
// attempt for a trip. Issued by the background worker after it claims the
// trip's queued execution record.
type ExecuteTripCommand struct { //nolint:recvcheck //using for validation
	tripID kernel.UUID

	guard guard.ConstructorGuard
}

// NewExecuteTripCommand creates a command to run a claimed execution attempt.
func NewExecuteTripCommand(tripID kernel.UUID) (ExecuteTripCommand, error) {
	cmd := ExecuteTripCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := tripID.Validate(); err != nil {
		return ExecuteTripCommand{}, err
	}
	cmd.tripID = tripID

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ExecuteTripCommand) Validate() error {
	return c.guard.Validate(ErrExecuteTripCommandIsNotConstructed)
}

// TripID returns the trip to execute.
func (c ExecuteTripCommand) TripID() kernel.UUID {
	return c.tripID
}
