package ports

import (
	"context"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"
)

// TripRepository defines the persistence contract for trip aggregates.
// A trip is stored together with its orders and route segments; loading a
// trip always returns the complete aggregate.
type TripRepository interface {
	// Add persists a new trip aggregate to storage.
	// The trip must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *trip.Trip) error

	// Update persists changes to an existing trip aggregate, including the
	// execution state of its orders.
	Update(ctx context.Context, aggregate *trip.Trip) error

	// UpdateOrder persists the execution state of a single order without
	// touching the rest of the aggregate. Used between remote calls so a
	// crash keeps every order at its last completed step.
	UpdateOrder(ctx context.Context, order *trip.Order) error

	// Get retrieves a trip aggregate by its unique identifier.
	// Returns errs.ErrObjectNotFound when no trip exists with that id.
	Get(ctx context.Context, id kernel.UUID) (*trip.Trip, error)
}
