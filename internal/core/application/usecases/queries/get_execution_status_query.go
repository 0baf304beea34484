// Package queries contains read-only operations for the CQRS read side.
// Query handlers bypass the domain model and read projection-friendly rows
// straight from the database.
package queries

import (
	"errors"
	"time"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/guard"
)

var ErrGetExecutionStatusQueryIsNotConstructed = errors.New(
	"GetExecutionStatusQuery must be created via NewGetExecutionStatusQuery constructor",
)

// GetExecutionStatusQuery retrieves the execution status document for a trip:
// the trip-level outcome plus the per-order breakdown clients poll while an
// execution runs.
//
// Example:
//
//	query, _ := NewGetExecutionStatusQuery(tripID)
//	handler := NewGetExecutionStatusQueryHandler(db)
//
//	status, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get execution status: %w", err)
//	}
//	fmt.Printf("trip is %s: %s\n", status.Status, status.ProgressMessage)
type GetExecutionStatusQuery struct { //nolint:recvcheck //using for validation
	tripID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetExecutionStatusQuery creates a query for a trip's execution status.
func NewGetExecutionStatusQuery(tripID kernel.UUID) (GetExecutionStatusQuery, error) {
	if err := tripID.Validate(); err != nil {
		return GetExecutionStatusQuery{}, err
	}

	return GetExecutionStatusQuery{
		tripID: tripID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetExecutionStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetExecutionStatusQueryIsNotConstructed)
}

// TripID returns the trip whose status is requested.
func (q GetExecutionStatusQuery) TripID() kernel.UUID {
	return q.tripID
}

// OrderStatusResponse is the per-order slice of the status document.
type OrderStatusResponse struct {
	OrderRef     string
	StopNumber   int
	Status       string
	ErrorMessage string
	ManifestID   string
}

// GetExecutionStatusQueryResponse is the status document for one trip.
type GetExecutionStatusQueryResponse struct {
	TripID          kernel.UUID
	JobID           kernel.UUID
	Status          string
	ProgressMessage string
	GeneralError    string
	Attempts        int
	QueuedAt        time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	Orders          []OrderStatusResponse
}
