package commands

import (
	"context"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"
)

// CreateTripCommandHandler handles the business logic for trip registration.
// Builds the trip aggregate from the supplied specifications and persists it
// atomically with its orders and route.
//
// Example:
//
//	handler := NewCreateTripCommandHandler(uowFactory)
//	cmd, _ := NewCreateTripCommand(tripID, "EMP-1", "", "VEH-9", orders, nil)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("trip creation failed: %w", err)
//	}
type CreateTripCommandHandler struct {
	uowFactory TripUoWFactory
}

// NewCreateTripCommandHandler creates a handler for trip registration.
// Requires a TripUoWFactory for transactional persistence.
func NewCreateTripCommandHandler(uowFactory TripUoWFactory) CreateTripCommandHandler {
	return CreateTripCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the trip creation command.
// Builds every order and route segment through the domain constructors, so
// any invalid specification rejects the whole trip before anything is stored.
func (h *CreateTripCommandHandler) Handle(ctx context.Context, cmd CreateTripCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := buildTrip(cmd)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TripRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}

func buildTrip(cmd CreateTripCommand) (*trip.Trip, error) {
	orders := make([]*trip.Order, 0, len(cmd.Orders()))
	for _, spec := range cmd.Orders() {
		lines := make([]trip.UnitLine, 0, len(spec.Lines))
		for _, lineSpec := range spec.Lines {
			line, err := trip.NewUnitLine(lineSpec.UnitID, lineSpec.Quantity)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}

		order, err := trip.NewOrder(
			kernel.NewUUID(),
			spec.OrderRef,
			spec.StopNumber,
			spec.TargetRoom,
			spec.VendorLicense,
			lines,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	segments := make([]trip.RouteSegment, 0, len(cmd.RouteSegments()))
	for _, spec := range cmd.RouteSegments() {
		segment, err := trip.NewRouteSegment(spec.StopNumber, spec.Departure, spec.Arrival, spec.RouteText)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}

	return trip.NewTrip(
		cmd.TripID(),
		cmd.PrimaryDriverID(),
		cmd.SecondDriverID(),
		cmd.VehicleID(),
		orders,
		segments,
	)
}
