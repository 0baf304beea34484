package services

import (
	"context"
	"log/slog"
	"time"

	"tripmgr/internal/core/domain/model/trip"
	"tripmgr/internal/core/ports"
	"tripmgr/internal/pkg/errs"
)

// ManifestBuilder is a domain service that registers transfer manifests for
// the orders that made it through the move step.
//
// Orders are grouped by route stop and one manifest is registered per stop,
// covering the union of the new unit identifiers of every order at that stop.
// A failed registration fails only the orders of its stop; other stops still
// get their manifests.
type ManifestBuilder struct {
	gateway ports.TrackingGateway
	logger  *slog.Logger
}

// NewManifestBuilder creates a ManifestBuilder.
func NewManifestBuilder(gateway ports.TrackingGateway, logger *slog.Logger) (ManifestBuilder, error) {
	if gateway == nil {
		return ManifestBuilder{}, errs.NewValueIsRequiredError("gateway")
	}
	if logger == nil {
		return ManifestBuilder{}, errs.NewValueIsRequiredError("logger")
	}

	return ManifestBuilder{
		gateway: gateway,
		logger:  logger.With("component", "manifest_builder"),
	}, nil
}

// RegisterManifests registers one manifest per route stop for every order of
// the trip that reached InventoryMoved. Stops are processed in ascending
// order. Each order's outcome is saved as soon as it is known.
//
// Returns an error only when the trip cannot continue: a session error from
// the gateway or a persistence failure from the saver.
func (b ManifestBuilder) RegisterManifests(
	ctx context.Context,
	sessionID string,
	aggregate *trip.Trip,
	now time.Time,
	saver OrderSaver,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	moved := make([]*trip.Order, 0, len(aggregate.Orders()))
	for _, order := range aggregate.Orders() {
		if order.Status() == trip.OrderStatusInventoryMoved {
			moved = append(moved, order)
		}
	}
	if len(moved) == 0 {
		b.logger.Info("no orders eligible for manifest", "trip", aggregate.ID())
		return nil
	}

	stops, groups := aggregate.OrdersByStop(moved)
	for _, stop := range stops {
		if err := b.registerStop(ctx, sessionID, aggregate, stop, groups[stop], now, saver); err != nil {
			return err
		}
	}
	return nil
}

// registerStop registers the manifest for one stop and records the outcome on
// each contributing order.
func (b ManifestBuilder) registerStop(
	ctx context.Context,
	sessionID string,
	aggregate *trip.Trip,
	stop int,
	orders []*trip.Order,
	now time.Time,
	saver OrderSaver,
) error {
	segment := aggregate.SegmentForStop(stop, now)

	var unitIDs []string
	for _, order := range orders {
		unitIDs = append(unitIDs, order.NewUnitIDs()...)
	}

	request := ports.ManifestRequest{
		VendorLicense:  orders[0].VendorLicense(),
		StopNumber:     stop,
		UnitIDs:        unitIDs,
		Departure:      segment.Departure(),
		Arrival:        segment.Arrival(),
		RouteText:      segment.RouteText(),
		DriverID:       aggregate.PrimaryDriverID(),
		SecondDriverID: aggregate.SecondDriverID(),
		VehicleID:      aggregate.VehicleID(),
	}

	manifestID, err := b.gateway.RegisterManifest(ctx, sessionID, request)
	if err != nil {
		if ports.IsSessionError(err) {
			return err
		}

		b.logger.Warn("manifest registration failed",
			"trip", aggregate.ID(),
			"stop", stop,
			"error", err,
		)
		for _, order := range orders {
			if markErr := order.MarkFailed(err.Error()); markErr != nil {
				return markErr
			}
			if saveErr := saver.SaveOrder(ctx, order); saveErr != nil {
				return saveErr
			}
		}
		return nil
	}

	b.logger.Info("manifest registered",
		"trip", aggregate.ID(),
		"stop", stop,
		"manifestId", manifestID,
		"units", len(unitIDs),
	)
	for _, order := range orders {
		if err := order.MarkManifested(manifestID); err != nil {
			return err
		}
		if err := saver.SaveOrder(ctx, order); err != nil {
			return err
		}
	}
	return nil
}
