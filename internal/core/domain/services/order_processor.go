package services

import (
	"context"
	"fmt"
	"log/slog"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"
	"tripmgr/internal/core/ports"
	"tripmgr/internal/pkg/errs"
)

// OrderSaver persists the state of a single order. Each processing step
// commits on its own so a crash mid-trip leaves every order at its last
// completed step instead of losing the whole attempt.
type OrderSaver interface {
	SaveOrder(ctx context.Context, order *trip.Order) error
}

// OrderProcessor is a domain service that advances one order through the
// split and move steps against the tracking system.
//
// Key responsibilities:
//   - Dropping lines with malformed unit identifiers before any remote call
//   - Skipping orders that have nothing valid left to split
//   - Failing an order locally on a non-positive quantity
//   - Recording remote rejections on the order without stopping its siblings
//
// Remote failures never surface as errors from Process: they are recorded on
// the order and the trip moves on. The two exceptions are session errors,
// which abort the whole trip, and persistence failures, which the caller must
// handle.
type OrderProcessor struct {
	gateway ports.TrackingGateway
	logger  *slog.Logger
}

// NewOrderProcessor creates an OrderProcessor.
func NewOrderProcessor(gateway ports.TrackingGateway, logger *slog.Logger) (OrderProcessor, error) {
	if gateway == nil {
		return OrderProcessor{}, errs.NewValueIsRequiredError("gateway")
	}
	if logger == nil {
		return OrderProcessor{}, errs.NewValueIsRequiredError("logger")
	}

	return OrderProcessor{
		gateway: gateway,
		logger:  logger.With("component", "order_processor"),
	}, nil
}

// Process runs the split and move steps for one pending order. After Process
// returns the order is Skipped, Sublotted-and-moved (InventoryMoved) or
// Failed, and every reached state has been saved.
//
// Returns an error only when the trip cannot continue: a session error from
// the gateway or a persistence failure from the saver.
func (p OrderProcessor) Process(ctx context.Context, sessionID string, order *trip.Order, saver OrderSaver) error {
	if err := order.Validate(); err != nil {
		return err
	}

	validLines := order.ValidLines()
	p.logDroppedLines(order)

	if len(validLines) == 0 {
		p.logger.Info("order skipped, no valid unit identifiers", "order", order.OrderRef())
		if err := order.MarkSkipped(); err != nil {
			return err
		}
		return saver.SaveOrder(ctx, order)
	}

	if line, ok := findInvalidQuantity(validLines); ok {
		message := fmt.Sprintf("invalid quantity %v for unit %s", line.Quantity(), line.UnitID())
		p.logger.Warn("order failed before remote call", "order", order.OrderRef(), "reason", message)
		if err := order.MarkFailed(message); err != nil {
			return err
		}
		return saver.SaveOrder(ctx, order)
	}

	if err := p.split(ctx, sessionID, order, validLines); err != nil {
		return p.recordFailure(ctx, order, saver, err)
	}
	if err := saver.SaveOrder(ctx, order); err != nil {
		return err
	}

	if err := p.move(ctx, sessionID, order); err != nil {
		return p.recordFailure(ctx, order, saver, err)
	}
	return saver.SaveOrder(ctx, order)
}

// split creates the child units for the order's valid lines.
func (p OrderProcessor) split(ctx context.Context, sessionID string, order *trip.Order, lines []trip.UnitLine) error {
	items := make([]ports.SplitItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, ports.SplitItem{UnitID: line.UnitID(), Quantity: line.Quantity()})
	}

	newIDs, err := p.gateway.SplitInventory(ctx, sessionID, items)
	if err != nil {
		return err
	}
	return order.MarkSublotted(newIDs)
}

// move relocates the new units into the order's target room.
func (p OrderProcessor) move(ctx context.Context, sessionID string, order *trip.Order) error {
	items := make([]ports.MoveItem, 0, len(order.NewUnitIDs()))
	for _, unitID := range order.NewUnitIDs() {
		items = append(items, ports.MoveItem{UnitID: unitID, Room: order.TargetRoom()})
	}

	if err := p.gateway.MoveInventory(ctx, sessionID, items); err != nil {
		return err
	}
	return order.MarkInventoryMoved()
}

// recordFailure stores a remote failure on the order, unless the error is
// trip-fatal, in which case it propagates for the caller to abort.
func (p OrderProcessor) recordFailure(ctx context.Context, order *trip.Order, saver OrderSaver, cause error) error {
	if ports.IsSessionError(cause) {
		return cause
	}

	p.logger.Warn("order step failed", "order", order.OrderRef(), "error", cause)
	if err := order.MarkFailed(cause.Error()); err != nil {
		return err
	}
	return saver.SaveOrder(ctx, order)
}

func (p OrderProcessor) logDroppedLines(order *trip.Order) {
	for _, line := range order.Lines() {
		if !line.HasValidUnitID() {
			p.logger.Warn("dropping line with malformed unit identifier",
				"order", order.OrderRef(),
				"unitId", line.UnitID(),
			)
		}
	}
}

// findInvalidQuantity returns the first line whose quantity the tracking
// system would reject outright.
func findInvalidQuantity(lines []trip.UnitLine) (trip.UnitLine, bool) {
	for _, line := range lines {
		if _, err := kernel.NewQuantity(line.Quantity()); err != nil {
			return line, true
		}
	}
	return trip.UnitLine{}, false
}
