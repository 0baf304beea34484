package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"
	"tripmgr/internal/core/domain/services"
	"tripmgr/internal/core/ports"
	"tripmgr/internal/pkg/errs"
)

// ExecuteTripCommandHandler orchestrates one execution attempt for a trip:
// authenticate, process every order through split and move, register
// manifests per route stop, then record the trip-level outcome.
//
// The handler owns finalization of the execution record. When it can reach a
// decision, even a negative one such as a failed login, it writes the
// terminal state itself and returns nil. It returns an error only when the
// attempt could not be finalized (the trip failed to load or a state write
// failed), leaving the caller to mark the record failed.
type ExecuteTripCommandHandler struct {
	uowFactory      TripUoWFactory
	executionRepo   ports.ExecutionRepository
	gateway         ports.TrackingGateway
	orderProcessor  services.OrderProcessor
	manifestBuilder services.ManifestBuilder
	logger          *slog.Logger
	now             func() time.Time
}

// NewExecuteTripCommandHandler creates the trip execution orchestrator.
func NewExecuteTripCommandHandler(
	uowFactory TripUoWFactory,
	executionRepo ports.ExecutionRepository,
	gateway ports.TrackingGateway,
	orderProcessor services.OrderProcessor,
	manifestBuilder services.ManifestBuilder,
	logger *slog.Logger,
) (ExecuteTripCommandHandler, error) {
	if uowFactory == nil {
		return ExecuteTripCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if executionRepo == nil {
		return ExecuteTripCommandHandler{}, errs.NewValueIsRequiredError("executionRepo")
	}
	if gateway == nil {
		return ExecuteTripCommandHandler{}, errs.NewValueIsRequiredError("gateway")
	}
	if logger == nil {
		return ExecuteTripCommandHandler{}, errs.NewValueIsRequiredError("logger")
	}

	return ExecuteTripCommandHandler{
		uowFactory:      uowFactory,
		executionRepo:   executionRepo,
		gateway:         gateway,
		orderProcessor:  orderProcessor,
		manifestBuilder: manifestBuilder,
		logger:          logger.With("component", "execute_trip"),
	}, nil
}

// Handle runs one execution attempt end to end.
//
// Order failures are partial: each order advances as far as it can and
// records its own outcome. The trip completes when at least one order is
// manifested. Session failures abort the attempt and fail the trip as a
// whole.
func (h *ExecuteTripCommandHandler) Handle(ctx context.Context, cmd ExecuteTripCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	record, err := h.executionRepo.GetByTripID(ctx, cmd.TripID())
	if err != nil {
		return err
	}
	if record.Status() != execution.StatusProcessing {
		return errs.NewValueIsInvalidErrorWithCause("execution",
			fmt.Errorf("record is %s, expected processing", record.Status()))
	}

	aggregate, err := h.loadTrip(ctx, cmd.TripID())
	if err != nil {
		return err
	}

	if err := aggregate.BeginExecution(); err != nil {
		return err
	}
	if err := h.saveTrip(ctx, aggregate); err != nil {
		return err
	}

	logger := h.logger.With("trip", aggregate.ID(), "attempt", record.Attempts())
	logger.Info("trip execution started", "orders", len(aggregate.Orders()))

	h.setProgress(ctx, record, "authenticating")

	sessionID, err := h.gateway.Authenticate(ctx)
	if err != nil {
		logger.Error("authentication failed", "error", err)
		return h.abort(ctx, aggregate, record, err.Error())
	}

	saver := &tripOrderSaver{uowFactory: h.uowFactory}

	for i, order := range aggregate.Orders() {
		h.setProgress(ctx, record, fmt.Sprintf("processing order %d of %d", i+1, len(aggregate.Orders())))

		if err := h.orderProcessor.Process(ctx, sessionID, order, saver); err != nil {
			if ports.IsSessionError(err) {
				logger.Error("session lost while processing orders", "error", err)
				return h.abort(ctx, aggregate, record, err.Error())
			}
			return err
		}
	}

	h.setProgress(ctx, record, "registering manifests")

	if err := h.manifestBuilder.RegisterManifests(ctx, sessionID, aggregate, h.clock(), saver); err != nil {
		if ports.IsSessionError(err) {
			logger.Error("session lost while registering manifests", "error", err)
			return h.abort(ctx, aggregate, record, err.Error())
		}
		return err
	}

	return h.finish(ctx, aggregate, record, logger)
}

// finish records the trip-level outcome derived from the order outcomes.
func (h *ExecuteTripCommandHandler) finish(
	ctx context.Context,
	aggregate *trip.Trip,
	record *execution.TripExecution,
	logger *slog.Logger,
) error {
	now := h.clock()
	if err := aggregate.FinishExecution(now); err != nil {
		return err
	}
	if err := h.saveTrip(ctx, aggregate); err != nil {
		return err
	}

	if aggregate.ExecutionStatus() == trip.ExecutionStatusCompleted {
		logger.Info("trip execution completed")
		if err := record.Complete(now); err != nil {
			return err
		}
	} else {
		logger.Warn("trip execution failed, no order was manifested")
		if err := record.Fail(now, "no orders completed successfully"); err != nil {
			return err
		}
	}
	return h.executionRepo.Update(ctx, record)
}

// abort fails the whole attempt on a trip-scoped error and finalizes both the
// trip and the execution record.
func (h *ExecuteTripCommandHandler) abort(
	ctx context.Context,
	aggregate *trip.Trip,
	record *execution.TripExecution,
	reason string,
) error {
	now := h.clock()
	if err := aggregate.AbortExecution(now); err != nil {
		return err
	}
	if err := h.saveTrip(ctx, aggregate); err != nil {
		return err
	}
	if err := record.Fail(now, reason); err != nil {
		return err
	}
	return h.executionRepo.Update(ctx, record)
}

// setProgress is best effort: a failed progress write never stops the run.
func (h *ExecuteTripCommandHandler) setProgress(ctx context.Context, record *execution.TripExecution, message string) {
	record.SetProgress(message)
	if err := h.executionRepo.Update(ctx, record); err != nil {
		h.logger.Warn("failed to update execution progress", "error", err)
	}
}

func (h *ExecuteTripCommandHandler) loadTrip(ctx context.Context, tripID kernel.UUID) (*trip.Trip, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.TripRepository().Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return aggregate, nil
}

func (h *ExecuteTripCommandHandler) saveTrip(ctx context.Context, aggregate *trip.Trip) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.TripRepository().Update(ctx, aggregate); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h *ExecuteTripCommandHandler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// tripOrderSaver persists single-order state changes in their own short
// transactions.
type tripOrderSaver struct {
	uowFactory TripUoWFactory
}

func (s *tripOrderSaver) SaveOrder(ctx context.Context, order *trip.Order) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.TripRepository().UpdateOrder(ctx, order); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
