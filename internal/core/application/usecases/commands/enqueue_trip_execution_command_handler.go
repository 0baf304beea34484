package commands

import (
	"context"
	"time"

	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/ports"
)

// EnqueueTripExecutionCommandHandler queues a trip for asynchronous
// execution. The execution record is upserted: concurrent requests for the
// same trip converge on a single active record instead of racing, and a
// finished record is requeued for another attempt.
//
// Example:
//
//	handler := NewEnqueueTripExecutionCommandHandler(uowFactory, executionRepo)
//	cmd, _ := NewEnqueueTripExecutionCommand(tripID)
//
//	record, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("failed to queue trip: %w", err)
//	}
//	fmt.Printf("poll job %s for status", record.JobID())
type EnqueueTripExecutionCommandHandler struct {
	uowFactory    TripUoWFactory
	executionRepo ports.ExecutionRepository
	now           func() time.Time
}

// NewEnqueueTripExecutionCommandHandler creates a handler for queuing trip
// executions.
func NewEnqueueTripExecutionCommandHandler(
	uowFactory TripUoWFactory,
	executionRepo ports.ExecutionRepository,
) EnqueueTripExecutionCommandHandler {
	return EnqueueTripExecutionCommandHandler{
		uowFactory:    uowFactory,
		executionRepo: executionRepo,
		now:           time.Now,
	}
}

// Handle queues the trip for execution and returns its execution record.
// The trip must exist; queuing a trip that is already queued or processing
// returns the active record unchanged.
func (h *EnqueueTripExecutionCommandHandler) Handle(
	ctx context.Context,
	cmd EnqueueTripExecutionCommand,
) (*execution.TripExecution, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err := uow.TripRepository().Get(ctx, cmd.TripID()); err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	return h.executionRepo.Upsert(ctx, cmd.TripID(), h.now())
}
