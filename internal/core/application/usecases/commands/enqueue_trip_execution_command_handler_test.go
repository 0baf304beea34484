package commands_test

import (
	"testing"
	"time"

	"tripmgr/internal/core/application/usecases/commands"
	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"
	"tripmgr/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mockTrip(t *testing.T, tripID kernel.UUID) *trip.Trip {
	t.Helper()
	line, err := trip.NewUnitLine("6853296789574117", 10)
	require.NoError(t, err)
	order, err := trip.NewOrder(kernel.NewUUID(), "ORD-1", 1, "quarantine", "VENDOR-LIC", []trip.UnitLine{line})
	require.NoError(t, err)
	aggregate, err := trip.NewTrip(tripID, "EMP-1", "", "VEH-9", []*trip.Order{order}, nil)
	require.NoError(t, err)
	return aggregate
}

func TestEnqueueTripExecutionCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	tripID := kernel.NewUUID()
	cmd, err := commands.NewEnqueueTripExecutionCommand(tripID)
	require.NoError(t, err)

	record, err := execution.NewTripExecution(kernel.NewUUID(), tripID, time.Now())
	require.NoError(t, err)

	repo := new(MockTripRepository)
	uow := new(MockTripUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TripRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, tripID).Return(mockTrip(t, tripID), nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTripUoWFactory)
	factory.On("Create").Return(uow).Once()

	executionRepo := new(MockExecutionRepository)
	executionRepo.On("Upsert", mock.Anything, tripID, mock.AnythingOfType("time.Time")).
		Return(record, nil).Once()

	h := commands.NewEnqueueTripExecutionCommandHandler(factory, executionRepo)
	got, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, got.JobID().IsEqual(record.JobID()))
	repo.AssertExpectations(t)
	executionRepo.AssertExpectations(t)
}

func TestEnqueueTripExecutionCommandHandler_Handle_TripNotFound(t *testing.T) {
	ctx := t.Context()
	tripID := kernel.NewUUID()
	cmd, err := commands.NewEnqueueTripExecutionCommand(tripID)
	require.NoError(t, err)

	repo := new(MockTripRepository)
	uow := new(MockTripUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TripRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, tripID).
			Return(nil, errs.NewObjectNotFoundError("trip", tripID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTripUoWFactory)
	factory.On("Create").Return(uow).Once()

	executionRepo := new(MockExecutionRepository)

	h := commands.NewEnqueueTripExecutionCommandHandler(factory, executionRepo)
	_, err = h.Handle(ctx, cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	executionRepo.AssertNotCalled(t, "Upsert")
}

func TestEnqueueTripExecutionCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	factory := new(MockTripUoWFactory)
	executionRepo := new(MockExecutionRepository)

	h := commands.NewEnqueueTripExecutionCommandHandler(factory, executionRepo)
	_, err := h.Handle(ctx, commands.EnqueueTripExecutionCommand{})

	require.Error(t, err)
}
