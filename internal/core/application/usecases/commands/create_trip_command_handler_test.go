package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripmgr/internal/core/application/usecases/commands"
	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"
	"tripmgr/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTripRepository struct{ mock.Mock }

func (m *MockTripRepository) Add(ctx context.Context, aggregate *trip.Trip) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockTripRepository) Update(ctx context.Context, aggregate *trip.Trip) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockTripRepository) UpdateOrder(ctx context.Context, order *trip.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockTripRepository) Get(ctx context.Context, id kernel.UUID) (*trip.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trip.Trip), args.Error(1)
}

type MockTripUoW struct{ mock.Mock }

func (m *MockTripUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTripUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTripUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTripUoW) TripRepository() ports.TripRepository {
	args := m.Called()
	return args.Get(0).(ports.TripRepository)
}

type MockTripUoWFactory struct{ mock.Mock }

func (m *MockTripUoWFactory) Create() commands.TripUoW {
	args := m.Called()
	return args.Get(0).(commands.TripUoW)
}

type MockExecutionRepository struct{ mock.Mock }

func (m *MockExecutionRepository) Upsert(ctx context.Context, tripID kernel.UUID, now time.Time) (*execution.TripExecution, error) {
	args := m.Called(ctx, tripID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*execution.TripExecution), args.Error(1)
}

func (m *MockExecutionRepository) ClaimNextQueued(ctx context.Context, now time.Time) (*execution.TripExecution, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*execution.TripExecution), args.Error(1)
}

func (m *MockExecutionRepository) Update(ctx context.Context, record *execution.TripExecution) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockExecutionRepository) GetByTripID(ctx context.Context, tripID kernel.UUID) (*execution.TripExecution, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*execution.TripExecution), args.Error(1)
}

func (m *MockExecutionRepository) FailStale(ctx context.Context, threshold time.Duration, now time.Time) (int, error) {
	args := m.Called(ctx, threshold, now)
	return args.Int(0), args.Error(1)
}

func TestCreateTripCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateTripCommand(kernel.NewUUID(), "EMP-1", "", "VEH-9", validOrderSpecs(), nil)
	require.NoError(t, err)

	repo := new(MockTripRepository)
	uow := new(MockTripUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TripRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*trip.Trip")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTripUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateTripCommandHandler(factory)
	require.NoError(t, h.Handle(ctx, cmd))
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateTripCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateTripCommand{} // not constructed properly
	factory := new(MockTripUoWFactory)
	h := commands.NewCreateTripCommandHandler(factory)
	require.Error(t, h.Handle(ctx, cmd))
}

func TestCreateTripCommandHandler_Handle_InvalidOrderSpec(t *testing.T) {
	ctx := t.Context()
	specs := validOrderSpecs()
	specs[0].TargetRoom = ""
	cmd, err := commands.NewCreateTripCommand(kernel.NewUUID(), "EMP-1", "", "VEH-9", specs, nil)
	require.NoError(t, err)

	factory := new(MockTripUoWFactory)
	h := commands.NewCreateTripCommandHandler(factory)
	require.Error(t, h.Handle(ctx, cmd))
	factory.AssertNotCalled(t, "Create")
}

func TestCreateTripCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateTripCommand(kernel.NewUUID(), "EMP-1", "", "VEH-9", validOrderSpecs(), nil)
	require.NoError(t, err)

	repo := new(MockTripRepository)
	uow := new(MockTripUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TripRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*trip.Trip")).Return(errors.New("add error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTripUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateTripCommandHandler(factory)
	require.Error(t, h.Handle(ctx, cmd))
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}
