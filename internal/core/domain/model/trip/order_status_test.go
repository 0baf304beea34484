package trip_test

import (
	"testing"

	"tripmgr/internal/core/domain/model/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_String(t *testing.T) {
	tests := []struct {
		status trip.OrderStatus
		want   string
	}{
		{trip.OrderStatusPending, "pending"},
		{trip.OrderStatusSkipped, "skipped"},
		{trip.OrderStatusSublotted, "sublotted"},
		{trip.OrderStatusInventoryMoved, "inventory_moved"},
		{trip.OrderStatusManifested, "manifested"},
		{trip.OrderStatusFailed, "failed"},
		{trip.OrderStatusUnknown, "unknown"},
		{trip.OrderStatus(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestOrderStatus_Validate(t *testing.T) {
	t.Run("valid statuses pass", func(t *testing.T) {
		for _, s := range []trip.OrderStatus{
			trip.OrderStatusPending,
			trip.OrderStatusSkipped,
			trip.OrderStatusSublotted,
			trip.OrderStatusInventoryMoved,
			trip.OrderStatusManifested,
			trip.OrderStatusFailed,
		} {
			assert.NoError(t, s.Validate(), s.String())
		}
	})

	t.Run("unknown and out of range fail", func(t *testing.T) {
		assert.Error(t, trip.OrderStatusUnknown.Validate())
		assert.Error(t, trip.OrderStatus(42).Validate())
	})
}

func TestOrderStatus_Transitions(t *testing.T) {
	t.Run("happy path walks pending to manifested", func(t *testing.T) {
		s := trip.OrderStatusPending

		s, err := s.Sublot()
		require.NoError(t, err)
		assert.Equal(t, trip.OrderStatusSublotted, s)

		s, err = s.Move()
		require.NoError(t, err)
		assert.Equal(t, trip.OrderStatusInventoryMoved, s)

		s, err = s.Manifest()
		require.NoError(t, err)
		assert.Equal(t, trip.OrderStatusManifested, s)
	})

	t.Run("pending can be skipped", func(t *testing.T) {
		s, err := trip.OrderStatusPending.Skip()
		require.NoError(t, err)
		assert.Equal(t, trip.OrderStatusSkipped, s)
	})

	t.Run("every non-terminal status can fail", func(t *testing.T) {
		for _, s := range []trip.OrderStatus{
			trip.OrderStatusPending,
			trip.OrderStatusSublotted,
			trip.OrderStatusInventoryMoved,
		} {
			failed, err := s.Fail()
			require.NoError(t, err, s.String())
			assert.Equal(t, trip.OrderStatusFailed, failed)
		}
	})

	t.Run("terminal statuses cannot fail again", func(t *testing.T) {
		for _, s := range []trip.OrderStatus{
			trip.OrderStatusSkipped,
			trip.OrderStatusManifested,
			trip.OrderStatusFailed,
		} {
			_, err := s.Fail()
			require.Error(t, err, s.String())
		}
	})

	t.Run("illegal jumps are rejected", func(t *testing.T) {
		_, err := trip.OrderStatusPending.Move()
		assert.Error(t, err)

		_, err = trip.OrderStatusPending.Manifest()
		assert.Error(t, err)

		_, err = trip.OrderStatusSublotted.Sublot()
		assert.Error(t, err)

		_, err = trip.OrderStatusManifested.Manifest()
		assert.Error(t, err)
	})
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, trip.OrderStatusSkipped.IsTerminal())
	assert.True(t, trip.OrderStatusManifested.IsTerminal())
	assert.True(t, trip.OrderStatusFailed.IsTerminal())

	assert.False(t, trip.OrderStatusPending.IsTerminal())
	assert.False(t, trip.OrderStatusSublotted.IsTerminal())
	assert.False(t, trip.OrderStatusInventoryMoved.IsTerminal())
}

func TestExecutionStatus_StartAndFinish(t *testing.T) {
	t.Run("not started can start", func(t *testing.T) {
		s, err := trip.ExecutionStatusNotStarted.Start()
		require.NoError(t, err)
		assert.Equal(t, trip.ExecutionStatusProcessing, s)
	})

	t.Run("terminal statuses can restart", func(t *testing.T) {
		for _, s := range []trip.ExecutionStatus{
			trip.ExecutionStatusCompleted,
			trip.ExecutionStatusFailed,
		} {
			restarted, err := s.Start()
			require.NoError(t, err, s.String())
			assert.Equal(t, trip.ExecutionStatusProcessing, restarted)
		}
	})

	t.Run("processing can start again after a crashed attempt", func(t *testing.T) {
		restarted, err := trip.ExecutionStatusProcessing.Start()
		require.NoError(t, err)
		assert.Equal(t, trip.ExecutionStatusProcessing, restarted)
	})

	t.Run("finish depends on order outcomes", func(t *testing.T) {
		s, err := trip.ExecutionStatusProcessing.Finish(true)
		require.NoError(t, err)
		assert.Equal(t, trip.ExecutionStatusCompleted, s)

		s, err = trip.ExecutionStatusProcessing.Finish(false)
		require.NoError(t, err)
		assert.Equal(t, trip.ExecutionStatusFailed, s)
	})

	t.Run("only processing can finish", func(t *testing.T) {
		_, err := trip.ExecutionStatusNotStarted.Finish(true)
		require.Error(t, err)
	})
}
