package trip_test

import (
	"fmt"
	"testing"
	"time"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderAtStop(t *testing.T, stopNumber int) *trip.Order {
	t.Helper()
	order, err := trip.NewOrder(
		kernel.NewUUID(),
		fmt.Sprintf("ORD-%d", stopNumber),
		stopNumber,
		"quarantine",
		"VENDOR-LIC-42",
		[]trip.UnitLine{mustUnitLine(t, "6853296789574115", 10)},
	)
	require.NoError(t, err)
	return order
}

func newTestTrip(t *testing.T, orders ...*trip.Order) *trip.Trip {
	t.Helper()
	if len(orders) == 0 {
		orders = []*trip.Order{newTestOrderAtStop(t, 1)}
	}
	tr, err := trip.NewTrip(kernel.NewUUID(), "EMP-1", "EMP-2", "VEH-9", orders, nil)
	require.NoError(t, err)
	return tr
}

func TestNewTrip(t *testing.T) {
	t.Run("creates a trip that has never run", func(t *testing.T) {
		tr := newTestTrip(t)

		assert.Equal(t, trip.ExecutionStatusNotStarted, tr.ExecutionStatus())
		assert.Nil(t, tr.TransactedAt())
		assert.NoError(t, tr.Validate())
	})

	t.Run("second driver is optional", func(t *testing.T) {
		tr, err := trip.NewTrip(kernel.NewUUID(), "EMP-1", "", "VEH-9",
			[]*trip.Order{newTestOrderAtStop(t, 1)}, nil)

		require.NoError(t, err)
		assert.Empty(t, tr.SecondDriverID())
	})

	t.Run("requires a driver, a vehicle and orders", func(t *testing.T) {
		orders := []*trip.Order{newTestOrderAtStop(t, 1)}

		_, err := trip.NewTrip(kernel.NewUUID(), "", "", "VEH-9", orders, nil)
		assert.Error(t, err)

		_, err = trip.NewTrip(kernel.NewUUID(), "EMP-1", "", "", orders, nil)
		assert.Error(t, err)

		_, err = trip.NewTrip(kernel.NewUUID(), "EMP-1", "", "VEH-9", nil, nil)
		assert.Error(t, err)
	})

	t.Run("caps the number of orders", func(t *testing.T) {
		orders := make([]*trip.Order, 0, trip.MaxOrdersPerTrip+1)
		for i := 0; i < trip.MaxOrdersPerTrip+1; i++ {
			orders = append(orders, newTestOrderAtStop(t, i+1))
		}

		_, err := trip.NewTrip(kernel.NewUUID(), "EMP-1", "", "VEH-9", orders, nil)
		require.Error(t, err)
	})

	t.Run("rejects duplicate route stops", func(t *testing.T) {
		now := time.Now()
		seg1, err := trip.NewRouteSegment(1, now, now.Add(time.Hour), "north route")
		require.NoError(t, err)
		seg2, err := trip.NewRouteSegment(1, now, now.Add(2*time.Hour), "south route")
		require.NoError(t, err)

		_, err = trip.NewTrip(kernel.NewUUID(), "EMP-1", "", "VEH-9",
			[]*trip.Order{newTestOrderAtStop(t, 1)},
			[]trip.RouteSegment{seg1, seg2})
		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var tr trip.Trip
		require.ErrorIs(t, tr.Validate(), trip.ErrTripIsNotConstructed)
	})
}

func TestNewRouteSegment(t *testing.T) {
	now := time.Now()

	t.Run("valid segment", func(t *testing.T) {
		seg, err := trip.NewRouteSegment(2, now, now.Add(time.Hour), "via main street")

		require.NoError(t, err)
		assert.Equal(t, 2, seg.StopNumber())
		assert.Equal(t, "via main street", seg.RouteText())
		assert.NoError(t, seg.Validate())
	})

	t.Run("arrival before departure is rejected", func(t *testing.T) {
		_, err := trip.NewRouteSegment(1, now, now.Add(-time.Minute), "route")
		require.Error(t, err)
	})

	t.Run("stop number must be positive", func(t *testing.T) {
		_, err := trip.NewRouteSegment(0, now, now.Add(time.Hour), "route")
		require.Error(t, err)
	})

	t.Run("route text is required", func(t *testing.T) {
		_, err := trip.NewRouteSegment(1, now, now.Add(time.Hour), "  ")
		require.Error(t, err)
	})
}

func TestTrip_ExecutionLifecycle(t *testing.T) {
	t.Run("begin resets orders and moves to processing", func(t *testing.T) {
		order := newTestOrderAtStop(t, 1)
		tr := newTestTrip(t, order)

		require.NoError(t, order.MarkFailed("previous attempt"))
		require.NoError(t, tr.BeginExecution())

		assert.Equal(t, trip.ExecutionStatusProcessing, tr.ExecutionStatus())
		assert.Equal(t, trip.OrderStatusPending, order.Status())
		assert.Empty(t, order.ErrorMessage())
	})

	t.Run("begin takes over a trip left processing", func(t *testing.T) {
		order := newTestOrderAtStop(t, 1)
		tr := newTestTrip(t, order)

		// A crashed worker leaves the trip in Processing with orders part
		// way through; the next claimed attempt must still be able to run.
		require.NoError(t, tr.BeginExecution())
		require.NoError(t, order.MarkSublotted([]string{"1111111111111111"}))

		require.NoError(t, tr.BeginExecution())
		assert.Equal(t, trip.ExecutionStatusProcessing, tr.ExecutionStatus())
		assert.Equal(t, trip.OrderStatusPending, order.Status())
		assert.Empty(t, order.NewUnitIDs())
	})

	t.Run("finish completes when any order manifested", func(t *testing.T) {
		manifested := newTestOrderAtStop(t, 1)
		failed := newTestOrderAtStop(t, 2)
		tr := newTestTrip(t, manifested, failed)
		now := time.Now()

		require.NoError(t, tr.BeginExecution())
		require.NoError(t, manifested.MarkSublotted([]string{"1111111111111111"}))
		require.NoError(t, manifested.MarkInventoryMoved())
		require.NoError(t, manifested.MarkManifested("MAN-1"))
		require.NoError(t, failed.MarkFailed("barcode not found"))

		require.NoError(t, tr.FinishExecution(now))
		assert.Equal(t, trip.ExecutionStatusCompleted, tr.ExecutionStatus())
		require.NotNil(t, tr.TransactedAt())
		assert.True(t, tr.TransactedAt().Equal(now))
	})

	t.Run("finish fails when no order manifested", func(t *testing.T) {
		order := newTestOrderAtStop(t, 1)
		tr := newTestTrip(t, order)

		require.NoError(t, tr.BeginExecution())
		require.NoError(t, order.MarkFailed("split failed"))

		require.NoError(t, tr.FinishExecution(time.Now()))
		assert.Equal(t, trip.ExecutionStatusFailed, tr.ExecutionStatus())
	})

	t.Run("abort fails regardless of order state", func(t *testing.T) {
		tr := newTestTrip(t)

		require.NoError(t, tr.BeginExecution())
		require.NoError(t, tr.AbortExecution(time.Now()))
		assert.Equal(t, trip.ExecutionStatusFailed, tr.ExecutionStatus())
	})

	t.Run("terminal trip can be re-executed", func(t *testing.T) {
		order := newTestOrderAtStop(t, 1)
		tr := newTestTrip(t, order)

		require.NoError(t, tr.BeginExecution())
		require.NoError(t, order.MarkFailed("transient outage"))
		require.NoError(t, tr.FinishExecution(time.Now()))

		require.NoError(t, tr.BeginExecution())
		assert.Equal(t, trip.ExecutionStatusProcessing, tr.ExecutionStatus())
		assert.Equal(t, trip.OrderStatusPending, order.Status())
	})
}

func TestTrip_OrdersByStop(t *testing.T) {
	stop2a := newTestOrderAtStop(t, 2)
	stop1 := newTestOrderAtStop(t, 1)
	stop2b := newTestOrderAtStop(t, 2)
	tr := newTestTrip(t, stop2a, stop1, stop2b)

	stops, groups := tr.OrdersByStop(tr.Orders())

	require.Equal(t, []int{1, 2}, stops)
	require.Len(t, groups[1], 1)
	require.Len(t, groups[2], 2)
	assert.True(t, groups[1][0].IsEqual(stop1))
	assert.True(t, groups[2][0].IsEqual(stop2a))
	assert.True(t, groups[2][1].IsEqual(stop2b))
}

func TestTrip_SegmentForStop(t *testing.T) {
	now := time.Now()
	planned, err := trip.NewRouteSegment(1, now, now.Add(30*time.Minute), "planned route")
	require.NoError(t, err)

	tr, err := trip.NewTrip(kernel.NewUUID(), "EMP-1", "", "VEH-9",
		[]*trip.Order{newTestOrderAtStop(t, 1), newTestOrderAtStop(t, 2)},
		[]trip.RouteSegment{planned})
	require.NoError(t, err)

	t.Run("returns the planned segment", func(t *testing.T) {
		seg := tr.SegmentForStop(1, now)
		assert.True(t, seg.IsEqual(planned))
	})

	t.Run("synthesizes a segment for unplanned stops", func(t *testing.T) {
		seg := tr.SegmentForStop(2, now)

		assert.Equal(t, 2, seg.StopNumber())
		assert.True(t, seg.Departure().Equal(now))
		assert.True(t, seg.Arrival().Equal(now.Add(time.Hour)))
		assert.Equal(t, "direct route", seg.RouteText())
	})
}

func TestRestoreTrip(t *testing.T) {
	now := time.Now()
	tr, err := trip.RestoreTrip(
		kernel.NewUUID(),
		"EMP-1", "", "VEH-9",
		[]*trip.Order{newTestOrderAtStop(t, 1)},
		nil,
		trip.ExecutionStatusCompleted,
		&now,
	)

	require.NoError(t, err)
	assert.Equal(t, trip.ExecutionStatusCompleted, tr.ExecutionStatus())
	require.NotNil(t, tr.TransactedAt())
	assert.True(t, tr.TransactedAt().Equal(now))
}
