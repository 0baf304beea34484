package trip_test

import (
	"testing"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUnitLine(t *testing.T, unitID string, quantity float64) trip.UnitLine {
	t.Helper()
	line, err := trip.NewUnitLine(unitID, quantity)
	require.NoError(t, err)
	return line
}

func newTestOrder(t *testing.T) *trip.Order {
	t.Helper()
	order, err := trip.NewOrder(
		kernel.NewUUID(),
		"ORD-1001",
		1,
		"quarantine",
		"VENDOR-LIC-42",
		[]trip.UnitLine{mustUnitLine(t, "6853296789574115", 10)},
	)
	require.NoError(t, err)
	return order
}

func TestNewUnitLine(t *testing.T) {
	t.Run("keeps raw identifier and quantity", func(t *testing.T) {
		line, err := trip.NewUnitLine("6853296789574115", 2.5)

		require.NoError(t, err)
		assert.Equal(t, "6853296789574115", line.UnitID())
		assert.InDelta(t, 2.5, line.Quantity(), 0.0001)
		assert.True(t, line.HasValidUnitID())
	})

	t.Run("accepts malformed identifiers for later filtering", func(t *testing.T) {
		line, err := trip.NewUnitLine("bad-id", 1)

		require.NoError(t, err)
		assert.False(t, line.HasValidUnitID())
	})

	t.Run("accepts non-positive quantity for later validation", func(t *testing.T) {
		_, err := trip.NewUnitLine("6853296789574115", 0)
		require.NoError(t, err)
	})

	t.Run("rejects empty identifier", func(t *testing.T) {
		_, err := trip.NewUnitLine("   ", 1)
		require.Error(t, err)
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("creates a pending order", func(t *testing.T) {
		order := newTestOrder(t)

		assert.Equal(t, trip.OrderStatusPending, order.Status())
		assert.Empty(t, order.ErrorMessage())
		assert.Empty(t, order.ManifestID())
		assert.Empty(t, order.NewUnitIDs())
		assert.NoError(t, order.Validate())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		id := kernel.NewUUID()
		lines := []trip.UnitLine{mustUnitLine(t, "6853296789574115", 1)}

		_, err := trip.NewOrder(kernel.UUID{}, "ORD-1", 1, "room", "LIC", lines)
		assert.Error(t, err)

		_, err = trip.NewOrder(id, "", 1, "room", "LIC", lines)
		assert.Error(t, err)

		_, err = trip.NewOrder(id, "ORD-1", 0, "room", "LIC", lines)
		assert.Error(t, err)

		_, err = trip.NewOrder(id, "ORD-1", 1, "", "LIC", lines)
		assert.Error(t, err)

		_, err = trip.NewOrder(id, "ORD-1", 1, "room", "", lines)
		assert.Error(t, err)

		_, err = trip.NewOrder(id, "ORD-1", 1, "room", "LIC", nil)
		assert.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var order trip.Order
		require.ErrorIs(t, order.Validate(), trip.ErrOrderIsNotConstructed)
	})
}

func TestOrder_ValidLines(t *testing.T) {
	order, err := trip.NewOrder(
		kernel.NewUUID(),
		"ORD-1002",
		1,
		"quarantine",
		"VENDOR-LIC-42",
		[]trip.UnitLine{
			mustUnitLine(t, "6853296789574115", 10),
			mustUnitLine(t, "bad-id", 5),
			mustUnitLine(t, "1234567890123456", 3),
		},
	)
	require.NoError(t, err)

	valid := order.ValidLines()
	require.Len(t, valid, 2)
	assert.Equal(t, "6853296789574115", valid[0].UnitID())
	assert.Equal(t, "1234567890123456", valid[1].UnitID())
}

func TestOrder_Lifecycle(t *testing.T) {
	t.Run("happy path through manifested", func(t *testing.T) {
		order := newTestOrder(t)

		require.NoError(t, order.MarkSublotted([]string{"1111111111111111"}))
		assert.Equal(t, trip.OrderStatusSublotted, order.Status())
		assert.Equal(t, []string{"1111111111111111"}, order.NewUnitIDs())

		require.NoError(t, order.MarkInventoryMoved())
		assert.Equal(t, trip.OrderStatusInventoryMoved, order.Status())

		require.NoError(t, order.MarkManifested("MAN-77"))
		assert.Equal(t, trip.OrderStatusManifested, order.Status())
		assert.Equal(t, "MAN-77", order.ManifestID())
	})

	t.Run("skip records no outcome", func(t *testing.T) {
		order := newTestOrder(t)

		require.NoError(t, order.MarkSkipped())
		assert.Equal(t, trip.OrderStatusSkipped, order.Status())
		assert.Empty(t, order.NewUnitIDs())
	})

	t.Run("fail records the error text", func(t *testing.T) {
		order := newTestOrder(t)

		require.NoError(t, order.MarkFailed("barcode not found"))
		assert.Equal(t, trip.OrderStatusFailed, order.Status())
		assert.Equal(t, "barcode not found", order.ErrorMessage())
	})

	t.Run("sublot requires new unit ids", func(t *testing.T) {
		order := newTestOrder(t)
		require.Error(t, order.MarkSublotted(nil))
	})

	t.Run("manifest requires an id", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.MarkSublotted([]string{"1111111111111111"}))
		require.NoError(t, order.MarkInventoryMoved())
		require.Error(t, order.MarkManifested("  "))
	})

	t.Run("illegal transitions are rejected", func(t *testing.T) {
		order := newTestOrder(t)

		require.Error(t, order.MarkInventoryMoved())
		require.Error(t, order.MarkManifested("MAN-1"))

		require.NoError(t, order.MarkSkipped())
		require.Error(t, order.MarkFailed("late failure"))
	})
}

func TestOrder_ResetForExecution(t *testing.T) {
	order := newTestOrder(t)

	require.NoError(t, order.MarkFailed("split failed"))
	order.ResetForExecution()

	assert.Equal(t, trip.OrderStatusPending, order.Status())
	assert.Empty(t, order.ErrorMessage())
	assert.Empty(t, order.ManifestID())
	assert.Empty(t, order.NewUnitIDs())
}

func TestRestoreOrder(t *testing.T) {
	t.Run("restores execution outcome", func(t *testing.T) {
		id := kernel.NewUUID()
		order, err := trip.RestoreOrder(
			id,
			"ORD-1003",
			2,
			"quarantine",
			"VENDOR-LIC-42",
			[]trip.UnitLine{mustUnitLine(t, "6853296789574115", 10)},
			trip.OrderStatusManifested,
			"",
			"MAN-12",
			[]string{"1111111111111111"},
		)

		require.NoError(t, err)
		assert.True(t, order.ID().IsEqual(id))
		assert.Equal(t, trip.OrderStatusManifested, order.Status())
		assert.Equal(t, "MAN-12", order.ManifestID())
		assert.Equal(t, []string{"1111111111111111"}, order.NewUnitIDs())
	})

	t.Run("rejects invalid restored status", func(t *testing.T) {
		_, err := trip.RestoreOrder(
			kernel.NewUUID(),
			"ORD-1004",
			1,
			"quarantine",
			"VENDOR-LIC-42",
			[]trip.UnitLine{mustUnitLine(t, "6853296789574115", 10)},
			trip.OrderStatus(42),
			"", "", nil,
		)
		require.Error(t, err)
	})
}
