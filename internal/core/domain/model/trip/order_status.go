package trip

import (
	"fmt"

	"tripmgr/internal/pkg/errs"
)

// OrderStatus represents the lifecycle state of a single trip order during
// execution. The machine is linear with early exit on failure:
//
//	Pending ──> Sublotted ──> InventoryMoved ──> Manifested
//	   │                                             (terminal)
//	   ├──> Skipped   (no valid unit ids; terminal)
//	   └──> Failed    (any step; also reachable from Sublotted
//	                   and InventoryMoved; terminal)
//
// A failed or skipped order never contributes its unit ids to a manifest.
// OrderStatus validates every transition so an order can never silently jump
// states, e.g. from Pending straight to Manifested.
type OrderStatus int

const (
	// OrderStatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized OrderStatus values.
	OrderStatusUnknown OrderStatus = iota

	// OrderStatusPending is the initial status of every order at the start
	// of an execution attempt.
	OrderStatusPending

	// OrderStatusSkipped means the order had no valid unit identifiers and
	// no remote call was made for it. Terminal.
	OrderStatusSkipped

	// OrderStatusSublotted means the split call succeeded and new inventory
	// units exist for this order.
	OrderStatusSublotted

	// OrderStatusInventoryMoved means the new units were relocated to the
	// order's target room. Orders in this state contribute to the manifest.
	OrderStatusInventoryMoved

	// OrderStatusManifested means a transfer manifest covering this order's
	// units was registered. Terminal.
	OrderStatusManifested

	// OrderStatusFailed means a step failed; the error text is recorded on
	// the order. Terminal.
	OrderStatusFailed
)

func getOrderStatusStrings() map[OrderStatus]string {
	return map[OrderStatus]string{
		OrderStatusUnknown:        "unknown",
		OrderStatusPending:        "pending",
		OrderStatusSkipped:        "skipped",
		OrderStatusSublotted:      "sublotted",
		OrderStatusInventoryMoved: "inventory_moved",
		OrderStatusManifested:     "manifested",
		OrderStatusFailed:         "failed",
	}
}

func getValidOrderStatusStrings() map[OrderStatus]string {
	//nolint:exhaustive // OrderStatusUnknown is intentionally excluded as it's invalid
	return map[OrderStatus]string{
		OrderStatusPending:        "pending",
		OrderStatusSkipped:        "skipped",
		OrderStatusSublotted:      "sublotted",
		OrderStatusInventoryMoved: "inventory_moved",
		OrderStatusManifested:     "manifested",
		OrderStatusFailed:         "failed",
	}
}

// Validate checks if the OrderStatus value is one of the closed enumeration.
// OrderStatusUnknown (0) and any other values are invalid.
func (s OrderStatus) Validate() error {
	if _, ok := getValidOrderStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("orderStatus",
			fmt.Errorf("%d is not a valid order status", s))
	}
	return nil
}

// String returns the persisted/reported name of the status.
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s OrderStatus) String() string {
	if str, ok := getOrderStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusSkipped || s == OrderStatusManifested || s == OrderStatusFailed
}

// Skip transitions Pending -> Skipped.
// Used when an order has no valid unit identifiers before any remote call.
func (s OrderStatus) Skip() (OrderStatus, error) {
	if s != OrderStatusPending {
		return 0, invalidOrderTransition(s, OrderStatusSkipped)
	}
	return OrderStatusSkipped, nil
}

// Sublot transitions Pending -> Sublotted after a successful split call.
func (s OrderStatus) Sublot() (OrderStatus, error) {
	if s != OrderStatusPending {
		return 0, invalidOrderTransition(s, OrderStatusSublotted)
	}
	return OrderStatusSublotted, nil
}

// Move transitions Sublotted -> InventoryMoved after a successful move call.
func (s OrderStatus) Move() (OrderStatus, error) {
	if s != OrderStatusSublotted {
		return 0, invalidOrderTransition(s, OrderStatusInventoryMoved)
	}
	return OrderStatusInventoryMoved, nil
}

// Manifest transitions InventoryMoved -> Manifested once the order's units
// are part of a registered manifest.
func (s OrderStatus) Manifest() (OrderStatus, error) {
	if s != OrderStatusInventoryMoved {
		return 0, invalidOrderTransition(s, OrderStatusManifested)
	}
	return OrderStatusManifested, nil
}

// Fail transitions any non-terminal status -> Failed.
func (s OrderStatus) Fail() (OrderStatus, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.IsTerminal() {
		return 0, invalidOrderTransition(s, OrderStatusFailed)
	}
	return OrderStatusFailed, nil
}

// Reset transitions any status back to Pending at the start of a new
// execution attempt.
func (s OrderStatus) Reset() OrderStatus {
	return OrderStatusPending
}

func invalidOrderTransition(from, to OrderStatus) error {
	return errs.NewValueIsInvalidErrorWithCause("orderStatus",
		fmt.Errorf("cannot transition from %s to %s", from, to))
}
