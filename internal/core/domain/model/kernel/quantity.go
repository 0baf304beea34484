package kernel

import (
	"fmt"
	"math"

	"tripmgr/internal/pkg/errs"
)

// ErrQuantityIsNotConstructed indicates that a Quantity was not created via NewQuantity.
var ErrQuantityIsNotConstructed = errs.NewValueIsRequiredError("Quantity must be created via NewQuantity")

// Quantity is a value object for the amount of an inventory unit to split off.
// The tracking system requires strictly positive amounts; zero, negative and
// non-finite values are rejected locally so they never reach a remote call.
type Quantity struct {
	value float64

	guard ConstructorGuard
}

// NewQuantity creates a Quantity from a numeric amount.
// Returns a ValueIsInvalidError if the amount is not a positive finite number.
func NewQuantity(value float64) (Quantity, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return Quantity{}, errs.NewValueIsInvalidError("quantity")
	}

	return Quantity{value: value, guard: NewConstructorGuard()}, nil
}

// Value returns the numeric amount.
func (q Quantity) Value() float64 {
	return q.value
}

// String formats the amount the way the tracking API expects it, with two
// decimal places (e.g. "693.00").
func (q Quantity) String() string {
	return fmt.Sprintf("%.2f", q.value)
}

// Validate ensures the Quantity was created through NewQuantity.
func (q Quantity) Validate() error {
	return q.guard.Validate(ErrQuantityIsNotConstructed)
}
