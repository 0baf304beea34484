package kernel

import (
	"strings"

	"tripmgr/internal/pkg/errs"
)

// unitIDLength is the exact identifier length accepted by the tracking system.
const unitIDLength = 16

// ErrUnitIDIsNotConstructed indicates that a UnitID was not created via NewUnitID.
var ErrUnitIDIsNotConstructed = errs.NewValueIsRequiredError("UnitID must be created via NewUnitID")

// UnitID is a value object for an inventory unit identifier (barcode-like token).
// The tracking system only accepts identifiers that are exactly 16 ASCII digits;
// anything else is rejected before a remote call is ever attempted.
//
// UnitID is immutable. The zero value is invalid and must be constructed
// through NewUnitID.
type UnitID struct {
	value string

	guard ConstructorGuard
}

// NewUnitID creates a UnitID from its raw string form.
// Surrounding whitespace is trimmed before validation.
//
// Returns a ValueIsInvalidError if the identifier is not exactly 16 digits.
func NewUnitID(raw string) (UnitID, error) {
	trimmed := strings.TrimSpace(raw)
	if !isAllDigits(trimmed) || len(trimmed) != unitIDLength {
		return UnitID{}, errs.NewValueIsInvalidError("unitId")
	}

	return UnitID{value: trimmed, guard: NewConstructorGuard()}, nil
}

// IsValidUnitID reports whether raw would be accepted by NewUnitID.
func IsValidUnitID(raw string) bool {
	_, err := NewUnitID(raw)
	return err == nil
}

// String returns the identifier in its wire form.
func (u UnitID) String() string {
	return u.value
}

// Validate ensures the UnitID was created through NewUnitID.
func (u UnitID) Validate() error {
	return u.guard.Validate(ErrUnitIDIsNotConstructed)
}

// IsEqual compares two unit identifiers.
func (u UnitID) IsEqual(other UnitID) bool {
	return u.value == other.value
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
