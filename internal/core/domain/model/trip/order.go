package trip

import (
	"errors"
	"fmt"
	"strings"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// UnitLine is one inventory line of an order: a raw unit identifier and the
// quantity to split off of it.
//
// The identifier is kept in its raw form on purpose. Orders arrive from
// upstream systems with identifiers of varying quality, and the decision to
// skip invalid ones is made during execution, not at construction time.
// Quantity is validated during execution for the same reason: a non-positive
// quantity fails the order locally instead of rejecting the whole trip.
type UnitLine struct {
	unitID   string
	quantity float64

	guard kernel.ConstructorGuard
}

// NewUnitLine creates a UnitLine. The unit identifier must be non-empty after
// trimming; everything else is checked at execution time.
func NewUnitLine(unitID string, quantity float64) (UnitLine, error) {
	unitID = strings.TrimSpace(unitID)
	if unitID == "" {
		return UnitLine{}, errs.NewValueIsRequiredError("unitId")
	}

	return UnitLine{
		unitID:   unitID,
		quantity: quantity,
		guard:    kernel.NewConstructorGuard(),
	}, nil
}

// UnitID returns the raw inventory unit identifier.
func (l UnitLine) UnitID() string { return l.unitID }

// Quantity returns the requested split quantity.
func (l UnitLine) Quantity() float64 { return l.quantity }

// HasValidUnitID reports whether the line's identifier would be accepted by
// the tracking system.
func (l UnitLine) HasValidUnitID() bool {
	return kernel.IsValidUnitID(l.unitID)
}

// Validate ensures the UnitLine was created through NewUnitLine.
func (l UnitLine) Validate() error {
	return l.guard.Validate(errs.NewValueIsRequiredError("unitLine"))
}

// Order is one delivery order on a trip. It is the unit of partial failure
// during trip execution: each order advances through its own status machine
// and one order failing never stops its siblings.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a non-empty external reference
//   - Must carry at least one unit line
//   - Stop number must reference a position on the trip's route
//   - Status transitions follow the rules enforced by OrderStatus
//
// The outcome of remote calls is recorded on the order itself: identifiers of
// the units created by a split, the registered manifest id, or the error text
// of the step that failed.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// orderRef is the external order number shown to operators
	orderRef string

	// stopNumber is the route stop this order is delivered at
	stopNumber int

	// targetRoom is the destination room new units are moved into
	targetRoom string

	// vendorLicense identifies the receiving counterparty
	vendorLicense string

	// lines are the inventory lines to split and move
	lines []UnitLine

	// status is the current position in the execution lifecycle
	status OrderStatus

	// errorMessage holds the failure text when status is Failed
	errorMessage string

	// manifestID is the registered manifest identifier when status is Manifested
	manifestID string

	// newUnitIDs are the identifiers created by a successful split
	newUnitIDs []string

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order in Pending status.
//
// Parameters:
//   - id: Unique identifier for the order (must be valid UUID)
//   - orderRef: External order number; required
//   - stopNumber: 1-based route stop this order belongs to
//   - targetRoom: Destination room for the split units; required
//   - vendorLicense: License of the receiving counterparty; required
//   - lines: Inventory lines; at least one is required
//
// Returns:
//   - *Order: The created order if all validations pass
//   - error: Validation error if any parameter is invalid
func NewOrder(
	id kernel.UUID,
	orderRef string,
	stopNumber int,
	targetRoom string,
	vendorLicense string,
	lines []UnitLine,
) (*Order, error) {
	order := &Order{
		status:        OrderStatusPending,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setOrderRef(orderRef),
		order.setStopNumber(stopNumber),
		order.setTargetRoom(targetRoom),
		order.setVendorLicense(vendorLicense),
		order.setLines(lines),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order from persistence, including execution
// outcome fields. It performs the same structural validation as NewOrder and
// additionally validates the restored status.
func RestoreOrder(
	id kernel.UUID,
	orderRef string,
	stopNumber int,
	targetRoom string,
	vendorLicense string,
	lines []UnitLine,
	status OrderStatus,
	errorMessage string,
	manifestID string,
	newUnitIDs []string,
) (*Order, error) {
	order, err := NewOrder(id, orderRef, stopNumber, targetRoom, vendorLicense, lines)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	order.status = status
	order.errorMessage = errorMessage
	order.manifestID = manifestID
	order.newUnitIDs = newUnitIDs
	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// OrderRef returns the external order number.
func (o *Order) OrderRef() string {
	return o.orderRef
}

// StopNumber returns the route stop this order is delivered at.
func (o *Order) StopNumber() int {
	return o.stopNumber
}

// TargetRoom returns the destination room for the split units.
func (o *Order) TargetRoom() string {
	return o.targetRoom
}

// VendorLicense returns the license of the receiving counterparty.
func (o *Order) VendorLicense() string {
	return o.vendorLicense
}

// Lines returns the order's inventory lines.
func (o *Order) Lines() []UnitLine {
	return o.lines
}

// Status returns the order's current execution status.
func (o *Order) Status() OrderStatus {
	return o.status
}

// ErrorMessage returns the failure text of the step that failed, or an empty
// string if the order has not failed.
func (o *Order) ErrorMessage() string {
	return o.errorMessage
}

// ManifestID returns the registered manifest identifier, or an empty string
// if the order has not been manifested.
func (o *Order) ManifestID() string {
	return o.manifestID
}

// NewUnitIDs returns the identifiers of the units created by the split step.
func (o *Order) NewUnitIDs() []string {
	return o.newUnitIDs
}

// ValidLines returns the lines whose unit identifiers the tracking system
// would accept. Lines with malformed identifiers are dropped here and the
// order is skipped entirely when nothing remains.
func (o *Order) ValidLines() []UnitLine {
	valid := make([]UnitLine, 0, len(o.lines))
	for _, line := range o.lines {
		if line.HasValidUnitID() {
			valid = append(valid, line)
		}
	}
	return valid
}

// ResetForExecution returns the order to Pending and clears the outcome of
// any previous attempt. Called at the start of every execution attempt so a
// re-executed trip starts from a clean slate.
func (o *Order) ResetForExecution() {
	o.status = o.status.Reset()
	o.errorMessage = ""
	o.manifestID = ""
	o.newUnitIDs = nil
}

// MarkSkipped records that the order had no valid unit identifiers and no
// remote call was made for it.
func (o *Order) MarkSkipped() error {
	newStatus, err := o.status.Skip()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// MarkSublotted records a successful split and the identifiers of the units
// it created. The number of new units must match the number of requested
// lines, one new unit per line.
func (o *Order) MarkSublotted(newUnitIDs []string) error {
	if len(newUnitIDs) == 0 {
		return errs.NewValueIsRequiredError("newUnitIds")
	}

	newStatus, err := o.status.Sublot()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.newUnitIDs = newUnitIDs
	return nil
}

// MarkInventoryMoved records that the new units were relocated to the
// order's target room.
func (o *Order) MarkInventoryMoved() error {
	newStatus, err := o.status.Move()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// MarkManifested records the identifier of the transfer manifest covering
// this order's units.
func (o *Order) MarkManifested(manifestID string) error {
	if strings.TrimSpace(manifestID) == "" {
		return errs.NewValueIsRequiredError("manifestId")
	}

	newStatus, err := o.status.Manifest()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.manifestID = manifestID
	return nil
}

// MarkFailed records the failure text of the step that failed and moves the
// order into its terminal Failed status.
func (o *Order) MarkFailed(message string) error {
	newStatus, err := o.status.Fail()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.errorMessage = message
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setOrderRef(orderRef string) error {
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return errs.NewValueIsRequiredError("orderRef")
	}
	o.orderRef = orderRef
	return nil
}

func (o *Order) setStopNumber(stopNumber int) error {
	if stopNumber < 1 || stopNumber > maxStopNumber {
		return errs.NewValueIsOutOfRangeError("stopNumber", stopNumber, 1, maxStopNumber)
	}
	o.stopNumber = stopNumber
	return nil
}

func (o *Order) setTargetRoom(targetRoom string) error {
	targetRoom = strings.TrimSpace(targetRoom)
	if targetRoom == "" {
		return errs.NewValueIsRequiredError("targetRoom")
	}
	o.targetRoom = targetRoom
	return nil
}

func (o *Order) setVendorLicense(vendorLicense string) error {
	vendorLicense = strings.TrimSpace(vendorLicense)
	if vendorLicense == "" {
		return errs.NewValueIsRequiredError("vendorLicense")
	}
	o.vendorLicense = vendorLicense
	return nil
}

func (o *Order) setLines(lines []UnitLine) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("lines",
				fmt.Errorf("line %d: %w", i, err))
		}
	}
	o.lines = lines
	return nil
}
