package trip

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/errs"
)

// MaxOrdersPerTrip caps the number of orders a single trip may carry.
// Larger trips produce remote payloads the tracking system rejects.
const MaxOrdersPerTrip = 20

var (
	// ErrTripIsNotConstructed is returned when a Trip instance was not created
	// through NewTrip or RestoreTrip.
	ErrTripIsNotConstructed = errors.New("Trip must be created via NewTrip constructor")
)

// Trip is the aggregate root for a delivery run: a vehicle, up to two
// drivers, a planned route, and the orders delivered along it.
//
// Trip owns the execution lifecycle. Execution state lives in two places on
// purpose: the trip-level ExecutionStatus answers "how did the last run go"
// for polling clients, while each order's OrderStatus records how far that
// order got. A trip completes when at least one order is manifested; it fails
// only when every order fails or is skipped.
type Trip struct {
	// id is the unique identifier for the trip
	id kernel.UUID

	// primaryDriverID identifies the driver responsible for the run
	primaryDriverID string

	// secondDriverID identifies the optional second driver (empty if none)
	secondDriverID string

	// vehicleID identifies the vehicle used for the run
	vehicleID string

	// orders are the deliveries performed on this trip
	orders []*Order

	// routeSegments describe the planned route, keyed by stop number
	routeSegments []RouteSegment

	// executionStatus is the trip-level outcome of the last execution attempt
	executionStatus ExecutionStatus

	// transactedAt records when the last execution attempt finished
	transactedAt *time.Time

	// isConstructed ensures the trip was created via a constructor
	isConstructed bool
}

// NewTrip creates a new Trip that has never been executed.
//
// Parameters:
//   - id: Unique identifier for the trip (must be valid UUID)
//   - primaryDriverID: Identifier of the responsible driver; required
//   - secondDriverID: Identifier of the second driver; may be empty
//   - vehicleID: Identifier of the vehicle; required
//   - orders: Deliveries on this trip; at least one, at most MaxOrdersPerTrip
//   - routeSegments: Planned route; may be empty, in which case manifest
//     registration falls back to synthetic timing
//
// Returns:
//   - *Trip: The created trip in NotStarted status if all validations pass
//   - error: Validation error if any parameter is invalid
func NewTrip(
	id kernel.UUID,
	primaryDriverID string,
	secondDriverID string,
	vehicleID string,
	orders []*Order,
	routeSegments []RouteSegment,
) (*Trip, error) {
	trip := &Trip{
		executionStatus: ExecutionStatusNotStarted,
		isConstructed:   true,
	}

	if err := errors.Join(
		trip.setID(id),
		trip.setDrivers(primaryDriverID, secondDriverID),
		trip.setVehicleID(vehicleID),
		trip.setOrders(orders),
		trip.setRouteSegments(routeSegments),
	); err != nil {
		return nil, err
	}

	return trip, nil
}

// RestoreTrip reconstructs a Trip from persistence with its execution state.
func RestoreTrip(
	id kernel.UUID,
	primaryDriverID string,
	secondDriverID string,
	vehicleID string,
	orders []*Order,
	routeSegments []RouteSegment,
	executionStatus ExecutionStatus,
	transactedAt *time.Time,
) (*Trip, error) {
	trip, err := NewTrip(id, primaryDriverID, secondDriverID, vehicleID, orders, routeSegments)
	if err != nil {
		return nil, err
	}
	if err := executionStatus.Validate(); err != nil {
		return nil, err
	}

	trip.executionStatus = executionStatus
	trip.transactedAt = transactedAt
	return trip, nil
}

// Validate ensures the Trip instance was properly constructed.
func (t *Trip) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTripIsNotConstructed
	}
	return nil
}

// IsEqual compares two trips by their unique identifiers.
func (t *Trip) IsEqual(other *Trip) bool {
	return other != nil && t.id.IsEqual(other.id)
}

// ID returns the trip's unique identifier.
func (t *Trip) ID() kernel.UUID {
	return t.id
}

// PrimaryDriverID returns the identifier of the responsible driver.
func (t *Trip) PrimaryDriverID() string {
	return t.primaryDriverID
}

// SecondDriverID returns the identifier of the second driver, or an empty
// string when the trip has a single driver.
func (t *Trip) SecondDriverID() string {
	return t.secondDriverID
}

// VehicleID returns the identifier of the vehicle.
func (t *Trip) VehicleID() string {
	return t.vehicleID
}

// Orders returns the trip's orders.
func (t *Trip) Orders() []*Order {
	return t.orders
}

// RouteSegments returns the planned route segments.
func (t *Trip) RouteSegments() []RouteSegment {
	return t.routeSegments
}

// ExecutionStatus returns the trip-level execution status.
func (t *Trip) ExecutionStatus() ExecutionStatus {
	return t.executionStatus
}

// TransactedAt returns when the last execution attempt finished, or nil if
// the trip has never finished an attempt.
func (t *Trip) TransactedAt() *time.Time {
	return t.transactedAt
}

// BeginExecution moves the trip into Processing and resets every order for a
// fresh attempt. A trip already in Processing is taken over: a crashed
// worker's attempt must not block the next one, and the execution queue
// record guarantees a single active attempt per trip.
func (t *Trip) BeginExecution() error {
	newStatus, err := t.executionStatus.Start()
	if err != nil {
		return err
	}

	t.executionStatus = newStatus
	for _, order := range t.orders {
		order.ResetForExecution()
	}
	return nil
}

// FinishExecution records the outcome of an execution attempt: Completed when
// at least one order was manifested, Failed otherwise. The timestamp becomes
// the trip's transaction time.
func (t *Trip) FinishExecution(now time.Time) error {
	anySucceeded := false
	for _, order := range t.orders {
		if order.Status() == OrderStatusManifested {
			anySucceeded = true
			break
		}
	}

	newStatus, err := t.executionStatus.Finish(anySucceeded)
	if err != nil {
		return err
	}

	t.executionStatus = newStatus
	t.transactedAt = &now
	return nil
}

// AbortExecution moves a Processing trip straight to Failed without regard to
// order outcomes. Used when a trip-scoped step, such as authentication,
// fails before any order is attempted.
func (t *Trip) AbortExecution(now time.Time) error {
	newStatus, err := t.executionStatus.Finish(false)
	if err != nil {
		return err
	}

	t.executionStatus = newStatus
	t.transactedAt = &now
	return nil
}

// OrdersByStop groups the given orders by their stop number and returns the
// stop numbers in ascending order alongside the grouping. Manifest
// registration makes one remote call per returned stop.
func (t *Trip) OrdersByStop(orders []*Order) ([]int, map[int][]*Order) {
	groups := make(map[int][]*Order)
	for _, order := range orders {
		groups[order.StopNumber()] = append(groups[order.StopNumber()], order)
	}

	stops := make([]int, 0, len(groups))
	for stop := range groups {
		stops = append(stops, stop)
	}
	sort.Ints(stops)

	return stops, groups
}

// SegmentForStop returns the planned route segment for a stop. When the route
// carries no segment for that stop a synthetic one anchored at now is
// returned, so manifest registration never blocks on missing route data.
func (t *Trip) SegmentForStop(stopNumber int, now time.Time) RouteSegment {
	for _, segment := range t.routeSegments {
		if segment.StopNumber() == stopNumber {
			return segment
		}
	}
	return SyntheticRouteSegment(stopNumber, now)
}

func (t *Trip) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *Trip) setDrivers(primaryDriverID, secondDriverID string) error {
	primaryDriverID = strings.TrimSpace(primaryDriverID)
	if primaryDriverID == "" {
		return errs.NewValueIsRequiredError("primaryDriverId")
	}
	t.primaryDriverID = primaryDriverID
	t.secondDriverID = strings.TrimSpace(secondDriverID)
	return nil
}

func (t *Trip) setVehicleID(vehicleID string) error {
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return errs.NewValueIsRequiredError("vehicleId")
	}
	t.vehicleID = vehicleID
	return nil
}

func (t *Trip) setOrders(orders []*Order) error {
	if len(orders) == 0 {
		return errs.NewValueIsRequiredError("orders")
	}
	if len(orders) > MaxOrdersPerTrip {
		return errs.NewValueIsOutOfRangeError("orders", len(orders), 1, MaxOrdersPerTrip)
	}
	for i, order := range orders {
		if err := order.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("orders",
				fmt.Errorf("order %d: %w", i, err))
		}
	}
	t.orders = orders
	return nil
}

func (t *Trip) setRouteSegments(routeSegments []RouteSegment) error {
	seen := make(map[int]bool, len(routeSegments))
	for i, segment := range routeSegments {
		if err := segment.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("routeSegments",
				fmt.Errorf("segment %d: %w", i, err))
		}
		if seen[segment.StopNumber()] {
			return errs.NewValueIsInvalidErrorWithCause("routeSegments",
				fmt.Errorf("duplicate stop number %d", segment.StopNumber()))
		}
		seen[segment.StopNumber()] = true
	}
	t.routeSegments = routeSegments
	return nil
}
