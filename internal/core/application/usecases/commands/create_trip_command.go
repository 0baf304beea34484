package commands

import (
	"errors"
	"time"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/guard"
)

var (
	ErrCreateTripCommandIsNotConstructed = errors.New(
		"CreateTripCommand must be created via NewCreateTripCommand constructor",
	)
	ErrPrimaryDriverIsRequired = errors.New("primary driver is required")
	ErrVehicleIsRequired       = errors.New("vehicle is required")
	ErrOrdersAreRequired       = errors.New("at least one order is required")
)

// OrderLineSpec is one inventory line of an order as supplied by the caller.
type OrderLineSpec struct {
	UnitID   string
	Quantity float64
}

// OrderSpec describes one order of the trip as supplied by the caller.
// Full validation happens when the domain order is constructed.
type OrderSpec struct {
	OrderRef      string
	StopNumber    int
	TargetRoom    string
	VendorLicense string
	Lines         []OrderLineSpec
}

// RouteSegmentSpec describes one planned route stop as supplied by the caller.
type RouteSegmentSpec struct {
	StopNumber int
	Departure  time.Time
	Arrival    time.Time
	RouteText  string
}

// CreateTripCommand represents a request to register a new trip with its
// orders and planned route. The trip starts in NotStarted execution status;
// executing it is a separate command.
//
// Example:
//
//	tripID := kernel.NewUUID()
//	cmd, err := NewCreateTripCommand(tripID, "EMP-1", "", "VEH-9", orders, segments)
//	if err != nil {
//	    return fmt.Errorf("invalid trip data: %w", err)
//	}
//
//	handler := NewCreateTripCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create trip: %w", err)
//	}
type CreateTripCommand struct { //nolint:recvcheck //using for validation
	tripID          kernel.UUID
	primaryDriverID string
	secondDriverID  string
	vehicleID       string
	orders          []OrderSpec
	routeSegments   []RouteSegmentSpec

	guard guard.ConstructorGuard
}

// NewCreateTripCommand creates a command to register a new trip.
// Validates that the trip ID is valid, the crew and vehicle are present and
// at least one order is supplied. Order contents are validated by the domain
// model when the handler builds the aggregate.
func NewCreateTripCommand(
	tripID kernel.UUID,
	primaryDriverID string,
	secondDriverID string,
	vehicleID string,
	orders []OrderSpec,
	routeSegments []RouteSegmentSpec,
) (CreateTripCommand, error) {
	tripCommand := CreateTripCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		tripCommand.setTripID(tripID),
		tripCommand.setCrew(primaryDriverID, secondDriverID),
		tripCommand.setVehicleID(vehicleID),
		tripCommand.setOrders(orders),
	); err != nil {
		return CreateTripCommand{}, err
	}
	tripCommand.routeSegments = routeSegments

	return tripCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateTripCommand) Validate() error {
	return c.guard.Validate(ErrCreateTripCommandIsNotConstructed)
}

// TripID returns the unique identifier for the trip.
func (c CreateTripCommand) TripID() kernel.UUID {
	return c.tripID
}

// PrimaryDriverID returns the identifier of the responsible driver.
func (c CreateTripCommand) PrimaryDriverID() string {
	return c.primaryDriverID
}

// SecondDriverID returns the identifier of the second driver, if any.
func (c CreateTripCommand) SecondDriverID() string {
	return c.secondDriverID
}

// VehicleID returns the identifier of the vehicle.
func (c CreateTripCommand) VehicleID() string {
	return c.vehicleID
}

// Orders returns the order specifications.
func (c CreateTripCommand) Orders() []OrderSpec {
	return c.orders
}

// RouteSegments returns the planned route specifications.
func (c CreateTripCommand) RouteSegments() []RouteSegmentSpec {
	return c.routeSegments
}

func (c *CreateTripCommand) setTripID(tripID kernel.UUID) error {
	if err := tripID.Validate(); err != nil {
		return err
	}

	c.tripID = tripID
	return nil
}

func (c *CreateTripCommand) setCrew(primaryDriverID, secondDriverID string) error {
	if primaryDriverID == "" {
		return ErrPrimaryDriverIsRequired
	}

	c.primaryDriverID = primaryDriverID
	c.secondDriverID = secondDriverID
	return nil
}

func (c *CreateTripCommand) setVehicleID(vehicleID string) error {
	if vehicleID == "" {
		return ErrVehicleIsRequired
	}

	c.vehicleID = vehicleID
	return nil
}

func (c *CreateTripCommand) setOrders(orders []OrderSpec) error {
	if len(orders) == 0 {
		return ErrOrdersAreRequired
	}

	c.orders = orders
	return nil
}
