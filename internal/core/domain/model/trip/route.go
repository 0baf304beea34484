package trip

import (
	"fmt"
	"strings"
	"time"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/errs"
)

// maxStopNumber bounds route stop positions; routes longer than this are a
// data entry mistake, not a real delivery run.
const maxStopNumber = 100

// ErrRouteSegmentIsNotConstructed indicates that a RouteSegment was not
// created via NewRouteSegment.
var ErrRouteSegmentIsNotConstructed = errs.NewValueIsRequiredError("RouteSegment must be created via NewRouteSegment")

// RouteSegment is a value object describing one stop of a trip's planned
// route: when the vehicle is expected to leave the previous point, when it is
// expected to arrive, and a free-text description of the path driven.
//
// Segments are keyed by stop number. Orders reference the same stop numbers,
// which is how manifest registration finds the timing for a group of orders.
type RouteSegment struct {
	stopNumber int
	departure  time.Time
	arrival    time.Time
	routeText  string

	// guard ensures the value object was created via its constructor
	guard kernel.ConstructorGuard
}

// NewRouteSegment creates a validated RouteSegment.
//
// Parameters:
//   - stopNumber: 1-based position of the stop in the route.
//   - departure: expected departure time for this leg.
//   - arrival: expected arrival time; must not precede departure.
//   - routeText: human-readable route description; required.
func NewRouteSegment(stopNumber int, departure, arrival time.Time, routeText string) (RouteSegment, error) {
	if stopNumber < 1 {
		return RouteSegment{}, errs.NewValueIsOutOfRangeError("stopNumber", stopNumber, 1, maxStopNumber)
	}
	if departure.IsZero() {
		return RouteSegment{}, errs.NewValueIsRequiredError("departure")
	}
	if arrival.IsZero() {
		return RouteSegment{}, errs.NewValueIsRequiredError("arrival")
	}
	if arrival.Before(departure) {
		return RouteSegment{}, errs.NewValueIsInvalidErrorWithCause("arrival",
			fmt.Errorf("arrival %s precedes departure %s", arrival, departure))
	}
	routeText = strings.TrimSpace(routeText)
	if routeText == "" {
		return RouteSegment{}, errs.NewValueIsRequiredError("routeText")
	}

	return RouteSegment{
		stopNumber: stopNumber,
		departure:  departure,
		arrival:    arrival,
		routeText:  routeText,
		guard:      kernel.NewConstructorGuard(),
	}, nil
}

// SyntheticRouteSegment builds a fallback segment for a stop that has no
// planned timing: departure is now, arrival one hour later, with a generic
// route description. Used so manifest registration never blocks on missing
// route data.
func SyntheticRouteSegment(stopNumber int, now time.Time) RouteSegment {
	segment, _ := NewRouteSegment(stopNumber, now, now.Add(time.Hour), "direct route")
	return segment
}

// StopNumber returns the 1-based stop position this segment describes.
func (s RouteSegment) StopNumber() int { return s.stopNumber }

// Departure returns the expected departure time.
func (s RouteSegment) Departure() time.Time { return s.departure }

// Arrival returns the expected arrival time.
func (s RouteSegment) Arrival() time.Time { return s.arrival }

// RouteText returns the human-readable route description.
func (s RouteSegment) RouteText() string { return s.routeText }

// Validate checks that the RouteSegment was properly constructed.
func (s RouteSegment) Validate() error {
	return s.guard.Validate(ErrRouteSegmentIsNotConstructed)
}

// IsEqual compares two segments by all fields.
func (s RouteSegment) IsEqual(other RouteSegment) bool {
	return s.stopNumber == other.stopNumber &&
		s.departure.Equal(other.departure) &&
		s.arrival.Equal(other.arrival) &&
		s.routeText == other.routeText
}
