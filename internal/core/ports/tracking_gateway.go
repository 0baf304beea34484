package ports

import (
	"context"
	"errors"
	"time"
)

// SessionError is implemented by gateway errors that mean the session (or the
// credentials behind it) is unusable. Such an error aborts the whole trip:
// no order can proceed without a session.
type SessionError interface {
	error
	SessionInvalid() bool
}

// IsSessionError reports whether err carries a SessionError in its chain.
func IsSessionError(err error) bool {
	var s SessionError
	return errors.As(err, &s) && s.SessionInvalid()
}

// SplitItem is one split request line: take quantity off the parent unit and
// create a new child unit for it.
type SplitItem struct {
	UnitID   string
	Quantity float64
}

// MoveItem relocates one inventory unit into a room.
type MoveItem struct {
	UnitID string
	Room   string
}

// ManifestRequest describes one transfer manifest: the units leaving on a
// route stop, who receives them and the planned timing of the leg.
type ManifestRequest struct {
	// VendorLicense identifies the receiving counterparty.
	VendorLicense string

	// StopNumber is the 1-based position of the stop in the route.
	StopNumber int

	// UnitIDs are the inventory units covered by the manifest.
	UnitIDs []string

	// Departure and Arrival are the planned timing of the leg.
	Departure time.Time
	Arrival   time.Time

	// RouteText is the human-readable route description.
	RouteText string

	// DriverID and SecondDriverID identify the crew; SecondDriverID may be
	// empty.
	DriverID       string
	SecondDriverID string

	// VehicleID identifies the vehicle.
	VehicleID string
}

// TrackingGateway is the outbound port to the external inventory tracking
// system. Implementations own the credentials, the environment selection and
// the retry policy; callers only see domain-level operations.
//
// Error classification matters to callers: transient failures are retried
// inside the gateway, authentication failures abort the whole trip, and
// semantic rejections fail only the order that caused them. See the trackapi
// adapter for the concrete error types.
type TrackingGateway interface {
	// Authenticate opens a session and returns its identifier.
	Authenticate(ctx context.Context) (string, error)

	// SplitInventory creates new child units from the given parent units.
	// Returns the identifiers of the created units, one per item, in item
	// order.
	SplitInventory(ctx context.Context, sessionID string, items []SplitItem) ([]string, error)

	// MoveInventory relocates units into their rooms.
	MoveInventory(ctx context.Context, sessionID string, items []MoveItem) error

	// RegisterManifest registers a transfer manifest and returns its
	// identifier.
	RegisterManifest(ctx context.Context, sessionID string, manifest ManifestRequest) (string, error)
}
