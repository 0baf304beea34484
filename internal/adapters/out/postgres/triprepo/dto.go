// Package triprepo provides data transfer objects and mapping functions for
// trip persistence. A trip is stored across three tables: the trip row, its
// orders and its route segments. Loading always reassembles the complete
// aggregate.
package triprepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"

	"github.com/google/uuid"
)

// TripDTO represents the database structure for persisting trip aggregates.
type TripDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	PrimaryDriverID string
	SecondDriverID  string
	VehicleID       string
	ExecutionStatus int
	TransactedAt    *time.Time

	Orders        []OrderDTO        `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
	RouteSegments []RouteSegmentDTO `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for trip entities.
func (TripDTO) TableName() string {
	return "trips"
}

// OrderDTO represents one order row of a trip. Inventory lines and the unit
// identifiers produced by a split are stored as jsonb documents: they are
// only ever read back as part of the order, never queried by content.
type OrderDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID        uuid.UUID `gorm:"type:uuid;index"`
	OrderRef      string
	StopNumber    int `gorm:"index"`
	TargetRoom    string
	VendorLicense string
	Lines         UnitLinesDocument  `gorm:"type:jsonb"`
	Status        int                `gorm:"index"`
	ErrorMessage  string
	ManifestID    string
	NewUnitIDs    StringListDocument `gorm:"type:jsonb"`
}

// TableName specifies the database table name for trip order rows.
func (OrderDTO) TableName() string {
	return "trip_orders"
}

// RouteSegmentDTO represents one planned route stop of a trip. Segments are
// value objects keyed by trip and stop number.
type RouteSegmentDTO struct {
	TripID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	StopNumber int       `gorm:"primaryKey"`
	Departure  time.Time
	Arrival    time.Time
	RouteText  string
}

// TableName specifies the database table name for route segment rows.
func (RouteSegmentDTO) TableName() string {
	return "trip_route_segments"
}

// unitLineDocument is the jsonb shape of a single inventory line.
type unitLineDocument struct {
	UnitID   string  `json:"unit_id"`
	Quantity float64 `json:"quantity"`
}

// UnitLinesDocument stores an order's inventory lines as a jsonb column.
type UnitLinesDocument []unitLineDocument

// Value implements driver.Valuer for jsonb persistence.
func (d UnitLinesDocument) Value() (driver.Value, error) {
	if d == nil {
		d = UnitLinesDocument{}
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for jsonb retrieval.
func (d *UnitLinesDocument) Scan(value any) error {
	return scanJSONColumn(value, d)
}

// StringListDocument stores a list of unit identifiers as a jsonb column.
type StringListDocument []string

// Value implements driver.Valuer for jsonb persistence.
func (d StringListDocument) Value() (driver.Value, error) {
	if d == nil {
		d = StringListDocument{}
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for jsonb retrieval.
func (d *StringListDocument) Scan(value any) error {
	return scanJSONColumn(value, d)
}

func scanJSONColumn(value any, target any) error {
	if value == nil {
		return nil
	}

	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, target)
	case string:
		return json.Unmarshal([]byte(raw), target)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}

// fromDomain converts a trip domain aggregate to its database representation,
// including order and route segment child rows.
func fromDomain(aggregate *trip.Trip) TripDTO {
	orders := make([]OrderDTO, 0, len(aggregate.Orders()))
	for _, order := range aggregate.Orders() {
		orders = append(orders, orderFromDomain(aggregate.ID().Bytes(), order))
	}

	segments := make([]RouteSegmentDTO, 0, len(aggregate.RouteSegments()))
	for _, segment := range aggregate.RouteSegments() {
		segments = append(segments, RouteSegmentDTO{
			TripID:     aggregate.ID().Bytes(),
			StopNumber: segment.StopNumber(),
			Departure:  segment.Departure(),
			Arrival:    segment.Arrival(),
			RouteText:  segment.RouteText(),
		})
	}

	return TripDTO{
		ID:              aggregate.ID().Bytes(),
		PrimaryDriverID: aggregate.PrimaryDriverID(),
		SecondDriverID:  aggregate.SecondDriverID(),
		VehicleID:       aggregate.VehicleID(),
		ExecutionStatus: int(aggregate.ExecutionStatus()),
		TransactedAt:    aggregate.TransactedAt(),
		Orders:          orders,
		RouteSegments:   segments,
	}
}

// orderFromDomain converts a single order to its row representation.
func orderFromDomain(tripID uuid.UUID, order *trip.Order) OrderDTO {
	lines := make(UnitLinesDocument, 0, len(order.Lines()))
	for _, line := range order.Lines() {
		lines = append(lines, unitLineDocument{
			UnitID:   line.UnitID(),
			Quantity: line.Quantity(),
		})
	}

	return OrderDTO{
		ID:            order.ID().Bytes(),
		TripID:        tripID,
		OrderRef:      order.OrderRef(),
		StopNumber:    order.StopNumber(),
		TargetRoom:    order.TargetRoom(),
		VendorLicense: order.VendorLicense(),
		Lines:         lines,
		Status:        int(order.Status()),
		ErrorMessage:  order.ErrorMessage(),
		ManifestID:    order.ManifestID(),
		NewUnitIDs:    StringListDocument(order.NewUnitIDs()),
	}
}

// toDomain converts a database DTO to a trip domain aggregate.
// Orders are sorted by stop number, then by order reference, so the aggregate
// processes them in route order regardless of row order.
func toDomain(dto TripDTO) (*trip.Trip, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderDTOs := append([]OrderDTO(nil), dto.Orders...)
	sort.Slice(orderDTOs, func(i, j int) bool {
		if orderDTOs[i].StopNumber != orderDTOs[j].StopNumber {
			return orderDTOs[i].StopNumber < orderDTOs[j].StopNumber
		}
		return orderDTOs[i].OrderRef < orderDTOs[j].OrderRef
	})

	orders := make([]*trip.Order, 0, len(orderDTOs))
	for _, orderDTO := range orderDTOs {
		order, orderErr := orderToDomain(orderDTO)
		if orderErr != nil {
			return nil, orderErr
		}
		orders = append(orders, order)
	}

	segments := make([]trip.RouteSegment, 0, len(dto.RouteSegments))
	for _, segmentDTO := range dto.RouteSegments {
		segment, segmentErr := trip.NewRouteSegment(
			segmentDTO.StopNumber,
			segmentDTO.Departure,
			segmentDTO.Arrival,
			segmentDTO.RouteText,
		)
		if segmentErr != nil {
			return nil, segmentErr
		}
		segments = append(segments, segment)
	}

	return trip.RestoreTrip(
		id,
		dto.PrimaryDriverID,
		dto.SecondDriverID,
		dto.VehicleID,
		orders,
		segments,
		trip.ExecutionStatus(dto.ExecutionStatus),
		dto.TransactedAt,
	)
}

// orderToDomain converts an order row back to the domain entity.
func orderToDomain(dto OrderDTO) (*trip.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	lines := make([]trip.UnitLine, 0, len(dto.Lines))
	for _, lineDoc := range dto.Lines {
		line, lineErr := trip.NewUnitLine(lineDoc.UnitID, lineDoc.Quantity)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return trip.RestoreOrder(
		id,
		dto.OrderRef,
		dto.StopNumber,
		dto.TargetRoom,
		dto.VendorLicense,
		lines,
		trip.OrderStatus(dto.Status),
		dto.ErrorMessage,
		dto.ManifestID,
		[]string(dto.NewUnitIDs),
	)
}
