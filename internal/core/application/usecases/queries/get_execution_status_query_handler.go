package queries

import (
	"context"
	"database/sql"
	"errors"

	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/core/domain/model/trip"
	"tripmgr/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetExecutionStatusQueryHandler reads the execution status document for a
// trip straight from the database.
//
// Example:
//
//	handler := NewGetExecutionStatusQueryHandler(db)
//	query, _ := NewGetExecutionStatusQuery(tripID)
//
//	status, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // trip was never queued for execution
//	}
type GetExecutionStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetExecutionStatusQueryHandler creates a handler for execution status
// queries. Requires a GORM database connection for query execution.
func NewGetExecutionStatusQueryHandler(db *gorm.DB) GetExecutionStatusQueryHandler {
	return GetExecutionStatusQueryHandler{db: db}
}

// Handle executes the query.
// Returns errs.ErrObjectNotFound when the trip was never queued for
// execution. Order rows are sorted by stop number, then by order reference.
func (h GetExecutionStatusQueryHandler) Handle(
	ctx context.Context,
	query GetExecutionStatusQuery,
) (GetExecutionStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetExecutionStatusQueryResponse{}, err
	}

	response, err := h.readExecution(ctx, query.TripID())
	if err != nil {
		return GetExecutionStatusQueryResponse{}, err
	}

	orders, err := h.readOrders(ctx, query.TripID())
	if err != nil {
		return GetExecutionStatusQueryResponse{}, err
	}
	response.Orders = orders

	return response, nil
}

func (h GetExecutionStatusQueryHandler) readExecution(
	ctx context.Context,
	tripID kernel.UUID,
) (GetExecutionStatusQueryResponse, error) {
	var response GetExecutionStatusQueryResponse

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			trip_id,
			job_id,
			status,
			progress_message,
			general_error,
			attempts,
			queued_at,
			started_at,
			completed_at
		FROM trip_executions
		WHERE trip_id = ?
	`, tripID.String()).Row()

	var (
		rawTripID   uuid.UUID
		rawJobID    uuid.UUID
		status      int
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)

	err := row.Scan(
		&rawTripID,
		&rawJobID,
		&status,
		&response.ProgressMessage,
		&response.GeneralError,
		&response.Attempts,
		&response.QueuedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return response, errs.NewObjectNotFoundError("tripExecution", tripID)
		}
		return response, err
	}

	if response.TripID, err = kernel.UUIDFromBytes(rawTripID[:]); err != nil {
		return response, err
	}
	if response.JobID, err = kernel.UUIDFromBytes(rawJobID[:]); err != nil {
		return response, err
	}
	response.Status = execution.Status(status).String()
	if startedAt.Valid {
		t := startedAt.Time
		response.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		response.CompletedAt = &t
	}

	return response, nil
}

func (h GetExecutionStatusQueryHandler) readOrders(
	ctx context.Context,
	tripID kernel.UUID,
) ([]OrderStatusResponse, error) {
	orders := make([]OrderStatusResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			order_ref,
			stop_number,
			status,
			error_message,
			manifest_id
		FROM trip_orders
		WHERE trip_id = ?
		ORDER BY stop_number, order_ref
	`, tripID.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orderResp OrderStatusResponse
		var status int

		err = rows.Scan(
			&orderResp.OrderRef,
			&orderResp.StopNumber,
			&status,
			&orderResp.ErrorMessage,
			&orderResp.ManifestID,
		)
		if err != nil {
			return nil, err
		}

		orderResp.Status = trip.OrderStatus(status).String()
		orders = append(orders, orderResp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
