// Package executionrepo provides data transfer objects and mapping functions
// for trip execution records. The table doubles as the work queue for the
// background worker: the unique index on trip_id enforces exactly one record
// per trip, which is what the upsert semantics rely on.
package executionrepo

import (
	"time"

	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// TripExecutionDTO represents the database structure for execution records.
type TripExecutionDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID          uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	JobID           uuid.UUID `gorm:"type:uuid"`
	Status          int       `gorm:"index"`
	ProgressMessage string
	GeneralError    string
	Attempts        int
	QueuedAt        time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// TableName specifies the database table name for execution records.
func (TripExecutionDTO) TableName() string {
	return "trip_executions"
}

// fromDomain converts an execution record to its database representation.
func fromDomain(record *execution.TripExecution) TripExecutionDTO {
	return TripExecutionDTO{
		ID:              record.ID().Bytes(),
		TripID:          record.TripID().Bytes(),
		JobID:           record.JobID().Bytes(),
		Status:          int(record.Status()),
		ProgressMessage: record.ProgressMessage(),
		GeneralError:    record.GeneralError(),
		Attempts:        record.Attempts(),
		QueuedAt:        record.QueuedAt(),
		StartedAt:       record.StartedAt(),
		CompletedAt:     record.CompletedAt(),
	}
}

// toDomain converts a database DTO back to the domain record.
func toDomain(dto TripExecutionDTO) (*execution.TripExecution, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	tripID, err := kernel.UUIDFromBytes(dto.TripID[:])
	if err != nil {
		return nil, err
	}
	jobID, err := kernel.UUIDFromBytes(dto.JobID[:])
	if err != nil {
		return nil, err
	}

	return execution.RestoreTripExecution(
		id,
		tripID,
		jobID,
		execution.Status(dto.Status),
		dto.ProgressMessage,
		dto.GeneralError,
		dto.Attempts,
		dto.QueuedAt,
		dto.StartedAt,
		dto.CompletedAt,
	)
}
