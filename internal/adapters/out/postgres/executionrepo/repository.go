package executionrepo

import (
	"context"
	"errors"
	"time"

	"tripmgr/internal/core/domain/model/execution"
	"tripmgr/internal/core/domain/model/kernel"
	"tripmgr/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = pq.ErrorCode("23505")

// staleExecutionError is the trip-scoped error written to records reclaimed
// by the stale execution reaper.
const staleExecutionError = "execution timed out"

// GormExecutionRepository implements ExecutionRepository using GORM.
//
// Unlike the trip repository it is not part of the unit of work: every method
// manages its own transaction so execution state commits independently of the
// business transaction and stays observable while a run is in flight.
type GormExecutionRepository struct {
	db *gorm.DB
}

// NewGormExecutionRepository creates a new GORM execution repository.
func NewGormExecutionRepository(db *gorm.DB) *GormExecutionRepository {
	return &GormExecutionRepository{db: db}
}

// Upsert creates the execution record for a trip or converges on the existing
// one. The insert is attempted first; when the unique index on trip_id
// rejects it, the existing row is locked and either requeued (terminal
// record) or returned as is (active record). Concurrent callers therefore
// always end up observing the same single record.
func (r *GormExecutionRepository) Upsert(
	ctx context.Context,
	tripID kernel.UUID,
	now time.Time,
) (*execution.TripExecution, error) {
	if err := tripID.Validate(); err != nil {
		return nil, err
	}

	record, err := execution.NewTripExecution(kernel.NewUUID(), tripID, now)
	if err != nil {
		return nil, err
	}

	dto := fromDomain(record)
	err = r.db.WithContext(ctx).Create(&dto).Error
	if err == nil {
		return record, nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil, err
	}

	var result *execution.TripExecution
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing TripExecutionDTO
		lockErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "trip_id = ?", tripID.Bytes()).Error
		if lockErr != nil {
			return lockErr
		}

		existingRecord, restoreErr := toDomain(existing)
		if restoreErr != nil {
			return restoreErr
		}

		if requeueErr := existingRecord.Requeue(now); requeueErr != nil {
			if errors.Is(requeueErr, execution.ErrExecutionStillActive) {
				result = existingRecord
				return nil
			}
			return requeueErr
		}

		if saveErr := saveRecord(tx, existingRecord); saveErr != nil {
			return saveErr
		}

		result = existingRecord
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return result, nil
}

// ClaimNextQueued atomically claims the oldest queued record. The row lock
// with SKIP LOCKED lets multiple workers poll the queue without ever claiming
// the same record twice.
func (r *GormExecutionRepository) ClaimNextQueued(
	ctx context.Context,
	now time.Time,
) (*execution.TripExecution, error) {
	var result *execution.TripExecution
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dto TripExecutionDTO
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", int(execution.StatusQueued)).
			Order("queued_at").
			First(&dto).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewObjectNotFoundError("tripExecution", "next queued")
			}
			return err
		}

		record, err := toDomain(dto)
		if err != nil {
			return err
		}
		if err = record.Start(now); err != nil {
			return err
		}
		if err = saveRecord(tx, record); err != nil {
			return err
		}

		result = record
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return result, nil
}

// Update persists changes to an existing execution record.
func (r *GormExecutionRepository) Update(ctx context.Context, record *execution.TripExecution) error {
	if err := record.Validate(); err != nil {
		return err
	}

	return saveRecord(r.db.WithContext(ctx), record)
}

// GetByTripID retrieves the execution record for a trip.
func (r *GormExecutionRepository) GetByTripID(
	ctx context.Context,
	tripID kernel.UUID,
) (*execution.TripExecution, error) {
	if err := tripID.Validate(); err != nil {
		return nil, err
	}

	var dto TripExecutionDTO
	err := r.db.WithContext(ctx).First(&dto, "trip_id = ?", tripID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("tripExecution", tripID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FailStale marks records that have been processing longer than threshold as
// failed. Recovers the queue after a worker crashes mid-run: the record would
// otherwise stay processing forever and block requeueing.
func (r *GormExecutionRepository) FailStale(
	ctx context.Context,
	threshold time.Duration,
	now time.Time,
) (int, error) {
	cutoff := now.Add(-threshold)
	result := r.db.WithContext(ctx).Model(&TripExecutionDTO{}).
		Where("status = ? AND started_at < ?", int(execution.StatusProcessing), cutoff).
		Updates(map[string]any{
			"status":           int(execution.StatusFailed),
			"progress_message": "failed",
			"general_error":    staleExecutionError,
			"completed_at":     now,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return int(result.RowsAffected), nil
}

// saveRecord writes every mutable column of an execution record.
func saveRecord(db *gorm.DB, record *execution.TripExecution) error {
	dto := fromDomain(record)
	result := db.Model(&TripExecutionDTO{}).
		Where("id = ?", dto.ID).
		Select("job_id", "status", "progress_message", "general_error",
			"attempts", "queued_at", "started_at", "completed_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
