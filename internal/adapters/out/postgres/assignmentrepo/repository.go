package assignmentrepo

import (
	"context"
	"errors"
	"time"

	"parcelshare/internal/adapters/out/postgres/pgerr"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormAssignmentRepository struct {
	db *gorm.DB
}

func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "assignment", aggregate.ID().String())
	}

	return nil
}

// Update writes every column when the stored version still matches, then
// bumps the version of the aggregate.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version++
	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, "assignment", aggregate.ID().String())
	}

	if result.RowsAffected == 0 {
		return errs.NewConcurrentModificationError("assignment", aggregate.ID().String())
	}

	aggregate.IncrementVersion()
	return nil
}

func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", id.String())
		}
		return nil, pgerr.Translate(err, "assignment", id.String())
	}

	return toDomain(dto)
}

// ListIdleSince returns PROPOSED and NEGOTIATING assignments with no gateway
// call in flight whose last change is older than cutoff, oldest first.
func (r *GormAssignmentRepository) ListIdleSince(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("status IN ?", []string{assignment.Proposed.String(), assignment.Negotiating.String()}).
		Where("pending_operation = ?", assignment.OperationNone.String()).
		Where("updated_at < ?", cutoff).
		Order("updated_at").
		Limit(limit).
		Pluck("id", &raw).Error
	if err != nil {
		return nil, err
	}

	return toIDs(raw)
}

// ListStalled returns assignments that still hold a pending gateway
// operation reserved before cutoff, oldest first.
func (r *GormAssignmentRepository) ListStalled(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("pending_operation <> ?", assignment.OperationNone.String()).
		Where("updated_at < ?", cutoff).
		Order("updated_at").
		Limit(limit).
		Pluck("id", &raw).Error
	if err != nil {
		return nil, err
	}

	return toIDs(raw)
}

func toIDs(raw []uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		converted, err := kernel.UUIDFromBytes(id[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, converted)
	}
	return ids, nil
}
