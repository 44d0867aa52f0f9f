package disputerepo

import (
	"context"
	"errors"

	"parcelshare/internal/adapters/out/postgres/pgerr"
	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormDisputeRepository struct {
	db *gorm.DB
}

func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

func (r *GormDisputeRepository) Add(ctx context.Context, aggregate *dispute.Dispute) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "dispute", aggregate.ID().String())
	}
	return nil
}

// Update is unguarded: a dispute only changes while its assignment row is
// locked by the same transaction.
func (r *GormDisputeRepository) Update(ctx context.Context, aggregate *dispute.Dispute) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DisputeDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, "dispute", aggregate.ID().String())
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("dispute", aggregate.ID().String())
	}
	return nil
}

func (r *GormDisputeRepository) Get(ctx context.Context, id kernel.UUID) (*dispute.Dispute, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return r.first(ctx, id.String(), "id = ?", id.Bytes())
}

func (r *GormDisputeRepository) GetOpenByAssignment(ctx context.Context, assignmentID kernel.UUID) (*dispute.Dispute, error) {
	if err := assignmentID.Validate(); err != nil {
		return nil, err
	}

	return r.first(ctx, "open for "+assignmentID.String(),
		"assignment_id = ? AND status <> ?", assignmentID.Bytes(), string(dispute.StatusResolved))
}

func (r *GormDisputeRepository) first(ctx context.Context, label string, query string, args ...any) (*dispute.Dispute, error) {
	var dto DisputeDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(query, args...).
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("dispute", label)
		}
		return nil, pgerr.Translate(err, "dispute", label)
	}

	return toDomain(dto)
}
