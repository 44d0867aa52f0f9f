package ledgerrepo

import (
	"context"

	"parcelshare/internal/adapters/out/postgres/pgerr"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/pkg/errs"

	"gorm.io/gorm"
)

type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

func (r *GormLedgerRepository) ListByAssignment(ctx context.Context, assignmentID kernel.UUID) (ledger.Entries, error) {
	if err := assignmentID.Validate(); err != nil {
		return nil, err
	}

	var dtos []TransactionDTO
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID.Bytes()).
		Order("created_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Translate(err, "ledger", assignmentID.String())
	}

	entries := make(ledger.Entries, 0, len(dtos))
	for _, dto := range dtos {
		t, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}

	return entries, nil
}

// Save inserts new entries and rewrites dirty ones. Rows that already reached
// a final status are never touched again.
func (r *GormLedgerRepository) Save(ctx context.Context, entries ledger.Entries) error {
	for _, t := range entries {
		dto := fromDomain(t)

		switch {
		case t.IsNew():
			if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
				return pgerr.Translate(err, "ledger transaction", t.ID().String())
			}
		case t.IsDirty():
			result := r.db.WithContext(ctx).
				Model(&TransactionDTO{}).
				Where("id = ? AND status IN ?", dto.ID, []string{
					string(ledger.StatusPending), string(ledger.StatusProcessing),
				}).
				Select("status", "platform_fee_minor", "gateway_fee_minor", "net_amount_minor",
					"gateway_txn_id", "failure", "processed_at").
				Updates(&dto)
			if result.Error != nil {
				return pgerr.Translate(result.Error, "ledger transaction", t.ID().String())
			}
			if result.RowsAffected == 0 {
				return errs.NewConcurrentModificationError("ledger transaction", t.ID().String())
			}
		default:
			continue
		}

		t.MarkPersisted()
	}

	return nil
}
