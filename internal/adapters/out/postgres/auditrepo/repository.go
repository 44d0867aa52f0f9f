package auditrepo

import (
	"context"
	"time"

	"parcelshare/internal/adapters/out/postgres/pgerr"
	"parcelshare/internal/core/domain/model/safety"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEntryDTO is a row of the append-only safety audit log.
type AuditEntryDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentID uuid.UUID `gorm:"type:uuid;index"`
	Event        string    `gorm:"size:16"`
	Item         string    `gorm:"size:32"`
	Previous     bool
	Value        bool
	Correction   bool
	ActorID      uuid.UUID `gorm:"type:uuid"`
	RecordedAt   time.Time
}

func (AuditEntryDTO) TableName() string {
	return "safety_audit"
}

type GormSafetyAuditRepository struct {
	db *gorm.DB
}

func NewGormSafetyAuditRepository(db *gorm.DB) *GormSafetyAuditRepository {
	return &GormSafetyAuditRepository{db: db}
}

func (r *GormSafetyAuditRepository) Append(ctx context.Context, entry safety.AuditEntry) error {
	dto := AuditEntryDTO{
		ID:           entry.ID.Bytes(),
		AssignmentID: entry.AssignmentID.Bytes(),
		Event:        entry.Event.String(),
		Item:         entry.Item.String(),
		Previous:     entry.Previous,
		Value:        entry.Value,
		Correction:   entry.Correction,
		ActorID:      entry.ActorID.Bytes(),
		RecordedAt:   entry.RecordedAt,
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, "safety audit entry", entry.ID.String())
	}
	return nil
}
