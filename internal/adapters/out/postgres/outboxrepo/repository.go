package outboxrepo

import (
	"context"
	"time"

	"parcelshare/internal/adapters/out/postgres/pgerr"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/ports"
	"parcelshare/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormOutboxRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db, now: time.Now}
}

func (r *GormOutboxRepository) Add(ctx context.Context, events ...assignment.Event) error {
	if len(events) == 0 {
		return nil
	}

	now := r.now().UTC()
	dtos := make([]MessageDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, fromDomain(e, now))
	}

	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return pgerr.Translate(err, "outbox", events[0].AssignmentID.String())
	}
	return nil
}

// ClaimDue locks the due rows with FOR UPDATE SKIP LOCKED so parallel
// dispatchers never publish the same message twice.
func (r *GormOutboxRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]ports.OutboxMessage, error) {
	var dtos []MessageDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL AND next_attempt_at <= ?", now).
		Order("next_attempt_at, created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Translate(err, "outbox", "due")
	}

	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		event, id, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, ports.OutboxMessage{ID: id, Event: event, Attempts: dto.Attempts})
	}

	return messages, nil
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID, at time.Time) error {
	return r.update(ctx, id, map[string]any{
		"published_at": at.UTC(),
		"attempts":     gorm.Expr("attempts + 1"),
		"last_error":   "",
	})
}

func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id kernel.UUID, nextAttemptAt time.Time, reason string) error {
	return r.update(ctx, id, map[string]any{
		"next_attempt_at": nextAttemptAt.UTC(),
		"attempts":        gorm.Expr("attempts + 1"),
		"last_error":      reason,
	})
}

func (r *GormOutboxRepository) update(ctx context.Context, id kernel.UUID, values map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ? AND published_at IS NULL", id.Bytes()).
		Updates(values)
	if result.Error != nil {
		return pgerr.Translate(result.Error, "outbox", id.String())
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}
