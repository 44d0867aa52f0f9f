package ports

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
)

// OutboxMessage is an assignment event waiting to be published.
type OutboxMessage struct {
	ID       kernel.UUID
	Event    assignment.Event
	Attempts int
}

// OutboxRepository stores events in the same transaction as the state change
// that produced them.
type OutboxRepository interface {
	Add(ctx context.Context, events ...assignment.Event) error

	// ClaimDue locks up to limit unpublished messages whose next attempt is
	// due. Rows claimed by another dispatcher are skipped.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]OutboxMessage, error)

	MarkPublished(ctx context.Context, id kernel.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id kernel.UUID, nextAttemptAt time.Time, reason string) error
}
