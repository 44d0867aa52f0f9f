package ports

import (
	"context"

	"parcelshare/internal/core/domain/model/assignment"
)

// EventPublisher delivers assignment events to the notification system.
type EventPublisher interface {
	Publish(ctx context.Context, event assignment.Event) error
}

// CallbackDeduper remembers gateway callbacks that were already handled.
type CallbackDeduper interface {
	// FirstSeen records key and reports whether it was new.
	FirstSeen(ctx context.Context, key string) (bool, error)

	// Forget drops key so a failed callback can be redelivered.
	Forget(ctx context.Context, key string) error
}
