package ports

import (
	"context"

	"parcelshare/internal/core/domain/model/safety"
)

// SafetyAuditRepository is the append-only log of checklist recordings.
type SafetyAuditRepository interface {
	Append(ctx context.Context, entry safety.AuditEntry) error
}
