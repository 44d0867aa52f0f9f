package ports

import (
	"context"

	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
)

type DisputeRepository interface {
	Add(ctx context.Context, aggregate *dispute.Dispute) error
	Update(ctx context.Context, aggregate *dispute.Dispute) error
	Get(ctx context.Context, id kernel.UUID) (*dispute.Dispute, error)

	// GetOpenByAssignment returns the unresolved dispute of an assignment or
	// an object not found error.
	GetOpenByAssignment(ctx context.Context, assignmentID kernel.UUID) (*dispute.Dispute, error)
}
