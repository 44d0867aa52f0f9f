package ports

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for assignments.
type AssignmentRepository interface {
	// Add persists a new assignment.
	Add(ctx context.Context, aggregate *assignment.Assignment) error

	// Update writes the assignment guarded by its version:
	//
	//	UPDATE assignments SET ... WHERE id = ? AND version = ?
	//
	// Zero affected rows means another transaction won the race and a
	// concurrent modification error is returned.
	Update(ctx context.Context, aggregate *assignment.Assignment) error

	// Get loads an assignment with SELECT ... FOR UPDATE.
	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// ListIdleSince returns the ids of PROPOSED or NEGOTIATING assignments
	// with no operation in flight that were last touched before cutoff.
	ListIdleSince(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error)

	// ListStalled returns the ids of assignments whose gateway operation
	// has been pending since before cutoff.
	ListStalled(ctx context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error)
}
