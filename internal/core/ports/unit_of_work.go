package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary. Transactions run at
// serializable isolation; a serialization failure surfaces as a concurrent
// modification error.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	ParcelRepository() ParcelRepository
	TripRepository() TripRepository
	AssignmentRepository() AssignmentRepository
	LedgerRepository() LedgerRepository
	DisputeRepository() DisputeRepository
	SafetyAuditRepository() SafetyAuditRepository
	OutboxRepository() OutboxRepository
}
