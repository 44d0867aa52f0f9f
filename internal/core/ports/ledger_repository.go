package ports

import (
	"context"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
)

// LedgerRepository stores escrow transactions. Entries are inserted once and
// only PENDING or PROCESSING payments are ever updated.
type LedgerRepository interface {
	// ListByAssignment returns every entry of an assignment, oldest first.
	ListByAssignment(ctx context.Context, assignmentID kernel.UUID) (ledger.Entries, error)

	// Save inserts new entries and updates dirty ones.
	Save(ctx context.Context, entries ledger.Entries) error
}
