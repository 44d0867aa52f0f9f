// Package postgres provides the GORM-based Unit of Work over PostgreSQL.
//
// Every unit of work runs one SERIALIZABLE transaction. Repositories obtained
// from it share that transaction, so a package, its trip, its assignment and
// the ledger and outbox rows of a transition commit or roll back together.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	a, err := uow.AssignmentRepository().Get(ctx, id) // SELECT ... FOR UPDATE
//	if err != nil {
//	    return err
//	}
//	// ... mutate a
//	if err := uow.AssignmentRepository().Update(ctx, a); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance owns its transaction and must not be shared
//     between goroutines
//   - Row locks are taken in the order assignment, package, trip
//   - Serialization failures and deadlocks surface as
//     errs.ErrConcurrentModification so callers can retry from a fresh read
package postgres

import (
	"context"
	"database/sql"

	"parcelshare/internal/adapters/out/postgres/assignmentrepo"
	"parcelshare/internal/adapters/out/postgres/auditrepo"
	"parcelshare/internal/adapters/out/postgres/disputerepo"
	"parcelshare/internal/adapters/out/postgres/ledgerrepo"
	"parcelshare/internal/adapters/out/postgres/outboxrepo"
	"parcelshare/internal/adapters/out/postgres/parcelrepo"
	"parcelshare/internal/adapters/out/postgres/pgerr"
	"parcelshare/internal/adapters/out/postgres/triprepo"
	"parcelshare/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Each business operation gets a fresh unit of work with its own transaction.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    return err
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork instance ready for business transaction management.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction across all repositories.
// Outside a transaction the repositories run in autocommit mode, which is
// what read paths such as the stale proposal scan use.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin starts a SERIALIZABLE transaction. Calling Begin twice on the same
// instance is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		return tx.Error
	}

	uow.tx = tx
	return nil
}

// Commit finalizes all changes made within the current transaction.
// A serialization failure at commit is reported as a concurrent modification.
//
// Returns error if no active transaction exists or if the commit operation fails.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return pgerr.Translate(err, "transaction", "commit")
}

// Rollback discards all changes made within the current transaction.
// Returns gorm.ErrInvalidTransaction after Commit, which deferred rollbacks ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) ParcelRepository() ports.ParcelRepository {
	return parcelrepo.NewGormParcelRepository(uow.conn())
}

func (uow *GormUnitOfWork) TripRepository() ports.TripRepository {
	return triprepo.NewGormTripRepository(uow.conn())
}

func (uow *GormUnitOfWork) AssignmentRepository() ports.AssignmentRepository {
	return assignmentrepo.NewGormAssignmentRepository(uow.conn())
}

func (uow *GormUnitOfWork) LedgerRepository() ports.LedgerRepository {
	return ledgerrepo.NewGormLedgerRepository(uow.conn())
}

func (uow *GormUnitOfWork) DisputeRepository() ports.DisputeRepository {
	return disputerepo.NewGormDisputeRepository(uow.conn())
}

func (uow *GormUnitOfWork) SafetyAuditRepository() ports.SafetyAuditRepository {
	return auditrepo.NewGormSafetyAuditRepository(uow.conn())
}

func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// Models lists every table the repositories write, in AutoMigrate order.
func Models() []any {
	return []any{
		&parcelrepo.ParcelDTO{},
		&triprepo.TripDTO{},
		&assignmentrepo.AssignmentDTO{},
		&ledgerrepo.TransactionDTO{},
		&disputerepo.DisputeDTO{},
		&auditrepo.AuditEntryDTO{},
		&outboxrepo.MessageDTO{},
	}
}
