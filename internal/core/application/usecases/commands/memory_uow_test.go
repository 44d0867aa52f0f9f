package commands_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"parcelshare/internal/core/application/usecases/commands"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/core/domain/model/trip"
	"parcelshare/internal/core/ports"
	"parcelshare/internal/pkg/errs"
)

// memState is one consistent copy of every table. Stored aggregates are
// private clones; repositories hand out fresh ones on every read.
type memState struct {
	parcels     map[kernel.UUID]*parcel.Parcel
	trips       map[kernel.UUID]*trip.Trip
	assignments map[kernel.UUID]*assignment.Assignment
	ledger      map[kernel.UUID]ledger.Snapshot
	ledgerOrder []kernel.UUID
	disputes    map[kernel.UUID]dispute.Snapshot
	audit       []safety.AuditEntry
	outbox      []*outboxRow
}

type outboxRow struct {
	msg           ports.OutboxMessage
	publishedAt   *time.Time
	nextAttemptAt time.Time
	lastError     string
}

func (s *memState) clone() *memState {
	rows := make([]*outboxRow, len(s.outbox))
	for i, r := range s.outbox {
		row := *r
		rows[i] = &row
	}
	return &memState{
		parcels:     maps.Clone(s.parcels),
		trips:       maps.Clone(s.trips),
		assignments: maps.Clone(s.assignments),
		ledger:      maps.Clone(s.ledger),
		ledgerOrder: slices.Clone(s.ledgerOrder),
		disputes:    maps.Clone(s.disputes),
		audit:       slices.Clone(s.audit),
		outbox:      rows,
	}
}

// memStore is an in-memory database with serializable transactions: a
// transaction works on a private copy that replaces the committed state.
type memStore struct {
	mu        sync.Mutex
	committed *memState

	// commitConflicts makes the next n commits fail with a serialization error.
	commitConflicts int
	commits         int
}

func newMemStore() *memStore {
	return &memStore{committed: &memState{
		parcels:     map[kernel.UUID]*parcel.Parcel{},
		trips:       map[kernel.UUID]*trip.Trip{},
		assignments: map[kernel.UUID]*assignment.Assignment{},
		ledger:      map[kernel.UUID]ledger.Snapshot{},
		disputes:    map[kernel.UUID]dispute.Snapshot{},
	}}
}

func (s *memStore) snapshot() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.clone()
}

// backdate moves an assignment's last change d into the past.
func (s *memStore) backdate(id kernel.UUID, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.committed.assignments[id].State()
	state.UpdatedAt = state.UpdatedAt.Add(-d)
	a, err := assignment.RestoreAssignment(state)
	if err != nil {
		panic(err)
	}
	s.committed.assignments[id] = a
}

func (s *memStore) Create() commands.UoW { return &memUoW{store: s} }

// Narrow factories share the store.
type (
	memParcelUoWFactory struct{ store *memStore }
	memTripUoWFactory   struct{ store *memStore }
	memOutboxUoWFactory struct{ store *memStore }
)

func (f memParcelUoWFactory) Create() commands.ParcelUoW { return &memUoW{store: f.store} }
func (f memTripUoWFactory) Create() commands.TripUoW     { return &memUoW{store: f.store} }
func (f memOutboxUoWFactory) Create() commands.OutboxUoW { return &memUoW{store: f.store} }

type memUoW struct {
	store   *memStore
	working *memState
}

func (u *memUoW) Begin(context.Context) error {
	u.working = u.store.snapshot()
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	if u.working == nil {
		return nil
	}
	if u.store.commitConflicts > 0 {
		u.store.commitConflicts--
		u.working = nil
		return errs.NewConcurrentModificationError("transaction", "serialization failure")
	}
	u.store.committed = u.working
	u.store.commits++
	u.working = nil
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	u.working = nil
	return nil
}

// state is the transaction's copy, or the committed state for reads made
// outside a transaction.
func (u *memUoW) state() *memState {
	if u.working != nil {
		return u.working
	}
	return u.store.snapshot()
}

func (u *memUoW) ParcelRepository() ports.ParcelRepository         { return memParcels{u} }
func (u *memUoW) TripRepository() ports.TripRepository             { return memTrips{u} }
func (u *memUoW) AssignmentRepository() ports.AssignmentRepository { return memAssignments{u} }
func (u *memUoW) LedgerRepository() ports.LedgerRepository         { return memLedger{u} }
func (u *memUoW) DisputeRepository() ports.DisputeRepository       { return memDisputes{u} }
func (u *memUoW) SafetyAuditRepository() ports.SafetyAuditRepository {
	return memAudit{u}
}
func (u *memUoW) OutboxRepository() ports.OutboxRepository { return memOutbox{u} }

func cloneParcel(p *parcel.Parcel) *parcel.Parcel {
	c, err := parcel.RestoreParcel(
		p.ID(), p.Params(), p.Status(), p.FinalPrice(), p.AssignmentID(), p.Version(), p.CreatedAt(), p.UpdatedAt(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

func cloneTrip(t *trip.Trip) *trip.Trip {
	c, err := trip.RestoreTrip(t.ID(), t.Params(), t.AvailableSpace(), t.Version(), t.CreatedAt(), t.UpdatedAt())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneAssignment(a *assignment.Assignment) *assignment.Assignment {
	c, err := assignment.RestoreAssignment(a.State())
	if err != nil {
		panic(err)
	}
	return c
}

type memParcels struct{ u *memUoW }

func (r memParcels) Add(_ context.Context, p *parcel.Parcel) error {
	r.u.working.parcels[p.ID()] = cloneParcel(p)
	return nil
}

func (r memParcels) Update(_ context.Context, p *parcel.Parcel) error {
	stored, ok := r.u.working.parcels[p.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("package", p.ID())
	}
	if stored.Version() != p.Version() {
		return errs.NewConcurrentModificationError("package", p.ID().String())
	}
	p.IncrementVersion()
	r.u.working.parcels[p.ID()] = cloneParcel(p)
	return nil
}

func (r memParcels) Get(_ context.Context, id kernel.UUID) (*parcel.Parcel, error) {
	p, ok := r.u.state().parcels[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("package", id)
	}
	return cloneParcel(p), nil
}

type memTrips struct{ u *memUoW }

func (r memTrips) Add(_ context.Context, t *trip.Trip) error {
	r.u.working.trips[t.ID()] = cloneTrip(t)
	return nil
}

func (r memTrips) Update(_ context.Context, t *trip.Trip) error {
	stored, ok := r.u.working.trips[t.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("trip", t.ID())
	}
	if stored.Version() != t.Version() {
		return errs.NewConcurrentModificationError("trip", t.ID().String())
	}
	t.IncrementVersion()
	r.u.working.trips[t.ID()] = cloneTrip(t)
	return nil
}

func (r memTrips) Get(_ context.Context, id kernel.UUID) (*trip.Trip, error) {
	t, ok := r.u.state().trips[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("trip", id)
	}
	return cloneTrip(t), nil
}

type memAssignments struct{ u *memUoW }

func (r memAssignments) Add(_ context.Context, a *assignment.Assignment) error {
	r.u.working.assignments[a.ID()] = cloneAssignment(a)
	return nil
}

func (r memAssignments) Update(_ context.Context, a *assignment.Assignment) error {
	stored, ok := r.u.working.assignments[a.ID()]
	if !ok {
		return errs.NewObjectNotFoundError("assignment", a.ID())
	}
	if stored.Version() != a.Version() {
		return errs.NewConcurrentModificationError("assignment", a.ID().String())
	}
	a.IncrementVersion()
	r.u.working.assignments[a.ID()] = cloneAssignment(a)
	return nil
}

func (r memAssignments) Get(_ context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	a, ok := r.u.state().assignments[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("assignment", id)
	}
	return cloneAssignment(a), nil
}

func (r memAssignments) ListIdleSince(_ context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	var ids []kernel.UUID
	for id, a := range r.u.state().assignments {
		if a.Status().IsNegotiable() && a.PendingOperation() == assignment.OperationNone && a.UpdatedAt().Before(cutoff) {
			ids = append(ids, id)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (r memAssignments) ListStalled(_ context.Context, cutoff time.Time, limit int) ([]kernel.UUID, error) {
	var ids []kernel.UUID
	for id, a := range r.u.state().assignments {
		if a.PendingOperation() != assignment.OperationNone && a.UpdatedAt().Before(cutoff) {
			ids = append(ids, id)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

type memLedger struct{ u *memUoW }

func (r memLedger) ListByAssignment(_ context.Context, id kernel.UUID) (ledger.Entries, error) {
	state := r.u.state()
	var entries ledger.Entries
	for _, txID := range state.ledgerOrder {
		s := state.ledger[txID]
		if !s.Refs.AssignmentID.IsEqual(id) {
			continue
		}
		tx, err := ledger.RestoreTransaction(s)
		if err != nil {
			return nil, err
		}
		entries = append(entries, tx)
	}
	return entries, nil
}

func (r memLedger) Save(_ context.Context, entries ledger.Entries) error {
	for _, tx := range entries {
		if _, ok := r.u.working.ledger[tx.ID()]; !ok {
			r.u.working.ledgerOrder = append(r.u.working.ledgerOrder, tx.ID())
		}
		r.u.working.ledger[tx.ID()] = tx.Snapshot()
		tx.MarkPersisted()
	}
	return nil
}

type memDisputes struct{ u *memUoW }

func (r memDisputes) Add(_ context.Context, d *dispute.Dispute) error {
	r.u.working.disputes[d.ID()] = d.Snapshot()
	return nil
}

func (r memDisputes) Update(_ context.Context, d *dispute.Dispute) error {
	if _, ok := r.u.working.disputes[d.ID()]; !ok {
		return errs.NewObjectNotFoundError("dispute", d.ID())
	}
	r.u.working.disputes[d.ID()] = d.Snapshot()
	return nil
}

func (r memDisputes) Get(_ context.Context, id kernel.UUID) (*dispute.Dispute, error) {
	s, ok := r.u.state().disputes[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("dispute", id)
	}
	return dispute.RestoreDispute(s)
}

func (r memDisputes) GetOpenByAssignment(_ context.Context, assignmentID kernel.UUID) (*dispute.Dispute, error) {
	for _, s := range r.u.state().disputes {
		if s.AssignmentID.IsEqual(assignmentID) && s.Status != dispute.StatusResolved {
			return dispute.RestoreDispute(s)
		}
	}
	return nil, errs.NewObjectNotFoundError("open dispute of assignment", assignmentID)
}

type memAudit struct{ u *memUoW }

func (r memAudit) Append(_ context.Context, entry safety.AuditEntry) error {
	r.u.working.audit = append(r.u.working.audit, entry)
	return nil
}

type memOutbox struct{ u *memUoW }

func (r memOutbox) Add(_ context.Context, events ...assignment.Event) error {
	for _, e := range events {
		r.u.working.outbox = append(r.u.working.outbox, &outboxRow{
			msg:           ports.OutboxMessage{ID: e.ID, Event: e},
			nextAttemptAt: e.OccurredAt,
		})
	}
	return nil
}

func (r memOutbox) ClaimDue(_ context.Context, now time.Time, limit int) ([]ports.OutboxMessage, error) {
	var due []ports.OutboxMessage
	for _, row := range r.u.working.outbox {
		if len(due) == limit {
			break
		}
		if row.publishedAt == nil && !row.nextAttemptAt.After(now) {
			due = append(due, row.msg)
		}
	}
	return due, nil
}

func (r memOutbox) MarkPublished(_ context.Context, id kernel.UUID, at time.Time) error {
	row, err := r.find(id)
	if err != nil {
		return err
	}
	row.publishedAt = &at
	return nil
}

func (r memOutbox) MarkFailed(_ context.Context, id kernel.UUID, nextAttemptAt time.Time, reason string) error {
	row, err := r.find(id)
	if err != nil {
		return err
	}
	row.msg.Attempts++
	row.nextAttemptAt = nextAttemptAt
	row.lastError = reason
	return nil
}

func (r memOutbox) find(id kernel.UUID) (*outboxRow, error) {
	for _, row := range r.u.working.outbox {
		if row.msg.ID.IsEqual(id) {
			return row, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("outbox message", id)
}
