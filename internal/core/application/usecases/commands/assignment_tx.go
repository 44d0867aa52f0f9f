package commands

import (
	"context"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/trip"
)

// inTx runs fn in a fresh unit of work and commits it.
func inTx(ctx context.Context, factory UoWFactory, fn func(uow UoW) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := fn(uow); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// persistAssignment writes a and moves its recorded events to the outbox.
func persistAssignment(ctx context.Context, uow UoW, a *assignment.Assignment) error {
	if err := uow.AssignmentRepository().Update(ctx, a); err != nil {
		return err
	}
	return flushEvents(ctx, uow, a)
}

func flushEvents(ctx context.Context, uow UoW, a *assignment.Assignment) error {
	events := a.PullEvents()
	if len(events) == 0 {
		return nil
	}
	return uow.OutboxRepository().Add(ctx, events...)
}

func saveLedger(ctx context.Context, uow UoW, entries ledger.Entries) error {
	changed := entries.Changed()
	if len(changed) == 0 {
		return nil
	}
	return uow.LedgerRepository().Save(ctx, changed)
}

// reservation is an assignment together with the package and trip rows its
// transitions may change. All three are locked.
type reservation struct {
	assignment *assignment.Assignment
	parcel     *parcel.Parcel
	trip       *trip.Trip
}

func loadReservation(ctx context.Context, uow UoW, id kernel.UUID) (reservation, error) {
	a, err := uow.AssignmentRepository().Get(ctx, id)
	if err != nil {
		return reservation{}, err
	}
	return lockReservation(ctx, uow, a)
}

// lockReservation loads the package and trip of an already locked
// assignment. Rows are always locked in assignment, package, trip order.
func lockReservation(ctx context.Context, uow UoW, a *assignment.Assignment) (reservation, error) {
	pkg, err := uow.ParcelRepository().Get(ctx, a.PackageID())
	if err != nil {
		return reservation{}, err
	}
	t, err := uow.TripRepository().Get(ctx, a.TripID())
	if err != nil {
		return reservation{}, err
	}
	return reservation{assignment: a, parcel: pkg, trip: t}, nil
}

func (r reservation) save(ctx context.Context, uow UoW) error {
	if err := uow.ParcelRepository().Update(ctx, r.parcel); err != nil {
		return err
	}
	if err := uow.TripRepository().Update(ctx, r.trip); err != nil {
		return err
	}
	return persistAssignment(ctx, uow, r.assignment)
}
