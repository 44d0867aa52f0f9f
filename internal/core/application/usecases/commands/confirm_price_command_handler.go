package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/services"
)

// ConfirmPriceCommandHandler records a price confirmation. When both parties
// agree it reserves the trip capacity and binds the package, commits, and
// lets the PaymentCoordinator authorize the agreed price outside of the
// transaction.
//
// Example:
//
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrPaymentAuthorization):
//	    // declined; the negotiation is open again
//	case errors.Is(err, errs.ErrInsufficientTripCapacity):
//	    // another package took the space first
//	}
type ConfirmPriceCommandHandler struct {
	uowFactory  UoWFactory
	coordinator *PaymentCoordinator
	matcher     services.MatchMaker
}

func NewConfirmPriceCommandHandler(uowFactory UoWFactory, coordinator *PaymentCoordinator) ConfirmPriceCommandHandler {
	return ConfirmPriceCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
		matcher:     services.NewMatchMaker(),
	}
}

func (h ConfirmPriceCommandHandler) Handle(ctx context.Context, command ConfirmPriceCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var pending *authorizeRequest
	err := inTx(ctx, h.uowFactory, func(uow UoW) error {
		a, err := uow.AssignmentRepository().Get(ctx, command.AssignmentID())
		if err != nil {
			return err
		}
		if err = a.CheckVersion(command.ExpectedVersion()); err != nil {
			return err
		}

		party, err := a.PartyOf(command.ActorID())
		if err != nil {
			return err
		}

		now := time.Now()
		agreed, err := a.ConfirmPrice(party, now)
		if err != nil {
			return err
		}
		if !agreed {
			return persistAssignment(ctx, uow, a)
		}

		r, err := lockReservation(ctx, uow, a)
		if err != nil {
			return err
		}
		if err = h.matcher.Reserve(a, r.parcel, r.trip, now); err != nil {
			return err
		}

		entries, err := uow.LedgerRepository().ListByAssignment(ctx, a.ID())
		if err != nil {
			return err
		}
		req := newAuthorizeRequest(a, r.parcel.PaymentMethodID(), entries)
		pending = &req
		return r.save(ctx, uow)
	})
	if err != nil || pending == nil {
		return err
	}

	return h.coordinator.authorize(ctx, *pending)
}
