package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/services"
)

// ConfirmDeliveryCommandHandler moves IN_TRANSIT -> DELIVERED and writes the
// PAYOUT and COMMISSION entries in one transaction. Release does not call
// the gateway.
type ConfirmDeliveryCommandHandler struct {
	uowFactory UoWFactory
	escrow     services.Escrow
	matcher    services.MatchMaker
}

func NewConfirmDeliveryCommandHandler(uowFactory UoWFactory, escrow services.Escrow) ConfirmDeliveryCommandHandler {
	return ConfirmDeliveryCommandHandler{
		uowFactory: uowFactory,
		escrow:     escrow,
		matcher:    services.NewMatchMaker(),
	}
}

func (h ConfirmDeliveryCommandHandler) Handle(ctx context.Context, command ConfirmDeliveryCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return inTx(ctx, h.uowFactory, func(uow UoW) error {
		a, err := uow.AssignmentRepository().Get(ctx, command.AssignmentID())
		if err != nil {
			return err
		}
		if err = a.CheckVersion(command.ExpectedVersion()); err != nil {
			return err
		}
		if _, err = a.PartyOf(command.ActorID()); err != nil {
			return err
		}
		if err = a.CheckDelivery(); err != nil {
			return err
		}

		now := time.Now()
		entries, err := uow.LedgerRepository().ListByAssignment(ctx, a.ID())
		if err != nil {
			return err
		}
		settlement, err := h.escrow.Release(entries, now)
		if err != nil {
			return err
		}
		if err = a.ConfirmDelivery(settlement.Payout.Amount(), now); err != nil {
			return err
		}

		pkg, err := uow.ParcelRepository().Get(ctx, a.PackageID())
		if err != nil {
			return err
		}
		if err = h.matcher.Mirror(a, pkg, now); err != nil {
			return err
		}
		if err = uow.ParcelRepository().Update(ctx, pkg); err != nil {
			return err
		}

		if settlement.Created {
			entries = append(entries, settlement.Payout, settlement.Commission)
		}
		if err = saveLedger(ctx, uow, entries); err != nil {
			return err
		}
		return persistAssignment(ctx, uow, a)
	})
}
