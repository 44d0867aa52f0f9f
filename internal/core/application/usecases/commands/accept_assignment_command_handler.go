package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/core/domain/services"
	"parcelshare/internal/pkg/errs"
)

// AcceptAssignmentCommandHandler records an acceptance. The second one moves
// MATCHED -> CONFIRMED, which requires the authorized payment to still be
// PENDING.
type AcceptAssignmentCommandHandler struct {
	uowFactory UoWFactory
	matcher    services.MatchMaker
}

func NewAcceptAssignmentCommandHandler(uowFactory UoWFactory) AcceptAssignmentCommandHandler {
	return AcceptAssignmentCommandHandler{
		uowFactory: uowFactory,
		matcher:    services.NewMatchMaker(),
	}
}

func (h AcceptAssignmentCommandHandler) Handle(ctx context.Context, command AcceptAssignmentCommand) error {
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

		party, err := a.PartyOf(command.ActorID())
		if err != nil {
			return err
		}

		now := time.Now()
		confirmed, err := a.Accept(party, now)
		if err != nil {
			return err
		}

		entries, err := uow.LedgerRepository().ListByAssignment(ctx, a.ID())
		if err != nil {
			return err
		}
		if payment := entries.Payment(); payment == nil || payment.Status() != ledger.StatusPending {
			return errs.NewSettlementPreconditionError("accept", "no authorized payment is pending")
		}

		if confirmed {
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
		}

		return persistAssignment(ctx, uow, a)
	})
}
