package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/services"
)

// RaiseDisputeCommandHandler moves the assignment to DISPUTED and opens a
// dispute that remembers the state to resume to.
type RaiseDisputeCommandHandler struct {
	uowFactory UoWFactory
	matcher    services.MatchMaker
}

func NewRaiseDisputeCommandHandler(uowFactory UoWFactory) RaiseDisputeCommandHandler {
	return RaiseDisputeCommandHandler{
		uowFactory: uowFactory,
		matcher:    services.NewMatchMaker(),
	}
}

func (h RaiseDisputeCommandHandler) Handle(ctx context.Context, command RaiseDisputeCommand) error {
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

		now := time.Now()
		previous, err := a.RaiseDispute(now)
		if err != nil {
			return err
		}

		d, err := dispute.NewDispute(command.DisputeID(), a.ID(), command.ActorID(), command.Reason(), previous, now)
		if err != nil {
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
		if err = uow.DisputeRepository().Add(ctx, d); err != nil {
			return err
		}
		return persistAssignment(ctx, uow, a)
	})
}
