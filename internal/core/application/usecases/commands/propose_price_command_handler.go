package commands

import (
	"context"
	"time"
)

// ProposePriceCommandHandler replaces the offer on the table. Both price
// confirmations are reset by the new proposal.
type ProposePriceCommandHandler struct {
	uowFactory UoWFactory
}

func NewProposePriceCommandHandler(uowFactory UoWFactory) ProposePriceCommandHandler {
	return ProposePriceCommandHandler{uowFactory: uowFactory}
}

func (h ProposePriceCommandHandler) Handle(ctx context.Context, command ProposePriceCommand) error {
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

		if err = a.Propose(party, command.Price(), command.Note(), time.Now()); err != nil {
			return err
		}

		t, err := uow.TripRepository().Get(ctx, a.TripID())
		if err != nil {
			return err
		}
		if err = t.CheckPrice(command.Price()); err != nil {
			return err
		}

		return persistAssignment(ctx, uow, a)
	})
}
