package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/services"
)

// RequestMatchCommandHandler opens a PROPOSED assignment at the package's
// offered price. Nothing is reserved until both parties confirm a price.
type RequestMatchCommandHandler struct {
	uowFactory UoWFactory
	matcher    services.MatchMaker
}

func NewRequestMatchCommandHandler(uowFactory UoWFactory) RequestMatchCommandHandler {
	return RequestMatchCommandHandler{
		uowFactory: uowFactory,
		matcher:    services.NewMatchMaker(),
	}
}

func (h RequestMatchCommandHandler) Handle(ctx context.Context, command RequestMatchCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return inTx(ctx, h.uowFactory, func(uow UoW) error {
		pkg, err := uow.ParcelRepository().Get(ctx, command.PackageID())
		if err != nil {
			return err
		}

		t, err := uow.TripRepository().Get(ctx, command.TripID())
		if err != nil {
			return err
		}

		a, err := h.matcher.Open(command.AssignmentID(), pkg, t, command.ActorID(), time.Now())
		if err != nil {
			return err
		}

		if err = uow.AssignmentRepository().Add(ctx, a); err != nil {
			return err
		}

		return flushEvents(ctx, uow, a)
	})
}
