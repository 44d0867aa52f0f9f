package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/trip"
)

// CreateTripCommandHandler stores a new trip with all of its capacity
// available.
type CreateTripCommandHandler struct {
	uowFactory TripUoWFactory
}

func NewCreateTripCommandHandler(uowFactory TripUoWFactory) CreateTripCommandHandler {
	return CreateTripCommandHandler{uowFactory: uowFactory}
}

func (h CreateTripCommandHandler) Handle(ctx context.Context, command CreateTripCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	t, err := trip.NewTrip(command.TripID(), command.Params(), time.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TripRepository().Add(ctx, t); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
