package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/trip"
	"parcelshare/internal/pkg/guard"
)

var ErrCreateTripCommandIsNotConstructed = errors.New(
	"CreateTripCommand must be created via NewCreateTripCommand constructor",
)

// CreateTripCommand publishes a traveler's trip with its spare capacity.
type CreateTripCommand struct {
	tripID kernel.UUID
	params trip.Params

	guard guard.ConstructorGuard
}

func NewCreateTripCommand(tripID kernel.UUID, params trip.Params) (CreateTripCommand, error) {
	if err := errors.Join(tripID.Validate(), params.TravelerID.Validate()); err != nil {
		return CreateTripCommand{}, err
	}

	return CreateTripCommand{
		tripID: tripID,
		params: params,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c CreateTripCommand) Validate() error {
	return c.guard.Validate(ErrCreateTripCommandIsNotConstructed)
}

func (c CreateTripCommand) TripID() kernel.UUID { return c.tripID }
func (c CreateTripCommand) Params() trip.Params { return c.params }
