package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrRequestMatchCommandIsNotConstructed = errors.New(
	"RequestMatchCommand must be created via NewRequestMatchCommand constructor",
)

// RequestMatchCommand proposes carrying a package on a trip. Either the
// package's sender or the trip's traveler may ask. A package can have
// several open proposals; only one of them can ever bind it.
//
// Example:
//
//	cmd, err := NewRequestMatchCommand(kernel.NewUUID(), packageID, tripID, userID)
//	if err != nil {
//	    return err
//	}
//	if err := handler.Handle(ctx, cmd); errors.Is(err, errs.ErrPackageIncompatibleToTrip) {
//	    // currency, size, type or dates do not fit
//	}
type RequestMatchCommand struct {
	assignmentID kernel.UUID
	packageID    kernel.UUID
	tripID       kernel.UUID
	actorID      kernel.UUID

	guard guard.ConstructorGuard
}

func NewRequestMatchCommand(assignmentID, packageID, tripID, actorID kernel.UUID) (RequestMatchCommand, error) {
	if err := errors.Join(
		assignmentID.Validate(),
		packageID.Validate(),
		tripID.Validate(),
		actorID.Validate(),
	); err != nil {
		return RequestMatchCommand{}, err
	}

	return RequestMatchCommand{
		assignmentID: assignmentID,
		packageID:    packageID,
		tripID:       tripID,
		actorID:      actorID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c RequestMatchCommand) Validate() error {
	return c.guard.Validate(ErrRequestMatchCommandIsNotConstructed)
}

func (c RequestMatchCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c RequestMatchCommand) PackageID() kernel.UUID    { return c.packageID }
func (c RequestMatchCommand) TripID() kernel.UUID       { return c.tripID }
func (c RequestMatchCommand) ActorID() kernel.UUID      { return c.actorID }
