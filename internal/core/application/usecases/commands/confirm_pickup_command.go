package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrConfirmPickupCommandIsNotConstructed = errors.New(
	"ConfirmPickupCommand must be created via NewConfirmPickupCommand constructor",
)

// ConfirmPickupCommand hands the package over to the traveler. The PICKUP
// checklist must be complete; the payment is captured.
type ConfirmPickupCommand struct {
	assignmentID    kernel.UUID
	actorID         kernel.UUID
	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewConfirmPickupCommand(assignmentID, actorID kernel.UUID, expectedVersion *int64) (ConfirmPickupCommand, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate()); err != nil {
		return ConfirmPickupCommand{}, err
	}

	return ConfirmPickupCommand{
		assignmentID:    assignmentID,
		actorID:         actorID,
		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmPickupCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPickupCommandIsNotConstructed)
}

func (c ConfirmPickupCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c ConfirmPickupCommand) ActorID() kernel.UUID      { return c.actorID }
func (c ConfirmPickupCommand) ExpectedVersion() *int64   { return c.expectedVersion }
