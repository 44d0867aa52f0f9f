package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrConfirmDeliveryCommandIsNotConstructed = errors.New(
	"ConfirmDeliveryCommand must be created via NewConfirmDeliveryCommand constructor",
)

// ConfirmDeliveryCommand closes a trip leg: the DELIVERY checklist must be
// complete and the escrow is released to the traveler.
type ConfirmDeliveryCommand struct {
	assignmentID    kernel.UUID
	actorID         kernel.UUID
	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewConfirmDeliveryCommand(assignmentID, actorID kernel.UUID, expectedVersion *int64) (ConfirmDeliveryCommand, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate()); err != nil {
		return ConfirmDeliveryCommand{}, err
	}

	return ConfirmDeliveryCommand{
		assignmentID:    assignmentID,
		actorID:         actorID,
		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveryCommandIsNotConstructed)
}

func (c ConfirmDeliveryCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c ConfirmDeliveryCommand) ActorID() kernel.UUID      { return c.actorID }
func (c ConfirmDeliveryCommand) ExpectedVersion() *int64   { return c.expectedVersion }
