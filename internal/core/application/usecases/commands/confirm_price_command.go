package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrConfirmPriceCommandIsNotConstructed = errors.New(
	"ConfirmPriceCommand must be created via NewConfirmPriceCommand constructor",
)

// ConfirmPriceCommand records one party's agreement with the current offer.
// The second confirmation authorizes the payment and matches the package.
type ConfirmPriceCommand struct {
	assignmentID    kernel.UUID
	actorID         kernel.UUID
	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewConfirmPriceCommand(assignmentID, actorID kernel.UUID, expectedVersion *int64) (ConfirmPriceCommand, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate()); err != nil {
		return ConfirmPriceCommand{}, err
	}

	return ConfirmPriceCommand{
		assignmentID:    assignmentID,
		actorID:         actorID,
		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmPriceCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPriceCommandIsNotConstructed)
}

func (c ConfirmPriceCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c ConfirmPriceCommand) ActorID() kernel.UUID      { return c.actorID }
func (c ConfirmPriceCommand) ExpectedVersion() *int64   { return c.expectedVersion }
