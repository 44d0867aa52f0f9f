package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrAcceptAssignmentCommandIsNotConstructed = errors.New(
	"AcceptAssignmentCommand must be created via NewAcceptAssignmentCommand constructor",
)

// AcceptAssignmentCommand is one party's acceptance of a MATCHED assignment.
type AcceptAssignmentCommand struct {
	assignmentID    kernel.UUID
	actorID         kernel.UUID
	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewAcceptAssignmentCommand(assignmentID, actorID kernel.UUID, expectedVersion *int64) (AcceptAssignmentCommand, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate()); err != nil {
		return AcceptAssignmentCommand{}, err
	}

	return AcceptAssignmentCommand{
		assignmentID:    assignmentID,
		actorID:         actorID,
		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c AcceptAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
}

func (c AcceptAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c AcceptAssignmentCommand) ActorID() kernel.UUID      { return c.actorID }
func (c AcceptAssignmentCommand) ExpectedVersion() *int64   { return c.expectedVersion }
