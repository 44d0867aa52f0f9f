package commands

import (
	"errors"
	"strings"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrCancelAssignmentCommandIsNotConstructed = errors.New(
	"CancelAssignmentCommand must be created via NewCancelAssignmentCommand constructor",
)

// CancelAssignmentCommand is a party's request to call the assignment off.
type CancelAssignmentCommand struct {
	assignmentID    kernel.UUID
	actorID         kernel.UUID
	reason          string
	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewCancelAssignmentCommand(
	assignmentID, actorID kernel.UUID,
	reason string,
	expectedVersion *int64,
) (CancelAssignmentCommand, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate()); err != nil {
		return CancelAssignmentCommand{}, err
	}

	return CancelAssignmentCommand{
		assignmentID:    assignmentID,
		actorID:         actorID,
		reason:          strings.TrimSpace(reason),
		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c CancelAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelAssignmentCommandIsNotConstructed)
}

func (c CancelAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c CancelAssignmentCommand) ActorID() kernel.UUID      { return c.actorID }
func (c CancelAssignmentCommand) Reason() string            { return c.reason }
func (c CancelAssignmentCommand) ExpectedVersion() *int64   { return c.expectedVersion }
