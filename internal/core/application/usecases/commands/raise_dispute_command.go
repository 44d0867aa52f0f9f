package commands

import (
	"errors"
	"strings"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var ErrRaiseDisputeCommandIsNotConstructed = errors.New(
	"RaiseDisputeCommand must be created via NewRaiseDisputeCommand constructor",
)

// RaiseDisputeCommand freezes a MATCHED, CONFIRMED or IN_TRANSIT assignment
// until a moderator's verdict.
type RaiseDisputeCommand struct {
	disputeID    kernel.UUID
	assignmentID kernel.UUID
	actorID      kernel.UUID
	reason       string

	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewRaiseDisputeCommand(
	disputeID, assignmentID, actorID kernel.UUID,
	reason string,
	expectedVersion *int64,
) (RaiseDisputeCommand, error) {
	reason = strings.TrimSpace(reason)

	errList := []error{disputeID.Validate(), assignmentID.Validate(), actorID.Validate()}
	if reason == "" {
		errList = append(errList, errs.NewValueIsRequiredError("reason"))
	}
	if err := errors.Join(errList...); err != nil {
		return RaiseDisputeCommand{}, err
	}

	return RaiseDisputeCommand{
		disputeID:    disputeID,
		assignmentID: assignmentID,
		actorID:      actorID,
		reason:       reason,

		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c RaiseDisputeCommand) Validate() error {
	return c.guard.Validate(ErrRaiseDisputeCommandIsNotConstructed)
}

func (c RaiseDisputeCommand) DisputeID() kernel.UUID    { return c.disputeID }
func (c RaiseDisputeCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c RaiseDisputeCommand) ActorID() kernel.UUID      { return c.actorID }
func (c RaiseDisputeCommand) Reason() string            { return c.reason }
func (c RaiseDisputeCommand) ExpectedVersion() *int64   { return c.expectedVersion }
