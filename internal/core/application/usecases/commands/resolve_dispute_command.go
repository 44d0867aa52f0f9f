package commands

import (
	"errors"
	"strings"

	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrResolveDisputeCommandIsNotConstructed = errors.New(
	"ResolveDisputeCommand must be created via NewResolveDisputeCommand constructor",
)

// ResolveDisputeCommand carries a moderator's verdict. It is the only input
// that moves a DISPUTED assignment.
type ResolveDisputeCommand struct {
	disputeID   kernel.UUID
	moderatorID kernel.UUID
	outcome     dispute.Outcome
	note        string

	guard guard.ConstructorGuard
}

func NewResolveDisputeCommand(
	disputeID, moderatorID kernel.UUID,
	outcome dispute.Outcome,
	note string,
) (ResolveDisputeCommand, error) {
	_, outcomeErr := dispute.ParseOutcome(string(outcome))
	if err := errors.Join(disputeID.Validate(), moderatorID.Validate(), outcomeErr); err != nil {
		return ResolveDisputeCommand{}, err
	}

	return ResolveDisputeCommand{
		disputeID:   disputeID,
		moderatorID: moderatorID,
		outcome:     outcome,
		note:        strings.TrimSpace(note),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ResolveDisputeCommand) Validate() error {
	return c.guard.Validate(ErrResolveDisputeCommandIsNotConstructed)
}

func (c ResolveDisputeCommand) DisputeID() kernel.UUID   { return c.disputeID }
func (c ResolveDisputeCommand) ModeratorID() kernel.UUID { return c.moderatorID }
func (c ResolveDisputeCommand) Outcome() dispute.Outcome { return c.outcome }
func (c ResolveDisputeCommand) Note() string             { return c.note }
