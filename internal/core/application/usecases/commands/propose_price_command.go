package commands

import (
	"errors"
	"strings"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

const maxProposalNoteLength = 500

var ErrProposePriceCommandIsNotConstructed = errors.New(
	"ProposePriceCommand must be created via NewProposePriceCommand constructor",
)

// ProposePriceCommand is a counter-offer. It arrives the same way whether it
// was typed into a form or sent as a chat message. The acting party is
// resolved from actorID, never taken from the client.
type ProposePriceCommand struct {
	assignmentID    kernel.UUID
	actorID         kernel.UUID
	price           kernel.Money
	note            string
	expectedVersion *int64

	guard guard.ConstructorGuard
}

// NewProposePriceCommand builds the command. expectedVersion is optional;
// when set the proposal fails if the assignment changed since it was read.
func NewProposePriceCommand(
	assignmentID, actorID kernel.UUID,
	price kernel.Money,
	note string,
	expectedVersion *int64,
) (ProposePriceCommand, error) {
	note = strings.TrimSpace(note)

	errList := []error{assignmentID.Validate(), actorID.Validate(), price.Validate()}
	if len(note) > maxProposalNoteLength {
		errList = append(errList, errs.NewValueIsOutOfRangeError("note length", len(note), 0, maxProposalNoteLength))
	}
	if err := errors.Join(errList...); err != nil {
		return ProposePriceCommand{}, err
	}

	return ProposePriceCommand{
		assignmentID:    assignmentID,
		actorID:         actorID,
		price:           price,
		note:            note,
		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c ProposePriceCommand) Validate() error {
	return c.guard.Validate(ErrProposePriceCommandIsNotConstructed)
}

func (c ProposePriceCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c ProposePriceCommand) ActorID() kernel.UUID      { return c.actorID }
func (c ProposePriceCommand) Price() kernel.Money       { return c.price }
func (c ProposePriceCommand) Note() string              { return c.note }
func (c ProposePriceCommand) ExpectedVersion() *int64   { return c.expectedVersion }
