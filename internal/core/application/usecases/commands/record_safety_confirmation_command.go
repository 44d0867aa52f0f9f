package commands

import (
	"errors"
	"fmt"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var ErrRecordSafetyConfirmationCommandIsNotConstructed = errors.New(
	"RecordSafetyConfirmationCommand must be created via NewRecordSafetyConfirmationCommand constructor",
)

// RecordSafetyConfirmationCommand ticks or unticks one checklist item.
type RecordSafetyConfirmationCommand struct {
	assignmentID kernel.UUID
	actorID      kernel.UUID
	event        safety.Event
	item         safety.Item
	value        bool

	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewRecordSafetyConfirmationCommand(
	assignmentID, actorID kernel.UUID,
	event safety.Event,
	item safety.Item,
	value bool,
	expectedVersion *int64,
) (RecordSafetyConfirmationCommand, error) {
	errList := []error{assignmentID.Validate(), actorID.Validate(), event.Validate()}
	if event.Validate() == nil && !event.Has(item) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("checklist item",
			fmt.Errorf("%s is not part of the %s checklist", item, event)))
	}
	if err := errors.Join(errList...); err != nil {
		return RecordSafetyConfirmationCommand{}, err
	}

	return RecordSafetyConfirmationCommand{
		assignmentID: assignmentID,
		actorID:      actorID,
		event:        event,
		item:         item,
		value:        value,

		expectedVersion: expectedVersion,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (c RecordSafetyConfirmationCommand) Validate() error {
	return c.guard.Validate(ErrRecordSafetyConfirmationCommandIsNotConstructed)
}

func (c RecordSafetyConfirmationCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c RecordSafetyConfirmationCommand) ActorID() kernel.UUID      { return c.actorID }
func (c RecordSafetyConfirmationCommand) Event() safety.Event       { return c.event }
func (c RecordSafetyConfirmationCommand) Item() safety.Item         { return c.item }
func (c RecordSafetyConfirmationCommand) Value() bool               { return c.value }
func (c RecordSafetyConfirmationCommand) ExpectedVersion() *int64   { return c.expectedVersion }
