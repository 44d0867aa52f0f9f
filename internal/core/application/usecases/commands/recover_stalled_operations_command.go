package commands

import (
	"errors"
	"time"

	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var ErrRecoverStalledOperationsCommandIsNotConstructed = errors.New(
	"RecoverStalledOperationsCommand must be created via NewRecoverStalledOperationsCommand constructor",
)

// RecoverStalledOperationsCommand re-drives gateway operations reserved
// more than olderThan ago. olderThan may not be shorter than
// OperationTimeout, so a live request is never raced.
type RecoverStalledOperationsCommand struct {
	olderThan time.Duration
	batch     int

	guard guard.ConstructorGuard
}

func NewRecoverStalledOperationsCommand(olderThan time.Duration, batch int) (RecoverStalledOperationsCommand, error) {
	var errList []error
	if olderThan < OperationTimeout {
		errList = append(errList, errs.NewValueIsOutOfRangeError("olderThan", olderThan, OperationTimeout, "unbounded"))
	}
	if batch <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("batch", batch, 1, "unbounded"))
	}
	if err := errors.Join(errList...); err != nil {
		return RecoverStalledOperationsCommand{}, err
	}

	return RecoverStalledOperationsCommand{olderThan: olderThan, batch: batch, guard: guard.NewConstructorGuard()}, nil
}

func (c RecoverStalledOperationsCommand) Validate() error {
	return c.guard.Validate(ErrRecoverStalledOperationsCommandIsNotConstructed)
}

func (c RecoverStalledOperationsCommand) OlderThan() time.Duration { return c.olderThan }
func (c RecoverStalledOperationsCommand) Batch() int               { return c.batch }
