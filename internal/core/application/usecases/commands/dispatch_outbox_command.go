package commands

import (
	"errors"

	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var ErrDispatchOutboxCommandIsNotConstructed = errors.New(
	"DispatchOutboxCommand must be created via NewDispatchOutboxCommand constructor",
)

// DispatchOutboxCommand publishes up to batch pending notification events.
type DispatchOutboxCommand struct {
	batch int

	guard guard.ConstructorGuard
}

func NewDispatchOutboxCommand(batch int) (DispatchOutboxCommand, error) {
	if batch <= 0 {
		return DispatchOutboxCommand{}, errs.NewValueIsOutOfRangeError("batch", batch, 1, "unbounded")
	}
	return DispatchOutboxCommand{batch: batch, guard: guard.NewConstructorGuard()}, nil
}

func (c DispatchOutboxCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOutboxCommandIsNotConstructed)
}

func (c DispatchOutboxCommand) Batch() int { return c.batch }
