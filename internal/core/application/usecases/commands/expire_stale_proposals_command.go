package commands

import (
	"errors"
	"time"

	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var ErrExpireStaleProposalsCommandIsNotConstructed = errors.New(
	"ExpireStaleProposalsCommand must be created via NewExpireStaleProposalsCommand constructor",
)

// ExpireStaleProposalsCommand cancels negotiations nobody touched for ttl.
type ExpireStaleProposalsCommand struct {
	ttl   time.Duration
	batch int

	guard guard.ConstructorGuard
}

func NewExpireStaleProposalsCommand(ttl time.Duration, batch int) (ExpireStaleProposalsCommand, error) {
	var errList []error
	if ttl <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("ttl", ttl, time.Nanosecond, "unbounded"))
	}
	if batch <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("batch", batch, 1, "unbounded"))
	}
	if err := errors.Join(errList...); err != nil {
		return ExpireStaleProposalsCommand{}, err
	}

	return ExpireStaleProposalsCommand{ttl: ttl, batch: batch, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireStaleProposalsCommand) Validate() error {
	return c.guard.Validate(ErrExpireStaleProposalsCommandIsNotConstructed)
}

func (c ExpireStaleProposalsCommand) TTL() time.Duration { return c.ttl }
func (c ExpireStaleProposalsCommand) Batch() int         { return c.batch }
