package commands

import (
	"context"
	"errors"
	"time"

	"parcelshare/internal/core/ports"
	"parcelshare/internal/pkg/errs"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds how often an idempotent gateway call or a finalizing
// transaction is replayed.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        4,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// run calls op until it succeeds, returns an error retryable rejects, or
// runs out of tries. It reports how many times op was called.
func (p RetryPolicy) run(ctx context.Context, op func() error, retryable func(error) bool) (int, error) {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	tries := max(p.MaxTries, 1)

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		if err := op(); err != nil {
			if !retryable(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))

	return attempts, err
}

func isTransientGatewayError(err error) bool {
	return !errors.Is(err, ports.ErrGatewayRejected)
}

func isConcurrentModification(err error) bool {
	return errors.Is(err, errs.ErrConcurrentModification)
}
