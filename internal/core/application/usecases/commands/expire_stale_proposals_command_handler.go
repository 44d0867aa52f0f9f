package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
)

var ErrNoStaleProposals = errors.New("no stale proposals found")

// ExpireStaleProposalsCommandHandler cancels idle PROPOSED and NEGOTIATING
// assignments with reason "expired". Each assignment is cancelled in its
// own transaction; one that changed in the meantime is skipped.
type ExpireStaleProposalsCommandHandler struct {
	uowFactory UoWFactory
	logger     *slog.Logger
}

func NewExpireStaleProposalsCommandHandler(uowFactory UoWFactory, logger *slog.Logger) ExpireStaleProposalsCommandHandler {
	return ExpireStaleProposalsCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "proposal_expiry"),
	}
}

// Handle returns how many assignments were cancelled.
func (h ExpireStaleProposalsCommandHandler) Handle(ctx context.Context, command ExpireStaleProposalsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-command.TTL())
	ids, err := h.uowFactory.Create().AssignmentRepository().ListIdleSince(ctx, cutoff, command.Batch())
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrNoStaleProposals
	}

	expired := 0
	for _, id := range ids {
		ok, err := h.expire(ctx, id, command.TTL())
		if err != nil {
			h.logger.WarnContext(ctx, "Stale proposal not expired", "assignment_id", id.String(), "error", err)
			continue
		}
		if ok {
			expired++
		}
	}

	return expired, nil
}

func (h ExpireStaleProposalsCommandHandler) expire(ctx context.Context, id kernel.UUID, ttl time.Duration) (bool, error) {
	expired := false
	err := inTx(ctx, h.uowFactory, func(uow UoW) error {
		a, err := uow.AssignmentRepository().Get(ctx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		if !a.IsStale(now, ttl) {
			return nil
		}

		outcome, err := a.RequestCancel(assignment.SystemCancelRequest(assignment.ReasonExpired, now), now)
		if err != nil {
			return err
		}
		expired = outcome == assignment.CancelApplied
		return persistAssignment(ctx, uow, a)
	})
	return expired, err
}
