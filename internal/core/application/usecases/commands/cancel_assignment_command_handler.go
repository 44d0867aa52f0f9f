package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
)

// CancelAssignmentCommandHandler cancels an assignment.
//
// An assignment that reserved nothing is cancelled at once. One that holds a
// reservation starts a REFUND: the payment is refunded or voided at the
// gateway, then capacity is returned and the package goes back to POSTED.
// While another gateway operation is in flight the request is queued and
// CancelQueued is returned.
type CancelAssignmentCommandHandler struct {
	uowFactory  UoWFactory
	coordinator *PaymentCoordinator
}

func NewCancelAssignmentCommandHandler(uowFactory UoWFactory, coordinator *PaymentCoordinator) CancelAssignmentCommandHandler {
	return CancelAssignmentCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
	}
}

func (h CancelAssignmentCommandHandler) Handle(
	ctx context.Context,
	command CancelAssignmentCommand,
) (assignment.CancelOutcome, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	var outcome assignment.CancelOutcome
	err := inTx(ctx, h.uowFactory, func(uow UoW) error {
		a, err := uow.AssignmentRepository().Get(ctx, command.AssignmentID())
		if err != nil {
			return err
		}
		if err = a.CheckVersion(command.ExpectedVersion()); err != nil {
			return err
		}

		party, err := a.PartyOf(command.ActorID())
		if err != nil {
			return err
		}

		now := time.Now()
		req, err := assignment.NewCancelRequest(command.ActorID(), party, command.Reason(), now)
		if err != nil {
			return err
		}

		if outcome, err = a.RequestCancel(req, now); err != nil {
			return err
		}
		return persistAssignment(ctx, uow, a)
	})
	if err != nil {
		return 0, err
	}

	if outcome == assignment.CancelAwaitingRefund {
		if err = h.coordinator.refund(ctx, command.AssignmentID(), nil); err != nil {
			return 0, err
		}
		outcome = assignment.CancelApplied
	}

	return outcome, nil
}
