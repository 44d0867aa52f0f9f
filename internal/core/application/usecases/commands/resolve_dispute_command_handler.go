package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/services"
	"parcelshare/internal/pkg/errs"
)

// ResolveDisputeCommandHandler applies a verdict.
//
// RESOLVE_FORWARD resumes the assignment in the state it was disputed from.
// RESOLVE_CANCEL refunds the sender and cancels the assignment; the dispute
// stays UNDER_REVIEW until the refund went through, so a failed refund can be
// retried with the same verdict. When the refund was finished by the
// operation recovery sweep the assignment is already CANCELLED and the
// verdict only closes the dispute.
type ResolveDisputeCommandHandler struct {
	uowFactory  UoWFactory
	coordinator *PaymentCoordinator
	matcher     services.MatchMaker
}

func NewResolveDisputeCommandHandler(uowFactory UoWFactory, coordinator *PaymentCoordinator) ResolveDisputeCommandHandler {
	return ResolveDisputeCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
		matcher:     services.NewMatchMaker(),
	}
}

func (h ResolveDisputeCommandHandler) Handle(ctx context.Context, command ResolveDisputeCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	verdict, err := dispute.NewVerdict(command.Outcome(), command.Note(), command.ModeratorID(), time.Now())
	if err != nil {
		return err
	}

	var (
		assignmentID kernel.UUID
		settled      bool
	)
	err = inTx(ctx, h.uowFactory, func(uow UoW) error {
		d, err := uow.DisputeRepository().Get(ctx, command.DisputeID())
		if err != nil {
			return err
		}
		if d.IsResolved() {
			return errs.NewInvalidStateError("dispute", string(d.Status()), "resolve")
		}

		a, err := uow.AssignmentRepository().Get(ctx, d.AssignmentID())
		if err != nil {
			return err
		}
		assignmentID = a.ID()
		now := time.Now()

		if verdict.Outcome == dispute.OutcomeResolveCancel && a.Status() == assignment.Cancelled &&
			d.Status() == dispute.StatusUnderReview {
			settled = true
			if err = d.Resolve(verdict, now); err != nil {
				return err
			}
			return uow.DisputeRepository().Update(ctx, d)
		}

		if verdict.Outcome == dispute.OutcomeResolveCancel {
			if err = d.StartReview(now); err != nil {
				return err
			}
			if err = a.BeginDisputeCancellation(verdict.Note, now); err != nil {
				return err
			}
			if err = uow.DisputeRepository().Update(ctx, d); err != nil {
				return err
			}
			return persistAssignment(ctx, uow, a)
		}

		if err = a.ResumeFromDispute(d.PreviousStatus(), now); err != nil {
			return err
		}
		if err = d.Resolve(verdict, now); err != nil {
			return err
		}

		pkg, err := uow.ParcelRepository().Get(ctx, a.PackageID())
		if err != nil {
			return err
		}
		if err = h.matcher.Mirror(a, pkg, now); err != nil {
			return err
		}
		if err = uow.ParcelRepository().Update(ctx, pkg); err != nil {
			return err
		}
		if err = uow.DisputeRepository().Update(ctx, d); err != nil {
			return err
		}
		return persistAssignment(ctx, uow, a)
	})
	if err != nil || settled || verdict.Outcome != dispute.OutcomeResolveCancel {
		return err
	}

	return h.coordinator.refund(ctx, assignmentID, func(ctx context.Context, uow UoW, _ reservation, now time.Time) error {
		d, err := uow.DisputeRepository().Get(ctx, command.DisputeID())
		if err != nil {
			return err
		}
		if err = d.Resolve(verdict, now); err != nil {
			return err
		}
		return uow.DisputeRepository().Update(ctx, d)
	})
}
