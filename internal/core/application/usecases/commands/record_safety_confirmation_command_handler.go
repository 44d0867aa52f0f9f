package commands

import (
	"context"
	"log/slog"
	"time"

	"parcelshare/internal/core/domain/model/safety"
)

// RecordSafetyConfirmationCommandHandler records a checklist item and
// appends it to the audit log in the same transaction. Recording never
// changes the assignment status; it only unlocks pickup and delivery.
type RecordSafetyConfirmationCommandHandler struct {
	uowFactory UoWFactory
	logger     *slog.Logger
}

func NewRecordSafetyConfirmationCommandHandler(uowFactory UoWFactory, logger *slog.Logger) RecordSafetyConfirmationCommandHandler {
	return RecordSafetyConfirmationCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "safety_checklist"),
	}
}

// Handle returns the checklist status of the event after the recording.
func (h RecordSafetyConfirmationCommandHandler) Handle(
	ctx context.Context,
	command RecordSafetyConfirmationCommand,
) (safety.Status, error) {
	if err := command.Validate(); err != nil {
		return safety.StatusIncomplete, err
	}

	var rec safety.Recording
	err := inTx(ctx, h.uowFactory, func(uow UoW) error {
		a, err := uow.AssignmentRepository().Get(ctx, command.AssignmentID())
		if err != nil {
			return err
		}
		if err = a.CheckVersion(command.ExpectedVersion()); err != nil {
			return err
		}
		if _, err = a.PartyOf(command.ActorID()); err != nil {
			return err
		}

		now := time.Now()
		rec, err = a.RecordSafety(command.Event(), command.Item(), command.Value(), now)
		if err != nil {
			return err
		}

		entry, err := safety.NewAuditEntry(a.ID(), command.ActorID(), rec, now)
		if err != nil {
			return err
		}
		if err = uow.SafetyAuditRepository().Append(ctx, entry); err != nil {
			return err
		}

		return persistAssignment(ctx, uow, a)
	})
	if err != nil {
		return safety.StatusIncomplete, err
	}

	if rec.Correction {
		h.logger.WarnContext(ctx, "Safety checklist item withdrawn",
			"assignment_id", command.AssignmentID().String(),
			"actor_id", command.ActorID().String(),
			"event", rec.Event.String(),
			"item", rec.Item.String(),
			"status", rec.Status.String(),
		)
	}

	return rec.Status, nil
}
