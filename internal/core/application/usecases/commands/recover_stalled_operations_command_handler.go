package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parcelshare/internal/pkg/errs"
)

var ErrNoStalledOperations = errors.New("no stalled operations found")

// RecoverStalledOperationsCommandHandler finishes AUTHORIZE, CAPTURE and
// REFUND reservations whose request never got to finalize them. Each
// assignment is resumed on its own; a failure is logged and the sweep moves
// on.
type RecoverStalledOperationsCommandHandler struct {
	uowFactory  UoWFactory
	coordinator *PaymentCoordinator
	logger      *slog.Logger
}

func NewRecoverStalledOperationsCommandHandler(
	uowFactory UoWFactory,
	coordinator *PaymentCoordinator,
	logger *slog.Logger,
) RecoverStalledOperationsCommandHandler {
	return RecoverStalledOperationsCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
		logger:      logger.With("component", "operation_recovery"),
	}
}

// Handle returns how many assignments no longer wait on the gateway. A
// declined authorization still counts: the reservation was released.
func (h RecoverStalledOperationsCommandHandler) Handle(ctx context.Context, command RecoverStalledOperationsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-command.OlderThan())
	ids, err := h.uowFactory.Create().AssignmentRepository().ListStalled(ctx, cutoff, command.Batch())
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrNoStalledOperations
	}

	recovered := 0
	for _, id := range ids {
		err := h.coordinator.resume(ctx, id)
		if err != nil && !errors.Is(err, errs.ErrPaymentAuthorization) {
			h.logger.WarnContext(ctx, "Stalled operation not recovered", "assignment_id", id.String(), "error", err)
			continue
		}
		recovered++
	}

	return recovered, nil
}
