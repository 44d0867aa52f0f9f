package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/services"
)

// ConfirmPickupCommandHandler reserves CONFIRMED -> IN_TRANSIT, commits, and
// captures the payment through the PaymentCoordinator. A capture that keeps
// failing returns a SettlementFailedError and leaves the assignment
// CONFIRMED so the pickup can be confirmed again.
type ConfirmPickupCommandHandler struct {
	uowFactory  UoWFactory
	coordinator *PaymentCoordinator
	escrow      services.Escrow
}

func NewConfirmPickupCommandHandler(
	uowFactory UoWFactory,
	coordinator *PaymentCoordinator,
	escrow services.Escrow,
) ConfirmPickupCommandHandler {
	return ConfirmPickupCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
		escrow:      escrow,
	}
}

func (h ConfirmPickupCommandHandler) Handle(ctx context.Context, command ConfirmPickupCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	var (
		gatewayTxnID string
		needsGateway bool
	)
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

		if err = a.BeginPickup(time.Now()); err != nil {
			return err
		}

		entries, err := uow.LedgerRepository().ListByAssignment(ctx, a.ID())
		if err != nil {
			return err
		}
		payment, started, err := h.escrow.BeginCapture(entries)
		if err != nil {
			return err
		}
		gatewayTxnID, needsGateway = payment.GatewayTxnID(), started

		if err = saveLedger(ctx, uow, entries); err != nil {
			return err
		}
		return persistAssignment(ctx, uow, a)
	})
	if err != nil {
		return err
	}

	return h.coordinator.capture(ctx, command.AssignmentID(), gatewayTxnID, needsGateway)
}
