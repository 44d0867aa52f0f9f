package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"parcelshare/internal/core/ports"
	"parcelshare/internal/pkg/errs"
)

// HandleGatewayCallbackCommandHandler reconciles gateway webhooks.
//
// A payment.captured callback books the capture if the synchronous call did
// not, and finishes a pickup that is still waiting on it. Authorizations and
// refunds are always finalized synchronously, so their callbacks are only
// acknowledged. Callbacks are de-duplicated by id; a callback that fails is
// forgotten so the gateway's redelivery is processed.
type HandleGatewayCallbackCommandHandler struct {
	uowFactory  UoWFactory
	coordinator *PaymentCoordinator
	deduper     ports.CallbackDeduper
	logger      *slog.Logger
}

func NewHandleGatewayCallbackCommandHandler(
	uowFactory UoWFactory,
	coordinator *PaymentCoordinator,
	deduper ports.CallbackDeduper,
	logger *slog.Logger,
) HandleGatewayCallbackCommandHandler {
	return HandleGatewayCallbackCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
		deduper:     deduper,
		logger:      logger.With("component", "gateway_callback"),
	}
}

func (h HandleGatewayCallbackCommandHandler) Handle(ctx context.Context, command HandleGatewayCallbackCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	key := "gateway-callback:" + command.CallbackID()
	first, err := h.deduper.FirstSeen(ctx, key)
	if err != nil {
		return err
	}
	if !first {
		h.logger.InfoContext(ctx, "Duplicate gateway callback ignored", "callback_id", command.CallbackID())
		return nil
	}

	if err = h.process(ctx, command); err != nil {
		if forgetErr := h.deduper.Forget(ctx, key); forgetErr != nil {
			err = errors.Join(err, forgetErr)
		}
		return err
	}
	return nil
}

func (h HandleGatewayCallbackCommandHandler) process(ctx context.Context, command HandleGatewayCallbackCommand) error {
	if command.Kind() != CallbackPaymentCaptured {
		h.logger.InfoContext(ctx, "Gateway callback acknowledged",
			"callback_id", command.CallbackID(), "kind", string(command.Kind()))
		return nil
	}

	return inTx(ctx, h.uowFactory, func(uow UoW) error {
		a, err := uow.AssignmentRepository().Get(ctx, command.AssignmentID())
		if err != nil {
			return err
		}
		entries, err := uow.LedgerRepository().ListByAssignment(ctx, a.ID())
		if err != nil {
			return err
		}

		payment := entries.Payment()
		if payment == nil || payment.GatewayTxnID() != command.GatewayTxnID() {
			return errs.NewValueIsInvalidErrorWithCause("gateway transaction id",
				fmt.Errorf("%s is not the payment of assignment %s", command.GatewayTxnID(), a.ID()))
		}

		return h.coordinator.completeCapture(ctx, uow, a, entries, time.Now())
	})
}
