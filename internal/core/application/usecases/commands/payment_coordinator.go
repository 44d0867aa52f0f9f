package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/core/domain/services"
	"parcelshare/internal/core/ports"
	"parcelshare/internal/pkg/errs"
)

// PaymentCoordinator runs the gateway side of assignment transitions.
//
// A transition that needs the gateway is split in three steps: the caller
// reserves it in a transaction (pendingOperation set, capacity held), the
// coordinator calls the gateway with no transaction open, then finalizes or
// rolls the reservation back in a second transaction. A cancel queued while
// the operation was in flight is re-evaluated afterwards.
//
// Once a reservation is committed the gateway call and the finalization run
// detached from the caller's context, bounded by OperationTimeout. A
// reservation left behind by a crash is picked up again by
// RecoverStalledOperationsCommandHandler.
type PaymentCoordinator struct {
	uowFactory UoWFactory
	gateway    ports.PaymentGateway
	matcher    services.MatchMaker
	escrow     services.Escrow
	retry      RetryPolicy
	logger     *slog.Logger
}

func NewPaymentCoordinator(
	uowFactory UoWFactory,
	gateway ports.PaymentGateway,
	escrow services.Escrow,
	retry RetryPolicy,
	logger *slog.Logger,
) *PaymentCoordinator {
	return &PaymentCoordinator{
		uowFactory: uowFactory,
		gateway:    gateway,
		matcher:    services.NewMatchMaker(),
		escrow:     escrow,
		retry:      retry,
		logger:     logger.With("component", "payment_coordinator"),
	}
}

// OperationTimeout bounds a gateway operation and its finalization once the
// reservation is committed.
const OperationTimeout = 2 * time.Minute

// detach keeps ctx values but not its cancellation.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), OperationTimeout)
}

// authorizeRequest is what the reserving transaction hands to authorize.
type authorizeRequest struct {
	assignmentID   kernel.UUID
	methodID       string
	amount         kernel.Money
	idempotencyKey string
}

// authorize holds the agreed price on the sender's payment method and
// completes NEGOTIATING -> MATCHED, or releases the reservation and reopens
// the negotiation when the gateway refuses.
func (c *PaymentCoordinator) authorize(ctx context.Context, req authorizeRequest) error {
	ctx, cancel := detach(ctx)
	defer cancel()

	var gatewayTxnID string
	attempts, callErr := c.retry.run(ctx, func() error {
		id, err := c.gateway.Authorize(ctx, req.methodID, req.amount, req.idempotencyKey)
		gatewayTxnID = id
		return err
	}, isTransientGatewayError)

	err := c.finalize(ctx, func(uow UoW) error {
		r, err := loadReservation(ctx, uow, req.assignmentID)
		if err != nil {
			return err
		}
		now := time.Now()

		entries, err := uow.LedgerRepository().ListByAssignment(ctx, req.assignmentID)
		if err != nil {
			return err
		}

		if callErr != nil {
			failed, err := c.escrow.DeclineAuthorization(r.assignment, callErr.Error(), now)
			if err != nil {
				return err
			}
			if err = r.assignment.AbortOperation(assignment.OperationAuthorize, now); err != nil {
				return err
			}
			if err = c.matcher.Unreserve(r.assignment, r.parcel, r.trip, now); err != nil {
				return err
			}
			if err = saveLedger(ctx, uow, append(entries, failed)); err != nil {
				return err
			}
			return r.save(ctx, uow)
		}

		payment, err := c.escrow.Authorize(entries, r.assignment, gatewayTxnID, now)
		if err != nil {
			return err
		}
		if err = r.assignment.CompleteAuthorization(now); err != nil {
			return err
		}
		if err = c.matcher.Finalize(r.assignment, r.parcel, now); err != nil {
			return err
		}
		if err = saveLedger(ctx, uow, append(entries, payment)); err != nil {
			return err
		}
		return r.save(ctx, uow)
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "Authorization could not be finalized",
			"assignment_id", req.assignmentID.String(), "gateway_txn_id", gatewayTxnID, "error", err)
		return err
	}

	c.runQueuedCancel(ctx, req.assignmentID)

	if callErr != nil {
		c.logger.WarnContext(ctx, "Payment authorization failed",
			"assignment_id", req.assignmentID.String(), "attempts", attempts, "error", callErr)
		return errs.NewPaymentAuthorizationErrorWithCause(callErr.Error(), callErr)
	}
	return nil
}

// capture takes the held payment and completes CONFIRMED -> IN_TRANSIT. When
// the gateway keeps failing the assignment stays CONFIRMED.
func (c *PaymentCoordinator) capture(ctx context.Context, assignmentID kernel.UUID, gatewayTxnID string, needsGateway bool) error {
	ctx, cancel := detach(ctx)
	defer cancel()

	var (
		attempts int
		callErr  error
	)
	if needsGateway {
		attempts, callErr = c.retry.run(ctx, func() error {
			return c.gateway.Capture(ctx, gatewayTxnID)
		}, isTransientGatewayError)
	}

	err := c.finalize(ctx, func(uow UoW) error {
		a, err := uow.AssignmentRepository().Get(ctx, assignmentID)
		if err != nil {
			return err
		}
		entries, err := uow.LedgerRepository().ListByAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		now := time.Now()

		if callErr != nil {
			if a.PendingOperation() != assignment.OperationCapture {
				return nil
			}
			if err = c.escrow.AbortCapture(entries); err != nil {
				return err
			}
			if err = a.AbortOperation(assignment.OperationCapture, now); err != nil {
				return err
			}
			if err = saveLedger(ctx, uow, entries); err != nil {
				return err
			}
			return persistAssignment(ctx, uow, a)
		}

		return c.completeCapture(ctx, uow, a, entries, now)
	})
	if err != nil {
		return err
	}

	c.runQueuedCancel(ctx, assignmentID)

	if callErr != nil {
		c.logger.ErrorContext(ctx, "Payment capture failed",
			"assignment_id", assignmentID.String(), "gateway_txn_id", gatewayTxnID, "attempts", attempts, "error", callErr)
		return errs.NewSettlementFailedError("capture", gatewayTxnID, attempts, callErr)
	}
	return nil
}

// completeCapture books the capture and, when the pickup is still waiting on
// it, moves the assignment to IN_TRANSIT. It is shared with the gateway
// callback, so an assignment that already moved is left alone.
func (c *PaymentCoordinator) completeCapture(
	ctx context.Context, uow UoW, a *assignment.Assignment, entries ledger.Entries, now time.Time,
) error {
	if _, _, err := c.escrow.Capture(entries, now); err != nil {
		return err
	}
	if err := saveLedger(ctx, uow, entries); err != nil {
		return err
	}
	if a.PendingOperation() != assignment.OperationCapture {
		return nil
	}

	if err := a.CompletePickup(now); err != nil {
		return err
	}
	pkg, err := uow.ParcelRepository().Get(ctx, a.PackageID())
	if err != nil {
		return err
	}
	if err = c.matcher.Mirror(a, pkg, now); err != nil {
		return err
	}
	if err = uow.ParcelRepository().Update(ctx, pkg); err != nil {
		return err
	}
	return persistAssignment(ctx, uow, a)
}

// completeFunc runs inside the transaction that finalizes a refund.
type completeFunc func(ctx context.Context, uow UoW, r reservation, now time.Time) error

// refund returns the sender's money for an assignment with a pending REFUND
// and completes the cancellation. A pending authorization is voided in full.
func (c *PaymentCoordinator) refund(ctx context.Context, assignmentID kernel.UUID, onComplete completeFunc) error {
	ctx, cancel := detach(ctx)
	defer cancel()

	entries, err := c.readLedger(ctx, assignmentID)
	if err != nil {
		return err
	}

	plan, planErr := c.escrow.PlanRefund(entries, nil)

	var (
		attempts int
		callErr  = planErr
	)
	if planErr == nil {
		attempts, callErr = c.retry.run(ctx, func() error {
			return c.gateway.Refund(ctx, plan.Payment.GatewayTxnID(), plan.Amount)
		}, isTransientGatewayError)
	}

	err = c.finalize(ctx, func(uow UoW) error {
		r, err := loadReservation(ctx, uow, assignmentID)
		if err != nil {
			return err
		}
		now := time.Now()

		if callErr != nil {
			if err = r.assignment.AbortOperation(assignment.OperationRefund, now); err != nil {
				return err
			}
			return persistAssignment(ctx, uow, r.assignment)
		}

		entries, err := uow.LedgerRepository().ListByAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		refund, err := c.escrow.Refund(entries, nil, now)
		if err != nil {
			return err
		}
		if err = r.assignment.CompleteCancellation(now); err != nil {
			return err
		}
		if err = c.matcher.Unreserve(r.assignment, r.parcel, r.trip, now); err != nil {
			return err
		}
		if err = saveLedger(ctx, uow, append(entries, refund)); err != nil {
			return err
		}
		if onComplete != nil {
			if err = onComplete(ctx, uow, r, now); err != nil {
				return err
			}
		}
		return r.save(ctx, uow)
	})
	if err != nil {
		return err
	}

	switch {
	case planErr != nil:
		return planErr
	case callErr != nil:
		txnID := ""
		if plan.Payment != nil {
			txnID = plan.Payment.GatewayTxnID()
		}
		c.logger.ErrorContext(ctx, "Refund failed",
			"assignment_id", assignmentID.String(), "gateway_txn_id", txnID, "attempts", attempts, "error", callErr)
		return errs.NewSettlementFailedError("refund", txnID, attempts, callErr)
	}
	return nil
}

// runQueuedCancel re-evaluates a cancel that arrived while an operation was
// in flight. Failures are logged: the operation that just finished stands.
func (c *PaymentCoordinator) runQueuedCancel(ctx context.Context, assignmentID kernel.UUID) {
	outcome, err := c.applyQueuedCancel(ctx, assignmentID)
	if err != nil {
		c.logger.ErrorContext(ctx, "Queued cancel could not be applied",
			"assignment_id", assignmentID.String(), "error", err)
		return
	}
	if outcome != assignment.CancelAwaitingRefund {
		return
	}
	if err = c.refund(ctx, assignmentID, nil); err != nil {
		c.logger.ErrorContext(ctx, "Queued cancel refund failed",
			"assignment_id", assignmentID.String(), "error", err)
	}
}

func (c *PaymentCoordinator) applyQueuedCancel(ctx context.Context, assignmentID kernel.UUID) (assignment.CancelOutcome, error) {
	var outcome assignment.CancelOutcome
	err := c.finalize(ctx, func(uow UoW) error {
		outcome = 0
		a, err := uow.AssignmentRepository().Get(ctx, assignmentID)
		if err != nil {
			return err
		}
		req := a.TakeQueuedCancel()
		if req == nil {
			return nil
		}

		outcome, err = a.RequestCancel(*req, time.Now())
		if errors.Is(err, errs.ErrInvalidState) {
			// The operation moved the assignment past the point where it
			// can be cancelled; the request is dropped.
			c.logger.WarnContext(ctx, "Queued cancel dropped",
				"assignment_id", assignmentID.String(), "status", a.Status().String(), "reason", req.Reason)
			outcome = 0
			return persistAssignment(ctx, uow, a)
		}
		if err != nil {
			return err
		}
		return persistAssignment(ctx, uow, a)
	})
	return outcome, err
}

// finalize runs fn in its own transaction, replaying it when it loses a
// serialization race.
func (c *PaymentCoordinator) finalize(ctx context.Context, fn func(uow UoW) error) error {
	_, err := c.retry.run(ctx, func() error {
		return inTx(ctx, c.uowFactory, fn)
	}, isConcurrentModification)
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

// resume re-drives the operation an assignment is still waiting on, for
// reservations whose request died between the gateway call and the
// finalization. The gateway sees the same idempotency key (AUTHORIZE) or the
// same gateway transaction id (CAPTURE, REFUND), so nothing is charged twice.
//
// A REFUND started by a RESOLVE_CANCEL verdict cancels the assignment but
// leaves the dispute under review; re-issuing the verdict closes it.
func (c *PaymentCoordinator) resume(ctx context.Context, assignmentID kernel.UUID) error {
	uow := c.uowFactory.Create()
	a, err := uow.AssignmentRepository().Get(ctx, assignmentID)
	if err != nil {
		return err
	}
	entries, err := uow.LedgerRepository().ListByAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}

	c.logger.WarnContext(ctx, "Resuming stalled operation",
		"assignment_id", assignmentID.String(), "operation", a.PendingOperation().String(), "status", a.Status().String())

	switch a.PendingOperation() {
	case assignment.OperationAuthorize:
		pkg, err := uow.ParcelRepository().Get(ctx, a.PackageID())
		if err != nil {
			return err
		}
		return c.authorize(ctx, newAuthorizeRequest(a, pkg.PaymentMethodID(), entries))
	case assignment.OperationCapture:
		payment := entries.Payment()
		if payment == nil {
			return errs.NewSettlementPreconditionError("capture", "no payment to capture")
		}
		return c.capture(ctx, assignmentID, payment.GatewayTxnID(), true)
	case assignment.OperationRefund:
		return c.refund(ctx, assignmentID, nil)
	default:
		return nil
	}
}

// newAuthorizeRequest keys the authorization by assignment and attempt, so
// a replay of the same attempt reuses the gateway's hold.
func newAuthorizeRequest(a *assignment.Assignment, methodID string, entries ledger.Entries) authorizeRequest {
	attempt := entries.Count(ledger.TypePayment, ledger.StatusFailed) + 1
	return authorizeRequest{
		assignmentID:   a.ID(),
		methodID:       methodID,
		amount:         a.Negotiation().Price(),
		idempotencyKey: fmt.Sprintf("authorize:%s:%d", a.ID(), attempt),
	}
}

// readLedger reads outside of a transaction; the entries only feed the
// refund plan and are reloaded under lock before anything is written.
func (c *PaymentCoordinator) readLedger(ctx context.Context, assignmentID kernel.UUID) (ledger.Entries, error) {
	return c.uowFactory.Create().LedgerRepository().ListByAssignment(ctx, assignmentID)
}
