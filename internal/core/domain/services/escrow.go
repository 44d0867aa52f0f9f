package services

import (
	"errors"
	"fmt"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/pkg/errs"
)

const maxBasisPoints = 10000

// FeePolicy holds the platform and gateway fees in basis points (100 = 1%).
type FeePolicy struct {
	PlatformBps int64
	GatewayBps  int64
}

func NewFeePolicy(platformBps, gatewayBps int64) (FeePolicy, error) {
	var errList []error
	if platformBps < 0 || platformBps > maxBasisPoints {
		errList = append(errList, errs.NewValueIsOutOfRangeError("platform fee bps", platformBps, 0, maxBasisPoints))
	}
	if gatewayBps < 0 || gatewayBps > maxBasisPoints {
		errList = append(errList, errs.NewValueIsOutOfRangeError("gateway fee bps", gatewayBps, 0, maxBasisPoints))
	}
	if len(errList) == 0 && platformBps+gatewayBps > maxBasisPoints {
		errList = append(errList, errs.NewValueIsOutOfRangeError("total fee bps", platformBps+gatewayBps, 0, maxBasisPoints))
	}
	if err := errors.Join(errList...); err != nil {
		return FeePolicy{}, err
	}
	return FeePolicy{PlatformBps: platformBps, GatewayBps: gatewayBps}, nil
}

// Split computes the platform and gateway fees for amount.
func (p FeePolicy) Split(amount kernel.Money) (platformFee, gatewayFee kernel.Money, err error) {
	if platformFee, err = amount.BasisPoints(p.PlatformBps); err != nil {
		return kernel.Money{}, kernel.Money{}, err
	}
	if gatewayFee, err = amount.BasisPoints(p.GatewayBps); err != nil {
		return kernel.Money{}, kernel.Money{}, err
	}
	return platformFee, gatewayFee, nil
}

// Escrow applies the settlement rules to an assignment's ledger entries.
type Escrow struct {
	fees FeePolicy
}

func NewEscrow(fees FeePolicy) Escrow {
	return Escrow{fees: fees}
}

func (e Escrow) Fees() FeePolicy {
	return e.fees
}

// Authorize records the PENDING PAYMENT for an authorization in flight.
func (e Escrow) Authorize(entries ledger.Entries, a *assignment.Assignment, gatewayTxnID string, now time.Time) (*ledger.Transaction, error) {
	if a.PendingOperation() != assignment.OperationAuthorize {
		return nil, errs.NewSettlementPreconditionError("authorize", "no authorization in flight")
	}
	if payment := entries.Payment(); payment != nil && payment.Status() != ledger.StatusRefunded {
		return nil, errs.NewSettlementPreconditionError("authorize",
			fmt.Sprintf("payment %s is already %s", payment.ID(), payment.Status()))
	}
	return ledger.NewPendingPayment(refsOf(a), a.Negotiation().Price(), gatewayTxnID, now)
}

// DeclineAuthorization records a rejected authorization for audit.
func (e Escrow) DeclineAuthorization(a *assignment.Assignment, reason string, now time.Time) (*ledger.Transaction, error) {
	return ledger.NewFailedPayment(refsOf(a), a.Negotiation().Price(), reason, now)
}

// BeginCapture marks the payment PROCESSING. It returns false when the
// payment is already captured so the caller can skip the gateway.
func (e Escrow) BeginCapture(entries ledger.Entries) (*ledger.Transaction, bool, error) {
	payment := entries.Payment()
	if payment == nil {
		return nil, false, errs.NewSettlementPreconditionError("capture", "no authorized payment")
	}

	switch payment.Status() {
	case ledger.StatusCompleted:
		return payment, false, nil
	case ledger.StatusPending:
		return payment, true, payment.MarkProcessing()
	case ledger.StatusProcessing:
		return payment, true, nil
	default:
		return nil, false, errs.NewSettlementPreconditionError("capture",
			fmt.Sprintf("payment is %s", payment.Status()))
	}
}

// AbortCapture returns a PROCESSING payment to PENDING.
func (e Escrow) AbortCapture(entries ledger.Entries) error {
	payment := entries.Payment()
	if payment == nil || payment.Status() != ledger.StatusProcessing {
		return nil
	}
	return payment.RevertProcessing()
}

// Capture completes the payment with its fee split. Capturing an already
// COMPLETED payment is a no-op and reports false.
func (e Escrow) Capture(entries ledger.Entries, now time.Time) (*ledger.Transaction, bool, error) {
	payment := entries.Payment()
	if payment == nil {
		return nil, false, errs.NewSettlementPreconditionError("capture", "no authorized payment")
	}

	switch payment.Status() {
	case ledger.StatusCompleted:
		return payment, false, nil
	case ledger.StatusPending, ledger.StatusProcessing:
	default:
		return nil, false, errs.NewSettlementPreconditionError("capture",
			fmt.Sprintf("payment is %s", payment.Status()))
	}

	platformFee, gatewayFee, err := e.fees.Split(payment.Amount())
	if err != nil {
		return nil, false, err
	}
	if err = payment.Complete(platformFee, gatewayFee, now); err != nil {
		return nil, false, err
	}
	return payment, true, nil
}

// Settlement is the outcome of a release.
type Settlement struct {
	Payout     *ledger.Transaction
	Commission *ledger.Transaction
	Created    bool
}

// Release credits the traveler with the net amount and books the platform
// fee. A second release returns the existing payout.
func (e Escrow) Release(entries ledger.Entries, now time.Time) (Settlement, error) {
	if payout := entries.Payout(); payout != nil {
		return Settlement{Payout: payout, Commission: entries.Commission()}, nil
	}

	payment := entries.Payment()
	if payment == nil {
		return Settlement{}, errs.NewSettlementPreconditionError("release", "no payment")
	}
	if payment.Status() != ledger.StatusCompleted {
		return Settlement{}, errs.NewSettlementPreconditionError("release",
			fmt.Sprintf("payment is %s, not COMPLETED", payment.Status()))
	}

	refunded, err := entries.Refunded(payment.Amount().Currency())
	if err != nil {
		return Settlement{}, err
	}
	if !refunded.IsZero() {
		return Settlement{}, errs.NewSettlementPreconditionError("release",
			fmt.Sprintf("%s was already refunded", refunded))
	}

	payout, err := ledger.NewPayout(payment.Refs(), payment.NetAmount(), now)
	if err != nil {
		return Settlement{}, err
	}
	commission, err := ledger.NewCommission(payment.Refs(), payment.PlatformFee(), now)
	if err != nil {
		return Settlement{}, err
	}
	return Settlement{Payout: payout, Commission: commission, Created: true}, nil
}

// RefundPlan is what a refund will do, computed before calling the gateway.
type RefundPlan struct {
	Payment *ledger.Transaction
	Amount  kernel.Money
	Void    bool
}

// PlanRefund validates a refund. A nil amount refunds everything not yet
// refunded. A PENDING authorization can only be voided in full.
func (e Escrow) PlanRefund(entries ledger.Entries, amount *kernel.Money) (RefundPlan, error) {
	if entries.Payout() != nil {
		return RefundPlan{}, errs.NewSettlementPreconditionError("refund", "payout already released")
	}

	payment := entries.Payment()
	if payment == nil {
		return RefundPlan{}, errs.NewSettlementPreconditionError("refund", "no payment")
	}

	switch payment.Status() {
	case ledger.StatusPending, ledger.StatusProcessing:
		if amount != nil && !amount.IsEqual(payment.Amount()) {
			return RefundPlan{}, errs.NewValueIsInvalidErrorWithCause("refund amount",
				fmt.Errorf("a pending authorization of %s can only be voided in full", payment.Amount()))
		}
		return RefundPlan{Payment: payment, Amount: payment.Amount(), Void: true}, nil
	case ledger.StatusCompleted:
	default:
		return RefundPlan{}, errs.NewSettlementPreconditionError("refund",
			fmt.Sprintf("payment is %s", payment.Status()))
	}

	refunded, err := entries.Refunded(payment.Amount().Currency())
	if err != nil {
		return RefundPlan{}, err
	}
	remaining, err := payment.Amount().Sub(refunded)
	if err != nil {
		return RefundPlan{}, err
	}
	if remaining.IsZero() {
		return RefundPlan{}, errs.NewSettlementPreconditionError("refund", "payment already fully refunded")
	}

	if amount == nil {
		return RefundPlan{Payment: payment, Amount: remaining}, nil
	}
	if amount.Currency() != remaining.Currency() {
		return RefundPlan{}, errs.NewValueIsInvalidErrorWithCause("refund amount", kernel.ErrCurrencyMismatch)
	}
	if !amount.IsPositive() || amount.Minor() > remaining.Minor() {
		return RefundPlan{}, errs.NewValueIsOutOfRangeError("refund amount", amount.Minor(), 1, remaining.Minor())
	}
	return RefundPlan{Payment: payment, Amount: *amount}, nil
}

// Refund applies a plan after the gateway confirmed it: a pending payment is
// voided and a REFUND entry is written in both cases.
func (e Escrow) Refund(entries ledger.Entries, amount *kernel.Money, now time.Time) (*ledger.Transaction, error) {
	plan, err := e.PlanRefund(entries, amount)
	if err != nil {
		return nil, err
	}
	if plan.Void {
		if err = plan.Payment.Void(now); err != nil {
			return nil, err
		}
	}
	return ledger.NewRefund(plan.Payment.Refs(), plan.Amount, plan.Payment.GatewayTxnID(), now)
}

func refsOf(a *assignment.Assignment) ledger.Refs {
	return ledger.Refs{AssignmentID: a.ID(), PackageID: a.PackageID(), TripID: a.TripID()}
}
