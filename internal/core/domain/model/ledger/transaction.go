package ledger

import (
	"errors"
	"fmt"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
)

// Type is the kind of money movement a transaction records.
type Type string

const (
	TypePayment    Type = "PAYMENT"
	TypeRefund     Type = "REFUND"
	TypePayout     Type = "PAYOUT"
	TypeCommission Type = "COMMISSION"
)

// Validate rejects types outside PAYMENT, REFUND, PAYOUT and COMMISSION.
func (t Type) Validate() error {
	switch t {
	case TypePayment, TypeRefund, TypePayout, TypeCommission:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("transaction type", fmt.Errorf("%q is not a known type", string(t)))
	}
}

// Status is where a transaction stands with the gateway. A PAYMENT moves
//
//	PENDING ──> PROCESSING ──> COMPLETED
//	PROCESSING ──> PENDING               (capture failed)
//	PENDING, PROCESSING ──> REFUNDED     (hold voided)
//
// FAILED is only written for a declined authorization. Refunds, payouts and
// commissions are written COMPLETED.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("transaction status", fmt.Errorf("%q is not a known status", string(s)))
	}
}

// IsFinal reports whether the status can no longer change.
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusRefunded
}

// Refs ties a transaction to the assignment it settles.
type Refs struct {
	AssignmentID kernel.UUID
	PackageID    kernel.UUID
	TripID       kernel.UUID
}

func (r Refs) validate() error {
	return errors.Join(r.AssignmentID.Validate(), r.PackageID.Validate(), r.TripID.Validate())
}

// Transaction is a single escrow ledger entry.
type Transaction struct {
	id           kernel.UUID
	refs         Refs
	kind         Type
	status       Status
	amount       kernel.Money
	platformFee  kernel.Money
	gatewayFee   kernel.Money
	netAmount    kernel.Money
	gatewayTxnID string
	failure      string
	createdAt    time.Time
	processedAt  *time.Time
	isNew        bool
	isDirty      bool
}

func newTransaction(refs Refs, kind Type, status Status, amount kernel.Money, gatewayTxnID string, now time.Time) (*Transaction, error) {
	if err := errors.Join(refs.validate(), kind.Validate(), status.Validate(), amount.Validate()); err != nil {
		return nil, err
	}
	zero, err := kernel.NewMoney(0, amount.Currency())
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		id:           kernel.NewUUID(),
		refs:         refs,
		kind:         kind,
		status:       status,
		amount:       amount,
		platformFee:  zero,
		gatewayFee:   zero,
		netAmount:    amount,
		gatewayTxnID: gatewayTxnID,
		createdAt:    now.UTC(),
		isNew:        true,
	}
	if status.IsFinal() {
		tx.processedAt = &tx.createdAt
	}
	return tx, nil
}

// NewPendingPayment records a successful authorization.
func NewPendingPayment(refs Refs, amount kernel.Money, gatewayTxnID string, now time.Time) (*Transaction, error) {
	if gatewayTxnID == "" {
		return nil, errs.NewValueIsRequiredError("gateway transaction id")
	}
	if !amount.IsPositive() {
		return nil, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%s is not greater than 0", amount))
	}
	return newTransaction(refs, TypePayment, StatusPending, amount, gatewayTxnID, now)
}

// NewFailedPayment records a rejected authorization for audit.
func NewFailedPayment(refs Refs, amount kernel.Money, reason string, now time.Time) (*Transaction, error) {
	tx, err := newTransaction(refs, TypePayment, StatusFailed, amount, "", now)
	if err != nil {
		return nil, err
	}
	tx.failure = reason
	return tx, nil
}

// NewRefund records money returned to the sender.
func NewRefund(refs Refs, amount kernel.Money, gatewayTxnID string, now time.Time) (*Transaction, error) {
	return newTransaction(refs, TypeRefund, StatusCompleted, amount, gatewayTxnID, now)
}

// NewPayout records the traveler's share.
func NewPayout(refs Refs, amount kernel.Money, now time.Time) (*Transaction, error) {
	return newTransaction(refs, TypePayout, StatusCompleted, amount, "", now)
}

// NewCommission records the platform fee retained on release.
func NewCommission(refs Refs, amount kernel.Money, now time.Time) (*Transaction, error) {
	return newTransaction(refs, TypeCommission, StatusCompleted, amount, "", now)
}

// Snapshot is the persisted form of a transaction.
type Snapshot struct {
	ID           kernel.UUID
	Refs         Refs
	Type         Type
	Status       Status
	Amount       kernel.Money
	PlatformFee  kernel.Money
	GatewayFee   kernel.Money
	NetAmount    kernel.Money
	GatewayTxnID string
	Failure      string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// RestoreTransaction rebuilds a transaction from persistence. The result is
// neither new nor dirty, so saving it again writes nothing.
func RestoreTransaction(s Snapshot) (*Transaction, error) {
	if err := errors.Join(
		s.ID.Validate(), s.Refs.validate(), s.Type.Validate(), s.Status.Validate(),
		s.Amount.Validate(), s.PlatformFee.Validate(), s.GatewayFee.Validate(), s.NetAmount.Validate(),
	); err != nil {
		return nil, err
	}

	return &Transaction{
		id:           s.ID,
		refs:         s.Refs,
		kind:         s.Type,
		status:       s.Status,
		amount:       s.Amount,
		platformFee:  s.PlatformFee,
		gatewayFee:   s.GatewayFee,
		netAmount:    s.NetAmount,
		gatewayTxnID: s.GatewayTxnID,
		failure:      s.Failure,
		createdAt:    s.CreatedAt,
		processedAt:  s.ProcessedAt,
	}, nil
}

func (t *Transaction) Snapshot() Snapshot {
	return Snapshot{
		ID:           t.id,
		Refs:         t.refs,
		Type:         t.kind,
		Status:       t.status,
		Amount:       t.amount,
		PlatformFee:  t.platformFee,
		GatewayFee:   t.gatewayFee,
		NetAmount:    t.netAmount,
		GatewayTxnID: t.gatewayTxnID,
		Failure:      t.failure,
		CreatedAt:    t.createdAt,
		ProcessedAt:  t.processedAt,
	}
}

func (t *Transaction) ID() kernel.UUID           { return t.id }
func (t *Transaction) Refs() Refs                { return t.refs }
func (t *Transaction) Type() Type                { return t.kind }
func (t *Transaction) Status() Status            { return t.status }
func (t *Transaction) Amount() kernel.Money      { return t.amount }
func (t *Transaction) PlatformFee() kernel.Money { return t.platformFee }
func (t *Transaction) GatewayFee() kernel.Money  { return t.gatewayFee }
func (t *Transaction) NetAmount() kernel.Money   { return t.netAmount }
func (t *Transaction) GatewayTxnID() string      { return t.gatewayTxnID }
func (t *Transaction) Failure() string           { return t.failure }
func (t *Transaction) CreatedAt() time.Time      { return t.createdAt }
func (t *Transaction) ProcessedAt() *time.Time   { return t.processedAt }

// IsNew reports whether the entry has not been persisted yet.
func (t *Transaction) IsNew() bool { return t.isNew }

// IsDirty reports whether a persisted entry changed status since loading.
func (t *Transaction) IsDirty() bool { return t.isDirty }

// MarkPersisted clears the change flags after a repository write.
func (t *Transaction) MarkPersisted() {
	t.isNew = false
	t.isDirty = false
}

// MarkProcessing flags a pending payment whose capture is in flight.
func (t *Transaction) MarkProcessing() error {
	if t.kind != TypePayment || t.status != StatusPending {
		return errs.NewInvalidStateError("transaction", string(t.status), "start processing")
	}
	t.status = StatusProcessing
	t.isDirty = true
	return nil
}

// RevertProcessing returns a processing payment to pending after a failed capture.
func (t *Transaction) RevertProcessing() error {
	if t.status != StatusProcessing {
		return errs.NewInvalidStateError("transaction", string(t.status), "revert processing")
	}
	t.status = StatusPending
	t.isDirty = true
	return nil
}

// Complete captures a payment with its fee split. The net amount is
// amount - platformFee - gatewayFee and must not be negative.
func (t *Transaction) Complete(platformFee, gatewayFee kernel.Money, now time.Time) error {
	if t.kind != TypePayment || (t.status != StatusPending && t.status != StatusProcessing) {
		return errs.NewInvalidStateError("transaction", string(t.status), "complete")
	}

	fees, err := platformFee.Add(gatewayFee)
	if err != nil {
		return err
	}
	net, err := t.amount.Sub(fees)
	if err != nil {
		return fmt.Errorf("fees exceed payment: %w", err)
	}

	processed := now.UTC()
	t.platformFee = platformFee
	t.gatewayFee = gatewayFee
	t.netAmount = net
	t.status = StatusCompleted
	t.processedAt = &processed
	t.isDirty = true
	return nil
}

// Void cancels a pending authorization.
func (t *Transaction) Void(now time.Time) error {
	if t.kind != TypePayment || (t.status != StatusPending && t.status != StatusProcessing) {
		return errs.NewInvalidStateError("transaction", string(t.status), "void")
	}

	processed := now.UTC()
	t.status = StatusRefunded
	t.processedAt = &processed
	t.isDirty = true
	return nil
}
