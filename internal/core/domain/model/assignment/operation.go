package assignment

import (
	"fmt"
	"strings"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
)

// Operation is the payment gateway call an assignment is waiting on. While
// an operation is in flight no other transition is accepted; a cancel is
// queued instead.
type Operation string

const (
	OperationNone      Operation = "NONE"
	OperationAuthorize Operation = "AUTHORIZE"
	OperationCapture   Operation = "CAPTURE"
	OperationRefund    Operation = "REFUND"
)

// ParseOperation reads the persisted pending operation column.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	switch op {
	case OperationNone, OperationAuthorize, OperationCapture, OperationRefund:
		return op, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("pending operation", fmt.Errorf("%q is not a known operation", s))
	}
}

func (o Operation) String() string {
	return string(o)
}

// ReasonExpired is the cancel reason used by the stale proposal sweep.
const ReasonExpired = "expired"

// CancelRequest is a cancellation waiting for an in-flight operation to end.
// RequestedBy is zero for system cancellations.
type CancelRequest struct {
	RequestedBy kernel.UUID
	Party       Party
	Reason      string
	RequestedAt time.Time
}

// NewCancelRequest builds a party-initiated cancellation.
func NewCancelRequest(by kernel.UUID, party Party, reason string, now time.Time) (CancelRequest, error) {
	if err := by.Validate(); err != nil {
		return CancelRequest{}, err
	}
	if err := party.Validate(); err != nil {
		return CancelRequest{}, err
	}
	return CancelRequest{RequestedBy: by, Party: party, Reason: normalizeReason(reason), RequestedAt: now.UTC()}, nil
}

// SystemCancelRequest builds a cancellation issued by a background job.
func SystemCancelRequest(reason string, now time.Time) CancelRequest {
	return CancelRequest{Reason: normalizeReason(reason), RequestedAt: now.UTC()}
}

// IsSystem reports whether the request came from a background job rather
// than a party.
func (r CancelRequest) IsSystem() bool {
	return r.RequestedBy.IsZero()
}

func normalizeReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "cancelled"
	}
	return reason
}

// CancelOutcome says what RequestCancel did.
type CancelOutcome int

const (
	// CancelApplied means the assignment is CANCELLED; nothing was reserved.
	CancelApplied CancelOutcome = iota + 1
	// CancelQueued means an operation is in flight; the request will be
	// re-evaluated when it finishes.
	CancelQueued
	// CancelAwaitingRefund means a REFUND operation was started; the caller
	// refunds at the gateway and then calls CompleteCancellation.
	CancelAwaitingRefund
)

func (o CancelOutcome) String() string {
	switch o {
	case CancelApplied:
		return "applied"
	case CancelQueued:
		return "queued"
	case CancelAwaitingRefund:
		return "awaiting_refund"
	default:
		return "unknown"
	}
}
