package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for the assignment lifecycle. Typed errors below unwrap to them
// so callers can branch with errors.Is.
var (
	ErrInvalidState              = errors.New("invalid state")
	ErrAssignmentNotNegotiable   = errors.New("assignment is not negotiable")
	ErrPaymentAuthorization      = errors.New("payment authorization failed")
	ErrSettlementPrecondition    = errors.New("settlement precondition failed")
	ErrSettlementFailed          = errors.New("settlement failed")
	ErrConcurrentModification    = errors.New("concurrent modification")
	ErrChecklistIncomplete       = errors.New("checklist incomplete")
	ErrForbidden                 = errors.New("forbidden")
	ErrInsufficientTripCapacity  = errors.New("insufficient trip capacity")
	ErrPackageIncompatibleToTrip = errors.New("package is incompatible with trip")
)

// InvalidStateError is returned when an action is not legal from the current state.
type InvalidStateError struct {
	Entity string
	State  string
	Action string
	Cause  error
}

func NewInvalidStateError(entity string, state string, action string) *InvalidStateError {
	return &InvalidStateError{Entity: entity, State: state, Action: action}
}

func NewInvalidStateErrorWithCause(entity string, state string, action string, cause error) *InvalidStateError {
	return &InvalidStateError{Entity: entity, State: state, Action: action, Cause: cause}
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s %s in %s", ErrInvalidState, e.Action, e.Entity, e.State)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// Is matches the wrapped cause in addition to the sentinel returned by Unwrap.
func (e *InvalidStateError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// AssignmentNotNegotiableError is returned for negotiation actions on terminal
// or disputed assignments. It is a refinement of InvalidState and matches both
// sentinels.
type AssignmentNotNegotiableError struct {
	State string
}

func NewAssignmentNotNegotiableError(state string) *AssignmentNotNegotiableError {
	return &AssignmentNotNegotiableError{State: state}
}

func (e *AssignmentNotNegotiableError) Error() string {
	return fmt.Sprintf("%s: assignment is %s", ErrAssignmentNotNegotiable, e.State)
}

func (e *AssignmentNotNegotiableError) Unwrap() []error {
	return []error{ErrAssignmentNotNegotiable, ErrInvalidState}
}

// PaymentAuthorizationError is returned when the gateway rejects an authorization.
type PaymentAuthorizationError struct {
	Reason string
	Cause  error
}

func NewPaymentAuthorizationError(reason string) *PaymentAuthorizationError {
	return &PaymentAuthorizationError{Reason: reason}
}

func NewPaymentAuthorizationErrorWithCause(reason string, cause error) *PaymentAuthorizationError {
	return &PaymentAuthorizationError{Reason: reason, Cause: cause}
}

func (e *PaymentAuthorizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrPaymentAuthorization, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrPaymentAuthorization, e.Reason)
}

func (e *PaymentAuthorizationError) Unwrap() error {
	return ErrPaymentAuthorization
}

// Is matches the wrapped cause in addition to the sentinel returned by Unwrap.
func (e *PaymentAuthorizationError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// SettlementPreconditionError is returned when release or refund is attempted
// without the required prior transaction state.
type SettlementPreconditionError struct {
	Operation string
	Reason    string
}

func NewSettlementPreconditionError(operation string, reason string) *SettlementPreconditionError {
	return &SettlementPreconditionError{Operation: operation, Reason: reason}
}

func (e *SettlementPreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrSettlementPrecondition, e.Operation, e.Reason)
}

func (e *SettlementPreconditionError) Unwrap() error {
	return ErrSettlementPrecondition
}

// SettlementFailedError is a terminal gateway failure after bounded replay.
// The assignment stays in its pre-transition state and needs an operator.
type SettlementFailedError struct {
	Operation    string
	GatewayTxnID string
	Attempts     int
	Cause        error
}

func NewSettlementFailedError(operation string, gatewayTxnID string, attempts int, cause error) *SettlementFailedError {
	return &SettlementFailedError{
		Operation:    operation,
		GatewayTxnID: gatewayTxnID,
		Attempts:     attempts,
		Cause:        cause,
	}
}

func (e *SettlementFailedError) Error() string {
	return fmt.Sprintf("%s: %s of %s gave up after %d attempts (cause: %v)",
		ErrSettlementFailed, e.Operation, e.GatewayTxnID, e.Attempts, e.Cause)
}

func (e *SettlementFailedError) Unwrap() error {
	return ErrSettlementFailed
}

// Is matches the wrapped cause in addition to the sentinel returned by Unwrap.
func (e *SettlementFailedError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// ConcurrentModificationError is returned to the loser of an optimistic lock race.
type ConcurrentModificationError struct {
	Entity string
	ID     string
	Cause  error
}

func NewConcurrentModificationError(entity string, id string) *ConcurrentModificationError {
	return &ConcurrentModificationError{Entity: entity, ID: id}
}

func NewConcurrentModificationErrorWithCause(entity string, id string, cause error) *ConcurrentModificationError {
	return &ConcurrentModificationError{Entity: entity, ID: id, Cause: cause}
}

func (e *ConcurrentModificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s (cause: %v)", ErrConcurrentModification, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s", ErrConcurrentModification, e.Entity, e.ID)
}

func (e *ConcurrentModificationError) Unwrap() error {
	return ErrConcurrentModification
}

// Is matches the wrapped cause in addition to the sentinel returned by Unwrap.
func (e *ConcurrentModificationError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// ChecklistIncompleteError is returned when a gated transition is attempted
// before its safety checklist is complete.
type ChecklistIncompleteError struct {
	Event   string
	Status  string
	Missing []string
}

func NewChecklistIncompleteError(event string, status string, missing []string) *ChecklistIncompleteError {
	return &ChecklistIncompleteError{Event: event, Status: status, Missing: missing}
}

func (e *ChecklistIncompleteError) Error() string {
	return fmt.Sprintf("%s: %s checklist is %s, missing [%s]",
		ErrChecklistIncomplete, e.Event, e.Status, strings.Join(e.Missing, ", "))
}

func (e *ChecklistIncompleteError) Unwrap() error {
	return ErrChecklistIncomplete
}

// ForbiddenError is returned when the acting user is not allowed to perform an action.
type ForbiddenError struct {
	Action string
	Reason string
}

func NewForbiddenError(action string, reason string) *ForbiddenError {
	return &ForbiddenError{Action: action, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrForbidden, e.Action, e.Reason)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
