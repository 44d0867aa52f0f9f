package assignment

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"
)

// ErrAssignmentIsNotConstructed is returned for an Assignment not created
// through NewAssignment or RestoreAssignment.
var ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment constructor")

const entityName = "assignment"

// Refs identifies the package, trip and both parties of an assignment.
type Refs struct {
	PackageID  kernel.UUID
	TripID     kernel.UUID
	SenderID   kernel.UUID
	TravelerID kernel.UUID
}

func (r Refs) validate() error {
	var errList []error
	for name, id := range map[string]kernel.UUID{
		"package id":  r.PackageID,
		"trip id":     r.TripID,
		"sender id":   r.SenderID,
		"traveler id": r.TravelerID,
	} {
		if err := id.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause(name, err))
		}
	}
	if len(errList) == 0 && r.SenderID.IsEqual(r.TravelerID) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("traveler id",
			errors.New("sender cannot carry their own package")))
	}
	return errors.Join(errList...)
}

// Assignment binds one package to one trip and is the single source of truth
// for the lifecycle of that binding.
//
// Invariants:
//   - agreedPrice is set exactly once, when both parties confirmed the same
//     proposal and authorization succeeded; it never changes afterwards
//   - a new proposal resets both price confirmations
//   - while an operation is in flight (pendingOperation != NONE) only a
//     cancel is accepted, and it is queued
//   - a DISPUTED assignment moves only through a verdict
//   - the package status and trip capacity are changed only as a side effect
//     of the assignment's own transitions
type Assignment struct {
	id     kernel.UUID
	refs   Refs
	status Status

	negotiation Negotiation
	agreedPrice *kernel.Money

	acceptedBySender   bool
	acceptedByTraveler bool

	checklist    safety.Checklist
	cancelReason string

	pending      Operation
	queuedCancel *CancelRequest

	version   int64
	createdAt time.Time
	updatedAt time.Time

	events []Event

	isConstructed bool
}

// NewAssignment creates a PROPOSED assignment whose opening offer is the
// package's offered price.
func NewAssignment(id kernel.UUID, refs Refs, opening kernel.Money, openedBy Party, now time.Time) (*Assignment, error) {
	if err := errors.Join(id.Validate(), refs.validate(), opening.Validate(), openedBy.Validate()); err != nil {
		return nil, err
	}
	if !opening.IsPositive() {
		return nil, errs.NewValueIsInvalidErrorWithCause("opening price", fmt.Errorf("%s is not greater than 0", opening))
	}

	a := &Assignment{
		id:            id,
		refs:          refs,
		status:        Proposed,
		negotiation:   Proposal(openedBy, opening, ""),
		pending:       OperationNone,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}
	a.record(EventProposed, now, map[string]string{
		"proposed_by":    openedBy.String(),
		"proposed_price": strconv.FormatInt(opening.Minor(), 10),
		"currency":       opening.Currency(),
	})

	return a, nil
}

// State is the full persisted form of an assignment.
type State struct {
	ID                  kernel.UUID
	Refs                Refs
	Status              Status
	ProposedPrice       kernel.Money
	ProposedBy          Party
	ProposalNote        string
	ConfirmedBySender   bool
	ConfirmedByTraveler bool
	AgreedPrice         *kernel.Money
	AcceptedBySender    bool
	AcceptedByTraveler  bool
	Checklist           safety.Checklist
	CancelReason        string
	PendingOperation    Operation
	QueuedCancel        *CancelRequest
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RestoreAssignment rebuilds an assignment from persistence.
func RestoreAssignment(s State) (*Assignment, error) {
	if err := errors.Join(
		s.ID.Validate(), s.Refs.validate(), s.Status.Validate(), s.ProposedPrice.Validate(), s.ProposedBy.Validate(),
	); err != nil {
		return nil, err
	}
	if _, err := ParseOperation(string(s.PendingOperation)); err != nil {
		return nil, err
	}
	if s.Status.HoldsReservation() && s.AgreedPrice == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("assignment",
			fmt.Errorf("status %s requires an agreed price", s.Status))
	}

	return &Assignment{
		id:     s.ID,
		refs:   s.Refs,
		status: s.Status,
		negotiation: RestoreNegotiation(
			s.ProposedPrice, s.ProposedBy, s.ProposalNote, s.ConfirmedBySender, s.ConfirmedByTraveler,
		),
		agreedPrice:        s.AgreedPrice,
		acceptedBySender:   s.AcceptedBySender,
		acceptedByTraveler: s.AcceptedByTraveler,
		checklist:          s.Checklist,
		cancelReason:       s.CancelReason,
		pending:            s.PendingOperation,
		queuedCancel:       s.QueuedCancel,
		version:            s.Version,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
		isConstructed:      true,
	}, nil
}

// State exports the assignment for persistence and read models.
func (a *Assignment) State() State {
	return State{
		ID:                  a.id,
		Refs:                a.refs,
		Status:              a.status,
		ProposedPrice:       a.negotiation.Price(),
		ProposedBy:          a.negotiation.ProposedBy(),
		ProposalNote:        a.negotiation.Note(),
		ConfirmedBySender:   a.negotiation.ConfirmedBySender(),
		ConfirmedByTraveler: a.negotiation.ConfirmedByTraveler(),
		AgreedPrice:         a.agreedPrice,
		AcceptedBySender:    a.acceptedBySender,
		AcceptedByTraveler:  a.acceptedByTraveler,
		Checklist:           a.checklist,
		CancelReason:        a.cancelReason,
		PendingOperation:    a.pending,
		QueuedCancel:        a.queuedCancel,
		Version:             a.version,
		CreatedAt:           a.createdAt,
		UpdatedAt:           a.updatedAt,
	}
}

// Validate ensures the assignment was built by NewAssignment or
// RestoreAssignment. Repositories call it before every write.
//
// Returns:
//   - nil if the assignment is valid
//   - ErrAssignmentIsNotConstructed for a zero or nil value
func (a *Assignment) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAssignmentIsNotConstructed
	}
	return nil
}

func (a *Assignment) ID() kernel.UUID              { return a.id }
func (a *Assignment) Refs() Refs                   { return a.refs }
func (a *Assignment) PackageID() kernel.UUID       { return a.refs.PackageID }
func (a *Assignment) TripID() kernel.UUID          { return a.refs.TripID }
func (a *Assignment) Status() Status               { return a.status }
func (a *Assignment) Negotiation() Negotiation     { return a.negotiation }
func (a *Assignment) AgreedPrice() *kernel.Money   { return a.agreedPrice }
func (a *Assignment) Checklist() safety.Checklist  { return a.checklist }
func (a *Assignment) CancelReason() string         { return a.cancelReason }
func (a *Assignment) PendingOperation() Operation  { return a.pending }
func (a *Assignment) QueuedCancel() *CancelRequest { return a.queuedCancel }
func (a *Assignment) Version() int64               { return a.version }
func (a *Assignment) UpdatedAt() time.Time         { return a.updatedAt }

// IncrementVersion is called by the repository after a successful versioned write.
func (a *Assignment) IncrementVersion() {
	a.version++
}

// CheckVersion compares the caller's expected version, if any, with the
// loaded one.
func (a *Assignment) CheckVersion(expected *int64) error {
	if expected == nil || *expected == a.version {
		return nil
	}
	return errs.NewConcurrentModificationErrorWithCause(entityName, a.id.String(),
		fmt.Errorf("expected version %d, current version %d", *expected, a.version))
}

// PartyOf resolves which side userID acts for.
func (a *Assignment) PartyOf(userID kernel.UUID) (Party, error) {
	switch {
	case a.refs.SenderID.IsEqual(userID):
		return PartySender, nil
	case a.refs.TravelerID.IsEqual(userID):
		return PartyTraveler, nil
	default:
		return "", errs.NewForbiddenError("act on assignment", "user is not a participant")
	}
}

// HoldsReservation reports whether trip capacity and the package binding
// belong to this assignment, including while authorization is in flight.
func (a *Assignment) HoldsReservation() bool {
	return a.status.HoldsReservation() || a.pending == OperationAuthorize
}

// Propose replaces the current offer. The first negotiation action moves a
// PROPOSED assignment to NEGOTIATING.
func (a *Assignment) Propose(by Party, price kernel.Money, note string, now time.Time) error {
	if err := a.checkNegotiable("propose price on"); err != nil {
		return err
	}
	if err := errors.Join(by.Validate(), price.Validate()); err != nil {
		return err
	}
	if price.Currency() != a.negotiation.Price().Currency() {
		return errs.NewValueIsInvalidErrorWithCause("price",
			fmt.Errorf("%w: assignment is priced in %s", kernel.ErrCurrencyMismatch, a.negotiation.Price().Currency()))
	}
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%s is not greater than 0", price))
	}

	a.status = Negotiating
	a.negotiation = Proposal(by, price, note)
	a.touch(now)
	return nil
}

// ConfirmPrice records by's agreement with the current offer and reports
// whether both parties have now confirmed it.
func (a *Assignment) ConfirmPrice(by Party, now time.Time) (bool, error) {
	if err := a.checkNegotiable("confirm price on"); err != nil {
		return false, err
	}
	if err := by.Validate(); err != nil {
		return false, err
	}

	a.status = Negotiating
	a.negotiation = a.negotiation.Confirm(by)
	a.touch(now)
	return a.negotiation.IsAgreed(), nil
}

// BeginAuthorization reserves the NEGOTIATING -> MATCHED transition while the
// gateway authorizes the agreed offer.
func (a *Assignment) BeginAuthorization(now time.Time) error {
	if a.status != Negotiating {
		return errs.NewInvalidStateError(entityName, a.status.String(), "authorize")
	}
	if err := a.checkIdle(); err != nil {
		return err
	}
	if !a.negotiation.IsAgreed() {
		return errs.NewInvalidStateErrorWithCause(entityName, a.status.String(), "authorize",
			errors.New("both parties must confirm the price"))
	}

	a.pending = OperationAuthorize
	a.touch(now)
	return nil
}

// CompleteAuthorization sets the agreed price and moves to MATCHED.
func (a *Assignment) CompleteAuthorization(now time.Time) error {
	if err := a.checkPending(OperationAuthorize); err != nil {
		return err
	}
	if a.agreedPrice != nil {
		return errs.NewInvalidStateErrorWithCause(entityName, a.status.String(), "agree price",
			fmt.Errorf("agreed price already set to %s", a.agreedPrice))
	}

	price := a.negotiation.Price()
	a.agreedPrice = &price
	a.status = Matched
	a.pending = OperationNone
	a.touch(now)
	a.record(EventMatched, now, map[string]string{
		"agreed_price": strconv.FormatInt(price.Minor(), 10),
		"currency":     price.Currency(),
	})
	return nil
}

// FailAuthorization abandons the reserved transition. The offer stays but
// both confirmations are cleared so the parties can retry.
func (a *Assignment) FailAuthorization(now time.Time) error {
	if err := a.checkPending(OperationAuthorize); err != nil {
		return err
	}

	a.pending = OperationNone
	a.negotiation = a.negotiation.Reopen()
	a.touch(now)
	return nil
}

// Accept records by's acceptance of a MATCHED assignment and reports whether
// it moved to CONFIRMED.
func (a *Assignment) Accept(by Party, now time.Time) (bool, error) {
	if a.status != Matched {
		return false, errs.NewInvalidStateError(entityName, a.status.String(), "accept")
	}
	if err := errors.Join(by.Validate(), a.checkIdle()); err != nil {
		return false, err
	}

	switch by {
	case PartySender:
		a.acceptedBySender = true
	case PartyTraveler:
		a.acceptedByTraveler = true
	}
	if a.acceptedBySender && a.acceptedByTraveler {
		a.status = Confirmed
	}
	a.touch(now)
	return a.status == Confirmed, nil
}

func (a *Assignment) AcceptedBySender() bool   { return a.acceptedBySender }
func (a *Assignment) AcceptedByTraveler() bool { return a.acceptedByTraveler }

// RecordSafety records one checklist item. It never changes the status.
func (a *Assignment) RecordSafety(event safety.Event, item safety.Item, value bool, now time.Time) (safety.Recording, error) {
	if err := event.Validate(); err != nil {
		return safety.Recording{}, err
	}
	if !a.status.AllowsChecklist(event) {
		return safety.Recording{}, errs.NewInvalidStateError(entityName, a.status.String(), "record "+event.String()+" checklist on")
	}
	if event == safety.EventPickup && a.pending == OperationCapture {
		return safety.Recording{}, a.inFlightError()
	}

	checklist, rec, err := a.checklist.Record(event, item, value)
	if err != nil {
		return safety.Recording{}, err
	}

	a.checklist = checklist
	a.touch(now)
	if rec.BecameComplete() {
		a.record(EventSafetyGateComplete, now, map[string]string{"event": event.String()})
	}
	return rec, nil
}

// BeginPickup checks the PICKUP gate and reserves CONFIRMED -> IN_TRANSIT
// while the payment is captured.
func (a *Assignment) BeginPickup(now time.Time) error {
	if a.status != Confirmed {
		return errs.NewInvalidStateError(entityName, a.status.String(), "confirm pickup of")
	}
	if err := a.checkIdle(); err != nil {
		return err
	}
	if err := a.checklist.Require(safety.EventPickup); err != nil {
		return err
	}

	a.pending = OperationCapture
	a.touch(now)
	return nil
}

// CompletePickup moves to IN_TRANSIT after a successful capture.
func (a *Assignment) CompletePickup(now time.Time) error {
	if err := a.checkPending(OperationCapture); err != nil {
		return err
	}

	a.status = InTransit
	a.pending = OperationNone
	a.touch(now)
	return nil
}

// CheckDelivery reports why the assignment cannot be delivered yet, if at all.
func (a *Assignment) CheckDelivery() error {
	if a.status != InTransit {
		return errs.NewInvalidStateError(entityName, a.status.String(), "confirm delivery of")
	}
	if err := a.checkIdle(); err != nil {
		return err
	}
	return a.checklist.Require(safety.EventDelivery)
}

// ConfirmDelivery checks the DELIVERY gate and moves to DELIVERED. Release is
// a ledger-only operation so no gateway call is reserved.
func (a *Assignment) ConfirmDelivery(payout kernel.Money, now time.Time) error {
	if err := a.CheckDelivery(); err != nil {
		return err
	}

	a.status = Delivered
	a.touch(now)
	a.record(EventSettlementCompleted, now, map[string]string{
		"payout":   strconv.FormatInt(payout.Minor(), 10),
		"currency": payout.Currency(),
	})
	return nil
}

// RequestCancel applies, queues or starts a cancellation depending on the
// state and on whether an operation is in flight.
func (a *Assignment) RequestCancel(req CancelRequest, now time.Time) (CancelOutcome, error) {
	if !a.status.IsCancellable() {
		return 0, errs.NewInvalidStateError(entityName, a.status.String(), "cancel")
	}

	switch a.pending {
	case OperationRefund:
		return 0, errs.NewConcurrentModificationErrorWithCause(entityName, a.id.String(),
			errors.New("cancellation already in progress"))
	case OperationAuthorize, OperationCapture:
		queued := req
		a.queuedCancel = &queued
		a.touch(now)
		return CancelQueued, nil
	}

	if !a.HoldsReservation() {
		a.cancel(req.Reason, now)
		return CancelApplied, nil
	}

	a.pending = OperationRefund
	a.cancelReason = req.Reason
	a.touch(now)
	return CancelAwaitingRefund, nil
}

// TakeQueuedCancel returns and clears a cancel queued behind an operation.
func (a *Assignment) TakeQueuedCancel() *CancelRequest {
	req := a.queuedCancel
	a.queuedCancel = nil
	return req
}

// CompleteCancellation finishes a cancellation once the refund went through.
func (a *Assignment) CompleteCancellation(now time.Time) error {
	if err := a.checkPending(OperationRefund); err != nil {
		return err
	}
	a.cancel(a.cancelReason, now)
	return nil
}

// AbortOperation releases a CAPTURE or REFUND reservation after a terminal
// gateway failure; the assignment stays in its pre-transition state.
func (a *Assignment) AbortOperation(op Operation, now time.Time) error {
	if op == OperationAuthorize {
		return a.FailAuthorization(now)
	}
	if err := a.checkPending(op); err != nil {
		return err
	}

	a.pending = OperationNone
	if op == OperationRefund {
		a.cancelReason = ""
	}
	a.touch(now)
	return nil
}

// RaiseDispute freezes the assignment and returns the state to resume to.
func (a *Assignment) RaiseDispute(now time.Time) (Status, error) {
	if !a.status.IsDisputable() {
		return Unknown, errs.NewInvalidStateError(entityName, a.status.String(), "dispute")
	}
	if err := a.checkIdle(); err != nil {
		return Unknown, err
	}

	previous := a.status
	a.status = Disputed
	a.touch(now)
	a.record(EventDisputed, now, map[string]string{"previous_status": previous.String()})
	return previous, nil
}

// ResumeFromDispute pops the pre-dispute state back.
func (a *Assignment) ResumeFromDispute(previous Status, now time.Time) error {
	if a.status != Disputed {
		return errs.NewInvalidStateError(entityName, a.status.String(), "resume")
	}
	if !previous.IsDisputable() {
		return errs.NewValueIsInvalidErrorWithCause("previous status",
			fmt.Errorf("%s cannot be resumed to", previous))
	}
	if err := a.checkIdle(); err != nil {
		return err
	}

	a.status = previous
	a.touch(now)
	return nil
}

// BeginDisputeCancellation starts the RESOLVE_CANCEL verdict path.
func (a *Assignment) BeginDisputeCancellation(reason string, now time.Time) error {
	if a.status != Disputed {
		return errs.NewInvalidStateError(entityName, a.status.String(), "cancel by verdict")
	}
	if err := a.checkIdle(); err != nil {
		return err
	}

	a.pending = OperationRefund
	a.cancelReason = normalizeReason(reason)
	a.touch(now)
	return nil
}

// IsStale reports whether a negotiation has been idle for longer than ttl.
func (a *Assignment) IsStale(now time.Time, ttl time.Duration) bool {
	return a.status.IsNegotiable() && a.pending == OperationNone && now.Sub(a.updatedAt) > ttl
}

// PullEvents returns recorded events and clears them.
func (a *Assignment) PullEvents() []Event {
	events := a.events
	a.events = nil
	return events
}

func (a *Assignment) cancel(reason string, now time.Time) {
	previous := a.status
	a.status = Cancelled
	a.cancelReason = normalizeReason(reason)
	a.pending = OperationNone
	a.queuedCancel = nil
	a.touch(now)
	a.record(EventCancelled, now, map[string]string{
		"previous_status": previous.String(),
		"reason":          a.cancelReason,
	})
}

func (a *Assignment) checkNegotiable(action string) error {
	switch {
	case a.status.IsNegotiable():
		return a.checkIdle()
	case a.status.IsTerminal() || a.status == Disputed:
		return errs.NewAssignmentNotNegotiableError(a.status.String())
	default:
		return errs.NewInvalidStateError(entityName, a.status.String(), action)
	}
}

func (a *Assignment) checkIdle() error {
	if a.pending != OperationNone {
		return a.inFlightError()
	}
	return nil
}

func (a *Assignment) checkPending(op Operation) error {
	if a.pending != op {
		return errs.NewInvalidStateErrorWithCause(entityName, a.status.String(), "finish "+op.String(),
			fmt.Errorf("pending operation is %s", a.pending))
	}
	return nil
}

func (a *Assignment) inFlightError() error {
	return errs.NewConcurrentModificationErrorWithCause(entityName, a.id.String(),
		fmt.Errorf("%s operation in flight", a.pending))
}

func (a *Assignment) touch(now time.Time) {
	a.updatedAt = now.UTC()
}

func (a *Assignment) record(name EventName, now time.Time, attrs map[string]string) {
	a.events = append(a.events, Event{
		ID:           kernel.NewUUID(),
		Name:         name,
		AssignmentID: a.id,
		PackageID:    a.refs.PackageID,
		TripID:       a.refs.TripID,
		SenderID:     a.refs.SenderID,
		TravelerID:   a.refs.TravelerID,
		Status:       a.status,
		Attributes:   attrs,
		OccurredAt:   now.UTC(),
	})
}
