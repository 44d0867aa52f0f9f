package dispute

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
)

// ErrDisputeIsNotConstructed is returned by Validate for a Dispute that
// bypassed NewDispute and RestoreDispute.
var ErrDisputeIsNotConstructed = errors.New("Dispute must be created via NewDispute constructor")

// Status tracks a dispute from OPEN through UNDER_REVIEW to RESOLVED.
type Status string

const (
	StatusOpen        Status = "OPEN"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusResolved    Status = "RESOLVED"
)

func (s Status) Validate() error {
	switch s {
	case StatusOpen, StatusUnderReview, StatusResolved:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("dispute status", fmt.Errorf("%q is not a known status", string(s)))
	}
}

// Outcome is the moderator's decision.
type Outcome string

const (
	OutcomeResolveForward Outcome = "RESOLVE_FORWARD"
	OutcomeResolveCancel  Outcome = "RESOLVE_CANCEL"
)

// ParseOutcome accepts RESOLVE_FORWARD or RESOLVE_CANCEL.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if o != OutcomeResolveForward && o != OutcomeResolveCancel {
		return "", errs.NewValueIsInvalidErrorWithCause("outcome",
			fmt.Errorf("%q is not RESOLVE_FORWARD or RESOLVE_CANCEL", s))
	}
	return o, nil
}

// Verdict is the only input that can move a DISPUTED assignment.
type Verdict struct {
	Outcome   Outcome
	Note      string
	DecidedBy kernel.UUID
	DecidedAt time.Time
}

// NewVerdict records a moderator's decision. The note is trimmed and may be
// empty.
func NewVerdict(outcome Outcome, note string, decidedBy kernel.UUID, now time.Time) (Verdict, error) {
	if _, err := ParseOutcome(string(outcome)); err != nil {
		return Verdict{}, err
	}
	if err := decidedBy.Validate(); err != nil {
		return Verdict{}, errs.NewValueIsRequiredErrorWithCause("decided by", err)
	}
	return Verdict{Outcome: outcome, Note: strings.TrimSpace(note), DecidedBy: decidedBy, DecidedAt: now.UTC()}, nil
}

// Dispute records who froze an assignment, why, and from which state.
type Dispute struct {
	id             kernel.UUID
	assignmentID   kernel.UUID
	raisedBy       kernel.UUID
	reason         string
	status         Status
	previousStatus assignment.Status
	verdict        *Verdict
	createdAt      time.Time
	updatedAt      time.Time

	isConstructed bool
}

// NewDispute opens a dispute for an assignment that was frozen from
// previous.
//
// Parameters:
//   - id: unique identifier of the dispute
//   - assignmentID: the frozen assignment
//   - raisedBy: the party who raised it
//   - reason: free text, required after trimming
//   - previous: the state a RESOLVE_FORWARD verdict resumes to; must be
//     MATCHED, CONFIRMED or IN_TRANSIT
//   - now: creation time, stored in UTC
//
// Returns:
//   - *Dispute: an OPEN dispute without a verdict
//   - error: every invalid argument joined into one error
func NewDispute(
	id, assignmentID, raisedBy kernel.UUID,
	reason string,
	previous assignment.Status,
	now time.Time,
) (*Dispute, error) {
	reason = strings.TrimSpace(reason)

	errList := []error{id.Validate(), assignmentID.Validate(), raisedBy.Validate()}
	if reason == "" {
		errList = append(errList, errs.NewValueIsRequiredError("reason"))
	}
	if !previous.IsDisputable() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("previous status",
			fmt.Errorf("%s cannot be disputed", previous)))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Dispute{
		id:             id,
		assignmentID:   assignmentID,
		raisedBy:       raisedBy,
		reason:         reason,
		status:         StatusOpen,
		previousStatus: previous,
		createdAt:      now.UTC(),
		updatedAt:      now.UTC(),
		isConstructed:  true,
	}, nil
}

// Snapshot is the persisted form of a dispute.
type Snapshot struct {
	ID             kernel.UUID
	AssignmentID   kernel.UUID
	RaisedBy       kernel.UUID
	Reason         string
	Status         Status
	PreviousStatus assignment.Status
	Verdict        *Verdict
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RestoreDispute rebuilds a dispute from persistence. A verdict is present
// exactly when the status is RESOLVED.
func RestoreDispute(s Snapshot) (*Dispute, error) {
	if err := errors.Join(
		s.ID.Validate(), s.AssignmentID.Validate(), s.RaisedBy.Validate(), s.Status.Validate(), s.PreviousStatus.Validate(),
	); err != nil {
		return nil, err
	}
	if (s.Status == StatusResolved) != (s.Verdict != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause("dispute", errors.New("only resolved disputes carry a verdict"))
	}

	return &Dispute{
		id:             s.ID,
		assignmentID:   s.AssignmentID,
		raisedBy:       s.RaisedBy,
		reason:         s.Reason,
		status:         s.Status,
		previousStatus: s.PreviousStatus,
		verdict:        s.Verdict,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
		isConstructed:  true,
	}, nil
}

// Snapshot returns the persisted form.
func (d *Dispute) Snapshot() Snapshot {
	return Snapshot{
		ID:             d.id,
		AssignmentID:   d.assignmentID,
		RaisedBy:       d.raisedBy,
		Reason:         d.reason,
		Status:         d.status,
		PreviousStatus: d.previousStatus,
		Verdict:        d.verdict,
		CreatedAt:      d.createdAt,
		UpdatedAt:      d.updatedAt,
	}
}

// Validate ensures the dispute was built by NewDispute or RestoreDispute.
func (d *Dispute) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDisputeIsNotConstructed
	}
	return nil
}

func (d *Dispute) ID() kernel.UUID                   { return d.id }
func (d *Dispute) AssignmentID() kernel.UUID         { return d.assignmentID }
func (d *Dispute) RaisedBy() kernel.UUID             { return d.raisedBy }
func (d *Dispute) Reason() string                    { return d.reason }
func (d *Dispute) Status() Status                    { return d.status }
func (d *Dispute) PreviousStatus() assignment.Status { return d.previousStatus }
func (d *Dispute) Verdict() *Verdict                 { return d.verdict }
func (d *Dispute) IsResolved() bool                  { return d.status == StatusResolved }

// StartReview marks that a moderator picked the dispute up. A cancel verdict
// keeps the dispute UNDER_REVIEW while the refund is in flight.
func (d *Dispute) StartReview(now time.Time) error {
	switch d.status {
	case StatusOpen:
		d.status = StatusUnderReview
		d.updatedAt = now.UTC()
		return nil
	case StatusUnderReview:
		return nil
	default:
		return errs.NewInvalidStateError("dispute", string(d.status), "review")
	}
}

// Resolve stores the verdict. A dispute is resolved once.
func (d *Dispute) Resolve(v Verdict, now time.Time) error {
	if d.status == StatusResolved {
		return errs.NewInvalidStateError("dispute", string(d.status), "resolve")
	}
	if _, err := ParseOutcome(string(v.Outcome)); err != nil {
		return err
	}

	d.verdict = &v
	d.status = StatusResolved
	d.updatedAt = now.UTC()
	return nil
}
