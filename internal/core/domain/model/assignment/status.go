package assignment

import (
	"fmt"

	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"
)

// Status is the assignment lifecycle state.
//
//	PROPOSED ──> NEGOTIATING ──> MATCHED ──> CONFIRMED ──> IN_TRANSIT ──> DELIVERED
//	    │             │             │  ^         │  ^          │  ^
//	    │             │             v  │         v  │          v  │
//	    │             │            DISPUTED (pushdown of the previous state)
//	    └─────────────┴─────────────┴───────────┴──> CANCELLED
type Status int

const (
	Unknown Status = iota
	Proposed
	Negotiating
	Matched
	Confirmed
	InTransit
	Delivered
	Cancelled
	Disputed
)

var statusNames = map[Status]string{
	Unknown:     "UNKNOWN",
	Proposed:    "PROPOSED",
	Negotiating: "NEGOTIATING",
	Matched:     "MATCHED",
	Confirmed:   "CONFIRMED",
	InTransit:   "IN_TRANSIT",
	Delivered:   "DELIVERED",
	Cancelled:   "CANCELLED",
	Disputed:    "DISPUTED",
}

// ParseStatus maps a stored or wire name such as "IN_TRANSIT" back to a
// Status. UNKNOWN is never returned without an error.
//
// Returns:
//   - Status: the parsed status
//   - error: ErrValueIsInvalid for names outside the lifecycle
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("assignment status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and values outside the lifecycle.
func (s Status) Validate() error {
	if s <= Unknown || s > Disputed {
		return errs.NewValueIsInvalidErrorWithCause("assignment status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// IsTerminal reports whether the assignment can no longer move. DISPUTED is
// not terminal: a verdict resumes or cancels it.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// IsNegotiable reports whether price proposals are still accepted.
func (s Status) IsNegotiable() bool {
	return s == Proposed || s == Negotiating
}

// HoldsReservation reports whether trip capacity and the package binding
// are held by the assignment.
func (s Status) HoldsReservation() bool {
	switch s {
	case Matched, Confirmed, InTransit, Delivered, Disputed:
		return true
	default:
		return false
	}
}

// IsCancellable lists the states a party can cancel from.
func (s Status) IsCancellable() bool {
	switch s {
	case Proposed, Negotiating, Matched, Confirmed:
		return true
	default:
		return false
	}
}

// IsDisputable lists the states a dispute can freeze.
func (s Status) IsDisputable() bool {
	return s == Matched || s == Confirmed || s == InTransit
}

// AllowsChecklist reports whether the event's checklist may be recorded now.
func (s Status) AllowsChecklist(event safety.Event) bool {
	switch event {
	case safety.EventAssignment:
		return s == Proposed || s == Negotiating || s == Matched
	case safety.EventPickup:
		return s == Matched || s == Confirmed
	case safety.EventDelivery:
		return s == InTransit
	default:
		return false
	}
}

// ParcelStatus is the package status mirrored for a bound assignment.
func (s Status) ParcelStatus() (parcel.Status, bool) {
	switch s {
	case Matched:
		return parcel.Matched, true
	case Confirmed:
		return parcel.Confirmed, true
	case InTransit:
		return parcel.InTransit, true
	case Delivered:
		return parcel.Delivered, true
	case Disputed:
		return parcel.Disputed, true
	default:
		return parcel.Unknown, false
	}
}
