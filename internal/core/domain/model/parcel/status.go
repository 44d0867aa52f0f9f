package parcel

import (
	"fmt"

	"parcelshare/internal/pkg/errs"
)

// Status is the lifecycle state of a package. Once a package is bound to an
// assignment its status mirrors the assignment's.
//
//	POSTED ──> MATCHED ──> CONFIRMED ──> IN_TRANSIT ──> DELIVERED
//	  │  ^        │            │             │
//	  │  └────────┴────────────┘ (unbind)    └──> DISPUTED
//	  └──> CANCELLED (sender soft-cancel)
type Status int

const (
	Unknown Status = iota
	Posted
	Matched
	Confirmed
	InTransit
	Delivered
	Disputed
	Cancelled
)

var statusNames = map[Status]string{
	Unknown:   "UNKNOWN",
	Posted:    "POSTED",
	Matched:   "MATCHED",
	Confirmed: "CONFIRMED",
	InTransit: "IN_TRANSIT",
	Delivered: "DELIVERED",
	Disputed:  "DISPUTED",
	Cancelled: "CANCELLED",
}

// ParseStatus is the inverse of String.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("package status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("package status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// RequiresBinding reports whether the status only exists while bound to an assignment.
func (s Status) RequiresBinding() bool {
	switch s {
	case Matched, Confirmed, InTransit, Delivered, Disputed:
		return true
	default:
		return false
	}
}
