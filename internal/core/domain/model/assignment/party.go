package assignment

import (
	"fmt"

	"parcelshare/internal/pkg/errs"
)

// Party is the side of the assignment acting.
type Party string

const (
	PartySender   Party = "SENDER"
	PartyTraveler Party = "TRAVELER"
)

// ParseParty accepts exactly "SENDER" or "TRAVELER".
func ParseParty(s string) (Party, error) {
	p := Party(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate rejects any value other than PartySender and PartyTraveler.
// The zero Party is invalid.
func (p Party) Validate() error {
	if p != PartySender && p != PartyTraveler {
		return errs.NewValueIsInvalidErrorWithCause("party", fmt.Errorf("%q is not SENDER or TRAVELER", string(p)))
	}
	return nil
}

func (p Party) String() string {
	return string(p)
}

// Other returns the counterparty.
func (p Party) Other() Party {
	if p == PartySender {
		return PartyTraveler
	}
	return PartySender
}
