package assignment

import (
	"strings"

	"parcelshare/internal/core/domain/model/kernel"
)

// Negotiation is the current offer and who has confirmed it.
//
// A new proposal always starts with both confirmations cleared, so a price
// change can never inherit an agreement made on a different price.
type Negotiation struct {
	price               kernel.Money
	proposedBy          Party
	note                string
	confirmedBySender   bool
	confirmedByTraveler bool
}

// Proposal builds the negotiation state that follows a proposal.
func Proposal(by Party, price kernel.Money, note string) Negotiation {
	return Negotiation{
		price:      price,
		proposedBy: by,
		note:       strings.TrimSpace(note),
	}
}

// RestoreNegotiation rebuilds a negotiation from persistence.
func RestoreNegotiation(price kernel.Money, by Party, note string, confirmedBySender, confirmedByTraveler bool) Negotiation {
	n := Proposal(by, price, note)
	n.confirmedBySender = confirmedBySender
	n.confirmedByTraveler = confirmedByTraveler
	return n
}

// Confirm returns the negotiation with by's confirmation set.
func (n Negotiation) Confirm(by Party) Negotiation {
	switch by {
	case PartySender:
		n.confirmedBySender = true
	case PartyTraveler:
		n.confirmedByTraveler = true
	}
	return n
}

// Reopen clears both confirmations and keeps the offer.
func (n Negotiation) Reopen() Negotiation {
	return Proposal(n.proposedBy, n.price, n.note)
}

// IsAgreed reports whether both parties confirmed the current price.
func (n Negotiation) IsAgreed() bool {
	return n.confirmedBySender && n.confirmedByTraveler
}

func (n Negotiation) Price() kernel.Money       { return n.price }
func (n Negotiation) ProposedBy() Party         { return n.proposedBy }
func (n Negotiation) Note() string              { return n.note }
func (n Negotiation) ConfirmedBySender() bool   { return n.confirmedBySender }
func (n Negotiation) ConfirmedByTraveler() bool { return n.confirmedByTraveler }
