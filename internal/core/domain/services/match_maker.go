package services

import (
	"fmt"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/trip"
	"parcelshare/internal/pkg/errs"
)

// MatchMaker decides whether a package may travel on a trip and keeps the
// package, the trip and the assignment consistent while they are bound.
type MatchMaker struct{}

func NewMatchMaker() MatchMaker {
	return MatchMaker{}
}

// Check reports why pkg cannot travel on t, or nil.
func (m MatchMaker) Check(pkg *parcel.Parcel, t *trip.Trip) error {
	if err := pkg.Validate(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	if pkg.Status() != parcel.Posted || pkg.IsBound() {
		return errs.NewInvalidStateError("package", pkg.Status().String(), "match")
	}
	if pkg.OfferedPrice().Currency() != t.Currency() {
		return incompatible("package is priced in %s, trip in %s", pkg.OfferedPrice().Currency(), t.Currency())
	}
	// the offer opens the negotiation as its first proposal
	if err := t.CheckPrice(pkg.OfferedPrice()); err != nil {
		return err
	}
	if pkg.Weight() > t.AvailableSpace() {
		return fmt.Errorf("%w: package needs %s, trip has %s left",
			errs.ErrInsufficientTripCapacity, pkg.Weight(), t.AvailableSpace())
	}
	if !pkg.Dimensions().FitsWithin(t.MaxDimensions()) {
		return incompatible("package %s does not fit in %s", pkg.Dimensions(), t.MaxDimensions())
	}
	if !t.Accepts(pkg.Type()) {
		return incompatible("trip does not accept %s packages", pkg.Type())
	}
	if !pkg.Window().Overlaps(t.Window()) {
		return incompatible("package window does not overlap the trip dates")
	}
	return nil
}

// Open creates a PROPOSED assignment for a compatible pair. The actor must be
// the package's sender or the trip's traveler.
func (m MatchMaker) Open(id kernel.UUID, pkg *parcel.Parcel, t *trip.Trip, actorID kernel.UUID, now time.Time) (*assignment.Assignment, error) {
	if err := m.Check(pkg, t); err != nil {
		return nil, err
	}

	var openedBy assignment.Party
	switch {
	case pkg.IsSentBy(actorID):
		openedBy = assignment.PartySender
	case t.IsOperatedBy(actorID):
		openedBy = assignment.PartyTraveler
	default:
		return nil, errs.NewForbiddenError("request match", "only the sender or the traveler can request a match")
	}

	refs := assignment.Refs{
		PackageID:  pkg.ID(),
		TripID:     t.ID(),
		SenderID:   pkg.SenderID(),
		TravelerID: t.TravelerID(),
	}
	return assignment.NewAssignment(id, refs, pkg.OfferedPrice(), openedBy, now)
}

// Reserve starts authorization: capacity is taken from the trip and the
// package is bound. Nothing is changed if any step fails.
func (m MatchMaker) Reserve(a *assignment.Assignment, pkg *parcel.Parcel, t *trip.Trip, now time.Time) error {
	if err := m.checkRefs(a, pkg, t); err != nil {
		return err
	}
	if pkg.IsBound() {
		return errs.NewInvalidStateErrorWithCause("package", pkg.Status().String(), "bind",
			fmt.Errorf("package is bound to assignment %s", pkg.AssignmentID()))
	}
	if pkg.Status() != parcel.Posted {
		return errs.NewInvalidStateError("package", pkg.Status().String(), "bind")
	}
	if pkg.Weight() > t.AvailableSpace() {
		return fmt.Errorf("%w: package needs %s, trip has %s left",
			errs.ErrInsufficientTripCapacity, pkg.Weight(), t.AvailableSpace())
	}
	if err := t.CheckPrice(a.Negotiation().Price()); err != nil {
		return err
	}

	if err := a.BeginAuthorization(now); err != nil {
		return err
	}
	if err := t.Reserve(pkg.Weight(), now); err != nil {
		return err
	}
	return pkg.Bind(a.ID(), now)
}

// Unreserve gives capacity back and unbinds the package.
func (m MatchMaker) Unreserve(a *assignment.Assignment, pkg *parcel.Parcel, t *trip.Trip, now time.Time) error {
	if err := m.checkRefs(a, pkg, t); err != nil {
		return err
	}
	if !pkg.IsBoundTo(a.ID()) {
		return nil
	}
	if err := t.Release(pkg.Weight(), now); err != nil {
		return err
	}
	return pkg.Unbind(a.ID(), now)
}

// Finalize copies the agreed price and the assignment status to the package.
func (m MatchMaker) Finalize(a *assignment.Assignment, pkg *parcel.Parcel, now time.Time) error {
	if a.AgreedPrice() != nil && pkg.FinalPrice() == nil {
		if err := pkg.SetFinalPrice(a.ID(), *a.AgreedPrice(), now); err != nil {
			return err
		}
	}
	return m.Mirror(a, pkg, now)
}

// Mirror copies the assignment status to the bound package.
func (m MatchMaker) Mirror(a *assignment.Assignment, pkg *parcel.Parcel, now time.Time) error {
	status, ok := a.Status().ParcelStatus()
	if !ok {
		return nil
	}
	return pkg.Follow(a.ID(), status, now)
}

func (m MatchMaker) checkRefs(a *assignment.Assignment, pkg *parcel.Parcel, t *trip.Trip) error {
	if !a.PackageID().IsEqual(pkg.ID()) || !a.TripID().IsEqual(t.ID()) {
		return errs.NewValueIsInvalidErrorWithCause("assignment",
			fmt.Errorf("assignment %s does not reference package %s and trip %s", a.ID(), pkg.ID(), t.ID()))
	}
	return nil
}

func incompatible(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrPackageIncompatibleToTrip, fmt.Sprintf(format, args...))
}
