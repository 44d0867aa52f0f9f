package pgtest

import (
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/trip"
)

// Postgres keeps microseconds; fixtures use a truncated clock so round
// trips compare equal.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func NewParcel(senderID kernel.UUID, weight kernel.Weight, now time.Time) (*parcel.Parcel, error) {
	pickup, err := kernel.NewAddress("Alexanderplatz 1", "Berlin", "10178", "DE")
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewAddress("Rynek 1", "Wroclaw", "50-106", "PL")
	if err != nil {
		return nil, err
	}
	window, err := kernel.NewDateWindow(now.Add(24*time.Hour), now.Add(96*time.Hour))
	if err != nil {
		return nil, err
	}

	return parcel.NewParcel(kernel.NewUUID(), parcel.Params{
		SenderID:        senderID,
		Title:           "Books",
		Description:     "two paperbacks",
		Dimensions:      kernel.MustDimensions(30, 20, 10),
		Weight:          weight,
		Type:            kernel.PackageTypeDocuments,
		DeclaredValue:   kernel.MustMoney(5000, "EUR"),
		Pickup:          pickup,
		Dropoff:         dropoff,
		Window:          window,
		OfferedPrice:    kernel.MustMoney(4000, "EUR"),
		PaymentMethodID: "pm_card_visa",
	}, now)
}

func NewTrip(travelerID kernel.UUID, capacity kernel.Weight, now time.Time) (*trip.Trip, error) {
	origin, err := kernel.NewAddress("", "Berlin", "", "DE")
	if err != nil {
		return nil, err
	}
	destination, err := kernel.NewAddress("", "Wroclaw", "", "PL")
	if err != nil {
		return nil, err
	}
	window, err := kernel.NewDateWindow(now.Add(48*time.Hour), now.Add(54*time.Hour))
	if err != nil {
		return nil, err
	}
	minPrice := kernel.MustMoney(1000, "EUR")

	return trip.NewTrip(kernel.NewUUID(), trip.Params{
		TravelerID:    travelerID,
		Origin:        origin,
		Destination:   destination,
		Window:        window,
		MaxWeight:     capacity,
		MaxDimensions: kernel.MustDimensions(70, 45, 25),
		Pricing:       trip.Pricing{Currency: "EUR", MinPrice: &minPrice},
		AcceptedTypes: []kernel.PackageType{kernel.PackageTypeDocuments, kernel.PackageTypeClothing},
	}, now)
}

// NewAssignment opens a negotiation between p and t at the offered price.
func NewAssignment(p *parcel.Parcel, t *trip.Trip, now time.Time) (*assignment.Assignment, error) {
	return assignment.NewAssignment(kernel.NewUUID(), assignment.Refs{
		PackageID:  p.ID(),
		TripID:     t.ID(),
		SenderID:   p.SenderID(),
		TravelerID: t.TravelerID(),
	}, p.OfferedPrice(), assignment.PartySender, now)
}
