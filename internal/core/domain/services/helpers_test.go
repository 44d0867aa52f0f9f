package services_test

import (
	"testing"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/trip"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func eur(minor int64) kernel.Money { return kernel.MustMoney(minor, "EUR") }

func newParcel(t *testing.T, weight kernel.Weight, mutate ...func(*parcel.Params)) *parcel.Parcel {
	t.Helper()

	pickup, err := kernel.NewAddress("", "Berlin", "", "DE")
	require.NoError(t, err)
	dropoff, err := kernel.NewAddress("", "Wroclaw", "", "PL")
	require.NoError(t, err)
	window, err := kernel.NewDateWindow(now, now.Add(72*time.Hour))
	require.NoError(t, err)

	params := parcel.Params{
		SenderID:        kernel.NewUUID(),
		Title:           "Books",
		Dimensions:      kernel.MustDimensions(30, 20, 10),
		Weight:          weight,
		Type:            kernel.PackageTypeDocuments,
		DeclaredValue:   eur(5000),
		Pickup:          pickup,
		Dropoff:         dropoff,
		Window:          window,
		OfferedPrice:    eur(4000),
		PaymentMethodID: "pm_card_visa",
	}
	for _, m := range mutate {
		m(&params)
	}

	p, err := parcel.NewParcel(kernel.NewUUID(), params, now)
	require.NoError(t, err)
	return p
}

func newTrip(t *testing.T, maxWeight kernel.Weight, mutate ...func(*trip.Params)) *trip.Trip {
	t.Helper()

	origin, err := kernel.NewAddress("", "Berlin", "", "DE")
	require.NoError(t, err)
	destination, err := kernel.NewAddress("", "Wroclaw", "", "PL")
	require.NoError(t, err)
	window, err := kernel.NewDateWindow(now.Add(24*time.Hour), now.Add(30*time.Hour))
	require.NoError(t, err)

	params := trip.Params{
		TravelerID:    kernel.NewUUID(),
		Origin:        origin,
		Destination:   destination,
		Window:        window,
		MaxWeight:     maxWeight,
		MaxDimensions: kernel.MustDimensions(70, 45, 25),
		Pricing:       trip.Pricing{Currency: "EUR"},
		AcceptedTypes: []kernel.PackageType{kernel.PackageTypeDocuments, kernel.PackageTypeClothing},
	}
	for _, m := range mutate {
		m(&params)
	}

	tr, err := trip.NewTrip(kernel.NewUUID(), params, now)
	require.NoError(t, err)
	return tr
}
