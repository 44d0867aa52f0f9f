package trip_test

import (
	"testing"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/trip"
	"parcelshare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func validParams(t *testing.T) trip.Params {
	t.Helper()

	origin, err := kernel.NewAddress("", "Berlin", "", "DE")
	require.NoError(t, err)
	destination, err := kernel.NewAddress("", "Wroclaw", "", "PL")
	require.NoError(t, err)
	window, err := kernel.NewDateWindow(now.Add(24*time.Hour), now.Add(30*time.Hour))
	require.NoError(t, err)

	return trip.Params{
		TravelerID:    kernel.NewUUID(),
		Origin:        origin,
		Destination:   destination,
		Window:        window,
		MaxWeight:     5 * kernel.Kilogram,
		MaxDimensions: kernel.MustDimensions(70, 45, 25),
		Pricing: trip.Pricing{
			Currency:   "eur",
			PricePerKg: ptr(kernel.MustMoney(800, "EUR")),
			MinPrice:   ptr(kernel.MustMoney(2000, "EUR")),
			MaxPrice:   ptr(kernel.MustMoney(6000, "EUR")),
		},
		AcceptedTypes: []kernel.PackageType{kernel.PackageTypeClothing, kernel.PackageTypeDocuments, kernel.PackageTypeClothing},
	}
}

func TestNewTrip(t *testing.T) {
	t.Run("should start with full capacity", func(t *testing.T) {
		tr, err := trip.NewTrip(kernel.NewUUID(), validParams(t), now)

		require.NoError(t, err)
		require.NoError(t, tr.Validate())
		assert.Equal(t, 5*kernel.Kilogram, tr.AvailableSpace())
		assert.Equal(t, "EUR", tr.Currency())
		assert.Len(t, tr.AcceptedTypes(), 2)
		assert.True(t, tr.Accepts(kernel.PackageTypeDocuments))
		assert.False(t, tr.Accepts(kernel.PackageTypeFood))
	})

	t.Run("should reject inverted price band", func(t *testing.T) {
		params := validParams(t)
		params.Pricing.MinPrice = ptr(kernel.MustMoney(7000, "EUR"))

		_, err := trip.NewTrip(kernel.NewUUID(), params, now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "price band")
	})

	t.Run("should reject band in another currency", func(t *testing.T) {
		params := validParams(t)
		params.Pricing.MaxPrice = ptr(kernel.MustMoney(6000, "USD"))

		_, err := trip.NewTrip(kernel.NewUUID(), params, now)

		require.ErrorIs(t, err, kernel.ErrCurrencyMismatch)
	})

	t.Run("should require accepted types", func(t *testing.T) {
		params := validParams(t)
		params.AcceptedTypes = nil

		_, err := trip.NewTrip(kernel.NewUUID(), params, now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestTrip_Capacity(t *testing.T) {
	tr, err := trip.NewTrip(kernel.NewUUID(), validParams(t), now)
	require.NoError(t, err)

	// Given a 5kg package reserving all of a 5kg trip
	require.NoError(t, tr.Reserve(5*kernel.Kilogram, now))
	assert.Equal(t, kernel.Weight(0), tr.AvailableSpace())

	// When another package tries to reserve
	err = tr.Reserve(1*kernel.Gram, now)

	// Then it is rejected and the counter is unchanged
	require.ErrorIs(t, err, errs.ErrInsufficientTripCapacity)
	assert.Equal(t, kernel.Weight(0), tr.AvailableSpace())

	require.NoError(t, tr.Release(5*kernel.Kilogram, now))
	assert.Equal(t, 5*kernel.Kilogram, tr.AvailableSpace())

	err = tr.Release(1*kernel.Gram, now)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestTrip_CheckPrice(t *testing.T) {
	tr, err := trip.NewTrip(kernel.NewUUID(), validParams(t), now)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		price   kernel.Money
		wantErr error
	}{
		{"inside_band", kernel.MustMoney(4000, "EUR"), nil},
		{"band_lower_bound", kernel.MustMoney(2000, "EUR"), nil},
		{"below_band", kernel.MustMoney(1999, "EUR"), errs.ErrValueIsOutOfRange},
		{"above_band", kernel.MustMoney(6001, "EUR"), errs.ErrValueIsOutOfRange},
		{"wrong_currency", kernel.MustMoney(4000, "USD"), kernel.ErrCurrencyMismatch},
		{"zero", kernel.MustMoney(0, "EUR"), errs.ErrValueIsInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tr.CheckPrice(tc.price)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestTrip_Quote(t *testing.T) {
	tr, err := trip.NewTrip(kernel.NewUUID(), validParams(t), now)
	require.NoError(t, err)

	quote, ok := tr.Quote(2500 * kernel.Gram)

	require.True(t, ok)
	assert.Equal(t, int64(2000), quote.Minor())
}

func TestRestoreTrip_RejectsSpaceAboveMax(t *testing.T) {
	_, err := trip.RestoreTrip(kernel.NewUUID(), validParams(t), 6*kernel.Kilogram, 1, now, now)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
