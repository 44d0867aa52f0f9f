package triprepo

import (
	"time"

	"parcelshare/internal/adapters/out/postgres/columns"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/trip"

	"github.com/google/uuid"
)

// TripDTO is the trips row. Pricing bounds share the trip currency, so only
// their minor amounts are stored.
type TripDTO struct {
	ID                  uuid.UUID          `gorm:"type:uuid;primaryKey"`
	TravelerID          uuid.UUID          `gorm:"type:uuid;index"`
	Origin              columns.AddressDTO `gorm:"embedded;embeddedPrefix:origin_"`
	Destination         columns.AddressDTO `gorm:"embedded;embeddedPrefix:destination_"`
	WindowFrom          time.Time
	WindowTo            time.Time
	MaxWeightGrams      int64
	MaxDimensions       columns.DimensionsDTO `gorm:"embedded;embeddedPrefix:max_dimensions_"`
	Currency            string                `gorm:"size:3"`
	PricePerKgMinor     *int64
	MinPriceMinor       *int64
	MaxPriceMinor       *int64
	AcceptedTypes       []string `gorm:"serializer:json;type:jsonb"`
	AvailableSpaceGrams int64
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (TripDTO) TableName() string {
	return "trips"
}

func fromDomain(t *trip.Trip) TripDTO {
	pricing := t.Pricing()
	accepted := make([]string, 0, len(t.AcceptedTypes()))
	for _, pt := range t.AcceptedTypes() {
		accepted = append(accepted, string(pt))
	}

	return TripDTO{
		ID:                  t.ID().Bytes(),
		TravelerID:          t.TravelerID().Bytes(),
		Origin:              columns.AddressFromDomain(t.Origin()),
		Destination:         columns.AddressFromDomain(t.Destination()),
		WindowFrom:          t.Window().From(),
		WindowTo:            t.Window().To(),
		MaxWeightGrams:      t.MaxWeight().Grams(),
		MaxDimensions:       columns.DimensionsFromDomain(t.MaxDimensions()),
		Currency:            pricing.Currency,
		PricePerKgMinor:     minorOf(pricing.PricePerKg),
		MinPriceMinor:       minorOf(pricing.MinPrice),
		MaxPriceMinor:       minorOf(pricing.MaxPrice),
		AcceptedTypes:       accepted,
		AvailableSpaceGrams: t.AvailableSpace().Grams(),
		Version:             t.Version(),
		CreatedAt:           t.CreatedAt(),
		UpdatedAt:           t.UpdatedAt(),
	}
}

func toDomain(dto TripDTO) (*trip.Trip, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	travelerID, err := kernel.UUIDFromBytes(dto.TravelerID[:])
	if err != nil {
		return nil, err
	}
	origin, err := dto.Origin.ToDomain()
	if err != nil {
		return nil, err
	}
	destination, err := dto.Destination.ToDomain()
	if err != nil {
		return nil, err
	}
	window, err := kernel.NewDateWindow(dto.WindowFrom, dto.WindowTo)
	if err != nil {
		return nil, err
	}
	maxDims, err := dto.MaxDimensions.ToDomain()
	if err != nil {
		return nil, err
	}

	pricing := trip.Pricing{Currency: dto.Currency}
	if pricing.PricePerKg, err = moneyOf(dto.PricePerKgMinor, dto.Currency); err != nil {
		return nil, err
	}
	if pricing.MinPrice, err = moneyOf(dto.MinPriceMinor, dto.Currency); err != nil {
		return nil, err
	}
	if pricing.MaxPrice, err = moneyOf(dto.MaxPriceMinor, dto.Currency); err != nil {
		return nil, err
	}

	accepted := make([]kernel.PackageType, 0, len(dto.AcceptedTypes))
	for _, name := range dto.AcceptedTypes {
		pt, err := kernel.ParsePackageType(name)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, pt)
	}

	return trip.RestoreTrip(id, trip.Params{
		TravelerID:    travelerID,
		Origin:        origin,
		Destination:   destination,
		Window:        window,
		MaxWeight:     kernel.Weight(dto.MaxWeightGrams),
		MaxDimensions: maxDims,
		Pricing:       pricing,
		AcceptedTypes: accepted,
	}, kernel.Weight(dto.AvailableSpaceGrams), dto.Version, dto.CreatedAt, dto.UpdatedAt)
}

func minorOf(m *kernel.Money) *int64 {
	if m == nil {
		return nil
	}
	minor := m.Minor()
	return &minor
}

func moneyOf(minor *int64, currency string) (*kernel.Money, error) {
	if minor == nil {
		return nil, nil
	}
	m, err := kernel.NewMoney(*minor, currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
