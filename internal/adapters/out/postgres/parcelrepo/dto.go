package parcelrepo

import (
	"time"

	"parcelshare/internal/adapters/out/postgres/columns"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/parcel"

	"github.com/google/uuid"
)

// ParcelDTO is the packages row. Status is stored by name so the table reads
// the same as the API.
type ParcelDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID        uuid.UUID `gorm:"type:uuid;index"`
	Title           string    `gorm:"size:200"`
	Description     string
	Dimensions      columns.DimensionsDTO `gorm:"embedded;embeddedPrefix:dimensions_"`
	WeightGrams     int64
	Type            string             `gorm:"size:32"`
	DeclaredValue   columns.MoneyDTO   `gorm:"embedded;embeddedPrefix:declared_value_"`
	Pickup          columns.AddressDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff         columns.AddressDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	WindowFrom      time.Time
	WindowTo        time.Time
	OfferedPrice    columns.MoneyDTO         `gorm:"embedded;embeddedPrefix:offered_price_"`
	PaymentMethodID string                   `gorm:"size:128"`
	Status          string                   `gorm:"size:32;index"`
	FinalPrice      columns.NullableMoneyDTO `gorm:"embedded;embeddedPrefix:final_price_"`
	AssignmentID    *uuid.UUID               `gorm:"type:uuid;index"`
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ParcelDTO) TableName() string {
	return "packages"
}

func fromDomain(p *parcel.Parcel) ParcelDTO {
	return ParcelDTO{
		ID:              p.ID().Bytes(),
		SenderID:        p.SenderID().Bytes(),
		Title:           p.Title(),
		Description:     p.Description(),
		Dimensions:      columns.DimensionsFromDomain(p.Dimensions()),
		WeightGrams:     p.Weight().Grams(),
		Type:            string(p.Type()),
		DeclaredValue:   columns.MoneyFromDomain(p.DeclaredValue()),
		Pickup:          columns.AddressFromDomain(p.Pickup()),
		Dropoff:         columns.AddressFromDomain(p.Dropoff()),
		WindowFrom:      p.Window().From(),
		WindowTo:        p.Window().To(),
		OfferedPrice:    columns.MoneyFromDomain(p.OfferedPrice()),
		PaymentMethodID: p.PaymentMethodID(),
		Status:          p.Status().String(),
		FinalPrice:      columns.NullableMoneyFromDomain(p.FinalPrice()),
		AssignmentID:    columns.UUIDPtr(p.AssignmentID()),
		Version:         p.Version(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
}

func toDomain(dto ParcelDTO) (*parcel.Parcel, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	senderID, err := kernel.UUIDFromBytes(dto.SenderID[:])
	if err != nil {
		return nil, err
	}
	dims, err := dto.Dimensions.ToDomain()
	if err != nil {
		return nil, err
	}
	packageType, err := kernel.ParsePackageType(dto.Type)
	if err != nil {
		return nil, err
	}
	declared, err := dto.DeclaredValue.ToDomain()
	if err != nil {
		return nil, err
	}
	pickup, err := dto.Pickup.ToDomain()
	if err != nil {
		return nil, err
	}
	dropoff, err := dto.Dropoff.ToDomain()
	if err != nil {
		return nil, err
	}
	window, err := kernel.NewDateWindow(dto.WindowFrom, dto.WindowTo)
	if err != nil {
		return nil, err
	}
	offered, err := dto.OfferedPrice.ToDomain()
	if err != nil {
		return nil, err
	}
	status, err := parcel.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	finalPrice, err := dto.FinalPrice.ToDomain()
	if err != nil {
		return nil, err
	}
	assignmentID, err := columns.UUIDFromPtr(dto.AssignmentID)
	if err != nil {
		return nil, err
	}

	return parcel.RestoreParcel(id, parcel.Params{
		SenderID:        senderID,
		Title:           dto.Title,
		Description:     dto.Description,
		Dimensions:      dims,
		Weight:          kernel.Weight(dto.WeightGrams),
		Type:            packageType,
		DeclaredValue:   declared,
		Pickup:          pickup,
		Dropoff:         dropoff,
		Window:          window,
		OfferedPrice:    offered,
		PaymentMethodID: dto.PaymentMethodID,
	}, status, finalPrice, assignmentID, dto.Version, dto.CreatedAt, dto.UpdatedAt)
}
