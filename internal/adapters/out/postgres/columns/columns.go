// Package columns holds the value-object column groups shared by the
// repository DTOs. They are embedded with a prefix, so a package row has
// pickup_city and dropoff_city side by side.
package columns

import (
	"parcelshare/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type MoneyDTO struct {
	Minor    int64
	Currency string `gorm:"size:3"`
}

func MoneyFromDomain(m kernel.Money) MoneyDTO {
	return MoneyDTO{Minor: m.Minor(), Currency: m.Currency()}
}

func (dto MoneyDTO) ToDomain() (kernel.Money, error) {
	return kernel.NewMoney(dto.Minor, dto.Currency)
}

// NullableMoneyDTO stores an optional amount as two nullable columns.
type NullableMoneyDTO struct {
	Minor    *int64
	Currency *string `gorm:"size:3"`
}

func NullableMoneyFromDomain(m *kernel.Money) NullableMoneyDTO {
	if m == nil {
		return NullableMoneyDTO{}
	}
	minor, currency := m.Minor(), m.Currency()
	return NullableMoneyDTO{Minor: &minor, Currency: &currency}
}

func (dto NullableMoneyDTO) ToDomain() (*kernel.Money, error) {
	if dto.Minor == nil || dto.Currency == nil {
		return nil, nil
	}
	m, err := kernel.NewMoney(*dto.Minor, *dto.Currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type AddressDTO struct {
	Street     string
	City       string
	PostalCode string `gorm:"size:16"`
	Country    string `gorm:"size:2"`
}

func AddressFromDomain(a kernel.Address) AddressDTO {
	return AddressDTO{
		Street:     a.Street(),
		City:       a.City(),
		PostalCode: a.PostalCode(),
		Country:    a.Country(),
	}
}

func (dto AddressDTO) ToDomain() (kernel.Address, error) {
	return kernel.NewAddress(dto.Street, dto.City, dto.PostalCode, dto.Country)
}

type DimensionsDTO struct {
	Length int
	Width  int
	Height int
}

func DimensionsFromDomain(d kernel.Dimensions) DimensionsDTO {
	return DimensionsDTO{Length: d.Length(), Width: d.Width(), Height: d.Height()}
}

func (dto DimensionsDTO) ToDomain() (kernel.Dimensions, error) {
	return kernel.NewDimensions(dto.Length, dto.Width, dto.Height)
}

func UUIDPtr(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func UUIDFromPtr(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// UUID converts a stored id. The zero UUID maps to the zero kernel.UUID so
// optional references survive a round trip.
func UUID(raw uuid.UUID) (kernel.UUID, error) {
	if raw == uuid.Nil {
		return kernel.UUID{}, nil
	}
	return kernel.UUIDFromBytes(raw[:])
}
