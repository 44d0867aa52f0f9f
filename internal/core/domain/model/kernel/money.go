package kernel

import (
	"errors"
	"fmt"
	"strings"

	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var (
	// ErrMoneyIsNotConstructed is returned for zero-value Money.
	ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney")
	// ErrCurrencyMismatch is returned when combining amounts in different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money is a fixed-point monetary amount in minor units (cents, kobo, ...).
// All arithmetic is integer; there is no floating point anywhere in fee or
// settlement computation.
type Money struct { //nolint:recvcheck //using for validation
	minor    int64
	currency string
	guard    guard.ConstructorGuard
}

// NewMoney creates a non-negative amount. The currency is an ISO 4217 code
// and is upper-cased.
func NewMoney(minor int64, currency string) (Money, error) {
	m := Money{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(m.setMinor(minor), m.setCurrency(currency)); err != nil {
		return Money{}, err
	}

	return m, nil
}

// NewPositiveMoney is NewMoney that additionally rejects zero.
func NewPositiveMoney(minor int64, currency string) (Money, error) {
	m, err := NewMoney(minor, currency)
	if err != nil {
		return Money{}, err
	}
	if !m.IsPositive() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is not greater than 0", minor))
	}
	return m, nil
}

// MustMoney panics on invalid input. Intended for tests and constants.
func MustMoney(minor int64, currency string) Money {
	m, err := NewMoney(minor, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

func (m Money) Minor() int64 {
	return m.minor
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsPositive() bool {
	return m.minor > 0
}

func (m Money) IsZero() bool {
	return m.minor == 0
}

func (m Money) IsEqual(other Money) bool {
	return m.minor == other.minor && m.currency == other.currency
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.minor+other.minor, m.currency)
}

// Sub returns m - other; the result must stay non-negative.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	if other.minor > m.minor {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", m.minor-other.minor, 0, m.minor)
	}
	return NewMoney(m.minor-other.minor, m.currency)
}

// LessThan compares two amounts of the same currency.
func (m Money) LessThan(other Money) (bool, error) {
	if err := m.sameCurrency(other); err != nil {
		return false, err
	}
	return m.minor < other.minor, nil
}

// BasisPoints returns m * bps / 10000 rounded half up. 100 bps == 1%.
func (m Money) BasisPoints(bps int64) (Money, error) {
	if bps < 0 {
		return Money{}, errs.NewValueIsOutOfRangeError("basis points", bps, 0, 10000)
	}
	return NewMoney((m.minor*bps+5000)/10000, m.currency)
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.minor, m.currency)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return nil
}

func (m *Money) setMinor(minor int64) error {
	if minor < 0 {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d is negative", minor))
	}
	m.minor = minor
	return nil
}

func (m *Money) setCurrency(currency string) error {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO 4217 code", currency))
	}
	m.currency = code
	return nil
}
