package kernel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

var (
	ErrAddressIsNotConstructed    = errs.NewValueIsRequiredError("address must be created via NewAddress")
	ErrDateWindowIsNotConstructed = errs.NewValueIsRequiredError("date window must be created via NewDateWindow")
)

// Address is a postal address. Only city and country take part in matching;
// street and postal code are carried for the handover.
type Address struct { //nolint:recvcheck //using for validation
	street     string
	city       string
	postalCode string
	country    string
	guard      guard.ConstructorGuard
}

func NewAddress(street, city, postalCode, country string) (Address, error) {
	a := Address{
		street:     strings.TrimSpace(street),
		city:       strings.TrimSpace(city),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.ToUpper(strings.TrimSpace(country)),
		guard:      guard.NewConstructorGuard(),
	}

	var errList []error
	if a.city == "" {
		errList = append(errList, errs.NewValueIsRequiredError("city"))
	}
	if len(a.country) != 2 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("country",
			fmt.Errorf("%q is not an ISO 3166 alpha-2 code", country)))
	}
	if err := errors.Join(errList...); err != nil {
		return Address{}, err
	}

	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Street() string     { return a.street }
func (a Address) City() string       { return a.city }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }

func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.street, a.postalCode, a.city, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// DateWindow is an inclusive time range. Packages use it for the wanted
// pickup/delivery window, trips for departure..arrival.
type DateWindow struct { //nolint:recvcheck //using for validation
	from  time.Time
	to    time.Time
	guard guard.ConstructorGuard
}

func NewDateWindow(from, to time.Time) (DateWindow, error) {
	if from.IsZero() || to.IsZero() {
		return DateWindow{}, errs.NewValueIsRequiredError("date window bounds")
	}
	if to.Before(from) {
		return DateWindow{}, errs.NewValueIsInvalidErrorWithCause("date window",
			fmt.Errorf("end %s is before start %s", to.Format(time.RFC3339), from.Format(time.RFC3339)))
	}
	return DateWindow{from: from.UTC(), to: to.UTC(), guard: guard.NewConstructorGuard()}, nil
}

func (w DateWindow) Validate() error {
	return w.guard.Validate(ErrDateWindowIsNotConstructed)
}

func (w DateWindow) From() time.Time { return w.from }
func (w DateWindow) To() time.Time   { return w.to }

// Overlaps reports whether the two inclusive windows share at least one instant.
func (w DateWindow) Overlaps(other DateWindow) bool {
	return !w.to.Before(other.from) && !other.to.Before(w.from)
}
