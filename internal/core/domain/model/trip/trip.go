package trip

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
)

// ErrTripIsNotConstructed is returned by Validate for a Trip that bypassed
// NewTrip and RestoreTrip.
var ErrTripIsNotConstructed = errors.New("Trip must be created via NewTrip constructor")

// Pricing is the traveler's price guidance. PricePerKg is informational;
// MinPrice and MaxPrice, when set, bound every proposal, the package's
// opening offer included.
type Pricing struct {
	Currency   string
	PricePerKg *kernel.Money
	MinPrice   *kernel.Money
	MaxPrice   *kernel.Money
}

// Params are the traveler-supplied attributes of a trip.
type Params struct {
	TravelerID    kernel.UUID
	Origin        kernel.Address
	Destination   kernel.Address
	Window        kernel.DateWindow
	MaxWeight     kernel.Weight
	MaxDimensions kernel.Dimensions
	Pricing       Pricing
	AcceptedTypes []kernel.PackageType
}

// Trip holds 0 <= availableSpace <= maxWeight at all times.
type Trip struct {
	id             kernel.UUID
	params         Params
	availableSpace kernel.Weight
	version        int64
	createdAt      time.Time
	updatedAt      time.Time

	isConstructed bool
}

// NewTrip validates params and opens a trip with its whole MaxWeight
// available.
//
// Parameters:
//   - id: unique identifier of the trip
//   - params: route, dates, capacity limits, pricing and accepted types
//   - now: creation time, stored in UTC
//
// Returns:
//   - *Trip: the trip with AvailableSpace equal to MaxWeight
//   - error: every invalid field joined into one error
//
// Example:
//
//	tr, err := trip.NewTrip(kernel.NewUUID(), trip.Params{
//	    TravelerID:    travelerID,
//	    Origin:        berlin,
//	    Destination:   wroclaw,
//	    Window:        window,
//	    MaxWeight:     10 * kernel.Kilogram,
//	    MaxDimensions: kernel.MustDimensions(70, 45, 25),
//	    Pricing:       trip.Pricing{Currency: "EUR"},
//	    AcceptedTypes: []kernel.PackageType{kernel.PackageTypeDocuments},
//	}, time.Now())
//	if err != nil {
//	    // invalid params
//	}
func NewTrip(id kernel.UUID, params Params, now time.Time) (*Trip, error) {
	t := &Trip{
		id:            id,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(id.Validate(), t.setParams(params)); err != nil {
		return nil, err
	}
	t.availableSpace = t.params.MaxWeight

	return t, nil
}

// RestoreTrip rebuilds a trip from persistence. availableSpace must lie
// within [0, MaxWeight].
func RestoreTrip(
	id kernel.UUID,
	params Params,
	availableSpace kernel.Weight,
	version int64,
	createdAt, updatedAt time.Time,
) (*Trip, error) {
	t := &Trip{
		id:            id,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(id.Validate(), t.setParams(params)); err != nil {
		return nil, err
	}
	if availableSpace < 0 || availableSpace > t.params.MaxWeight {
		return nil, errs.NewValueIsOutOfRangeError("available space", availableSpace.Grams(), 0, t.params.MaxWeight.Grams())
	}
	t.availableSpace = availableSpace

	return t, nil
}

// Validate ensures the trip was built by NewTrip or RestoreTrip.
func (t *Trip) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTripIsNotConstructed
	}
	return nil
}

// Params returns a copy; mutating AcceptedTypes does not touch the trip.
func (t *Trip) Params() Params {
	params := t.params
	params.AcceptedTypes = slices.Clone(t.params.AcceptedTypes)
	return params
}

func (t *Trip) ID() kernel.UUID                      { return t.id }
func (t *Trip) TravelerID() kernel.UUID              { return t.params.TravelerID }
func (t *Trip) Origin() kernel.Address               { return t.params.Origin }
func (t *Trip) Destination() kernel.Address          { return t.params.Destination }
func (t *Trip) Window() kernel.DateWindow            { return t.params.Window }
func (t *Trip) MaxWeight() kernel.Weight             { return t.params.MaxWeight }
func (t *Trip) MaxDimensions() kernel.Dimensions     { return t.params.MaxDimensions }
func (t *Trip) Pricing() Pricing                     { return t.params.Pricing }
func (t *Trip) Currency() string                     { return t.params.Pricing.Currency }
func (t *Trip) AvailableSpace() kernel.Weight        { return t.availableSpace }
func (t *Trip) Version() int64                       { return t.version }
func (t *Trip) CreatedAt() time.Time                 { return t.createdAt }
func (t *Trip) UpdatedAt() time.Time                 { return t.updatedAt }
func (t *Trip) IsOperatedBy(userID kernel.UUID) bool { return t.params.TravelerID.IsEqual(userID) }
func (t *Trip) AcceptedTypes() []kernel.PackageType  { return slices.Clone(t.params.AcceptedTypes) }

// IncrementVersion is called by the repository after a successful versioned write.
func (t *Trip) IncrementVersion() {
	t.version++
}

// Accepts reports whether packages of type pt may travel on this trip.
func (t *Trip) Accepts(pt kernel.PackageType) bool {
	return slices.Contains(t.params.AcceptedTypes, pt)
}

// Reserve takes weight out of the available space.
func (t *Trip) Reserve(weight kernel.Weight, now time.Time) error {
	if err := weight.Validate(); err != nil {
		return err
	}
	if weight > t.availableSpace {
		return fmt.Errorf("%w: trip %s has %s left, package needs %s",
			errs.ErrInsufficientTripCapacity, t.id, t.availableSpace, weight)
	}

	t.availableSpace -= weight
	t.updatedAt = now.UTC()
	return nil
}

// Release gives reserved weight back. Releasing more than was reserved is an
// invariant violation.
func (t *Trip) Release(weight kernel.Weight, now time.Time) error {
	if err := weight.Validate(); err != nil {
		return err
	}
	if t.availableSpace+weight > t.params.MaxWeight {
		return errs.NewValueIsOutOfRangeError("available space",
			(t.availableSpace + weight).Grams(), 0, t.params.MaxWeight.Grams())
	}

	t.availableSpace += weight
	t.updatedAt = now.UTC()
	return nil
}

// CheckPrice validates a proposal against the trip currency and price band.
func (t *Trip) CheckPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return err
	}
	if price.Currency() != t.params.Pricing.Currency {
		return errs.NewValueIsInvalidErrorWithCause("price",
			fmt.Errorf("%w: trip is priced in %s", kernel.ErrCurrencyMismatch, t.params.Pricing.Currency))
	}
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%s is not greater than 0", price))
	}

	pricing := t.params.Pricing
	minMinor, maxMinor := int64(1), int64(math.MaxInt64)
	if pricing.MinPrice != nil {
		minMinor = pricing.MinPrice.Minor()
	}
	if pricing.MaxPrice != nil {
		maxMinor = pricing.MaxPrice.Minor()
	}
	if price.Minor() < minMinor || price.Minor() > maxMinor {
		return errs.NewValueIsOutOfRangeError("price", price.Minor(), minMinor, maxMinor)
	}
	return nil
}

// Quote returns PricePerKg applied to weight, rounded half up to a minor unit.
func (t *Trip) Quote(weight kernel.Weight) (kernel.Money, bool) {
	perKg := t.params.Pricing.PricePerKg
	if perKg == nil {
		return kernel.Money{}, false
	}
	quote, err := kernel.NewMoney((perKg.Minor()*weight.Grams()+500)/1000, perKg.Currency())
	if err != nil {
		return kernel.Money{}, false
	}
	return quote, true
}

func (t *Trip) setParams(params Params) error {
	params.Pricing.Currency = strings.ToUpper(strings.TrimSpace(params.Pricing.Currency))

	errList := []error{
		params.Origin.Validate(),
		params.Destination.Validate(),
		params.Window.Validate(),
		params.MaxWeight.Validate(),
		params.MaxDimensions.Validate(),
	}
	if err := params.TravelerID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("traveler id", err))
	}
	if len(params.AcceptedTypes) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("accepted package types"))
	}
	for _, pt := range params.AcceptedTypes {
		errList = append(errList, pt.Validate())
	}
	errList = append(errList, params.Pricing.validate())

	if err := errors.Join(errList...); err != nil {
		return err
	}

	params.AcceptedTypes = slices.Compact(slices.Sorted(slices.Values(params.AcceptedTypes)))
	t.params = params
	return nil
}

func (p Pricing) validate() error {
	if len(p.Currency) != 3 {
		return errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO 4217 code", p.Currency))
	}
	for name, m := range map[string]*kernel.Money{"price per kg": p.PricePerKg, "min price": p.MinPrice, "max price": p.MaxPrice} {
		if m == nil {
			continue
		}
		if err := m.Validate(); err != nil {
			return err
		}
		if m.Currency() != p.Currency {
			return errs.NewValueIsInvalidErrorWithCause(name, kernel.ErrCurrencyMismatch)
		}
	}
	if p.MinPrice != nil && p.MaxPrice != nil && p.MaxPrice.Minor() < p.MinPrice.Minor() {
		return errs.NewValueIsInvalidErrorWithCause("price band",
			fmt.Errorf("max %s is below min %s", p.MaxPrice, p.MinPrice))
	}
	return nil
}
