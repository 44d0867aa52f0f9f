package parcel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"
)

// ErrParcelIsNotConstructed is returned for a Parcel not created through
// NewParcel or RestoreParcel.
var ErrParcelIsNotConstructed = errors.New("Parcel must be created via NewParcel constructor")

// Params are the sender-supplied attributes of a package.
type Params struct {
	SenderID        kernel.UUID
	Title           string
	Description     string
	Dimensions      kernel.Dimensions
	Weight          kernel.Weight
	Type            kernel.PackageType
	DeclaredValue   kernel.Money
	Pickup          kernel.Address
	Dropoff         kernel.Address
	Window          kernel.DateWindow
	OfferedPrice    kernel.Money
	PaymentMethodID string
}

// Parcel is a package posted by a sender.
//
// Invariants:
//   - a package is bound to at most one assignment at a time
//   - status other than POSTED and CANCELLED requires a binding
//   - status and final price of a bound package are changed only through
//     the binding assignment (Bind, Follow, Unbind)
//   - packages are soft-cancelled, never deleted
type Parcel struct {
	id           kernel.UUID
	params       Params
	status       Status
	finalPrice   *kernel.Money
	assignmentID *kernel.UUID
	version      int64
	createdAt    time.Time
	updatedAt    time.Time

	isConstructed bool
}

// NewParcel validates params and creates a POSTED package.
func NewParcel(id kernel.UUID, params Params, now time.Time) (*Parcel, error) {
	p := &Parcel{
		id:            id,
		status:        Posted,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(id.Validate(), p.setParams(params)); err != nil {
		return nil, err
	}

	return p, nil
}

// RestoreParcel rebuilds a package from persistence.
func RestoreParcel(
	id kernel.UUID,
	params Params,
	status Status,
	finalPrice *kernel.Money,
	assignmentID *kernel.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) (*Parcel, error) {
	p := &Parcel{
		id:            id,
		status:        status,
		finalPrice:    finalPrice,
		assignmentID:  assignmentID,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(id.Validate(), status.Validate(), p.setParams(params)); err != nil {
		return nil, err
	}
	if status.RequiresBinding() && assignmentID == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("package",
			fmt.Errorf("status %s requires an assignment binding", status))
	}

	return p, nil
}

// Validate ensures the package was built by NewParcel or RestoreParcel.
func (p *Parcel) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrParcelIsNotConstructed
	}
	return nil
}

func (p *Parcel) ID() kernel.UUID                  { return p.id }
func (p *Parcel) Params() Params                   { return p.params }
func (p *Parcel) SenderID() kernel.UUID            { return p.params.SenderID }
func (p *Parcel) Title() string                    { return p.params.Title }
func (p *Parcel) Description() string              { return p.params.Description }
func (p *Parcel) Dimensions() kernel.Dimensions    { return p.params.Dimensions }
func (p *Parcel) Weight() kernel.Weight            { return p.params.Weight }
func (p *Parcel) Type() kernel.PackageType         { return p.params.Type }
func (p *Parcel) DeclaredValue() kernel.Money      { return p.params.DeclaredValue }
func (p *Parcel) Pickup() kernel.Address           { return p.params.Pickup }
func (p *Parcel) Dropoff() kernel.Address          { return p.params.Dropoff }
func (p *Parcel) Window() kernel.DateWindow        { return p.params.Window }
func (p *Parcel) OfferedPrice() kernel.Money       { return p.params.OfferedPrice }
func (p *Parcel) PaymentMethodID() string          { return p.params.PaymentMethodID }
func (p *Parcel) Status() Status                   { return p.status }
func (p *Parcel) FinalPrice() *kernel.Money        { return p.finalPrice }
func (p *Parcel) AssignmentID() *kernel.UUID       { return p.assignmentID }
func (p *Parcel) Version() int64                   { return p.version }
func (p *Parcel) CreatedAt() time.Time             { return p.createdAt }
func (p *Parcel) UpdatedAt() time.Time             { return p.updatedAt }
func (p *Parcel) IsBound() bool                    { return p.assignmentID != nil }
func (p *Parcel) IsSentBy(userID kernel.UUID) bool { return p.params.SenderID.IsEqual(userID) }

// IsBoundTo reports whether assignmentID holds the binding.
func (p *Parcel) IsBoundTo(assignmentID kernel.UUID) bool {
	return p.assignmentID != nil && p.assignmentID.IsEqual(assignmentID)
}

// IncrementVersion is called by the repository after a successful versioned write.
func (p *Parcel) IncrementVersion() {
	p.version++
}

// Bind reserves the package for an assignment. Only POSTED unbound packages
// can be bound.
func (p *Parcel) Bind(assignmentID kernel.UUID, now time.Time) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}
	if p.IsBound() {
		return errs.NewInvalidStateErrorWithCause("package", p.status.String(), "bind",
			fmt.Errorf("already bound to assignment %s", p.assignmentID))
	}
	if p.status != Posted {
		return errs.NewInvalidStateError("package", p.status.String(), "bind")
	}

	id := assignmentID
	p.assignmentID = &id
	p.status = Matched
	p.updatedAt = now.UTC()
	return nil
}

// SetFinalPrice records the agreed price; it is set once per binding.
func (p *Parcel) SetFinalPrice(assignmentID kernel.UUID, price kernel.Money, now time.Time) error {
	if !p.IsBoundTo(assignmentID) {
		return errs.NewInvalidStateError("package", p.status.String(), "price unbound")
	}
	if p.finalPrice != nil {
		return errs.NewInvalidStateErrorWithCause("package", p.status.String(), "reprice",
			fmt.Errorf("final price already %s", p.finalPrice))
	}
	if err := price.Validate(); err != nil {
		return err
	}

	p.finalPrice = &price
	p.updatedAt = now.UTC()
	return nil
}

// Follow mirrors a status change of the binding assignment.
func (p *Parcel) Follow(assignmentID kernel.UUID, status Status, now time.Time) error {
	if !p.IsBoundTo(assignmentID) {
		return errs.NewInvalidStateErrorWithCause("package", p.status.String(), "follow assignment",
			fmt.Errorf("package is not bound to assignment %s", assignmentID))
	}
	if !status.RequiresBinding() {
		return errs.NewValueIsInvalidErrorWithCause("package status",
			fmt.Errorf("%s cannot be set by an assignment", status))
	}

	p.status = status
	p.updatedAt = now.UTC()
	return nil
}

// Unbind releases the package back to POSTED so it can be matched again.
func (p *Parcel) Unbind(assignmentID kernel.UUID, now time.Time) error {
	if !p.IsBoundTo(assignmentID) {
		return errs.NewInvalidStateErrorWithCause("package", p.status.String(), "unbind",
			fmt.Errorf("package is not bound to assignment %s", assignmentID))
	}
	if p.status == Delivered {
		return errs.NewInvalidStateError("package", p.status.String(), "unbind")
	}

	p.assignmentID = nil
	p.finalPrice = nil
	p.status = Posted
	p.updatedAt = now.UTC()
	return nil
}

// Cancel soft-cancels a package on behalf of its sender.
func (p *Parcel) Cancel(actorID kernel.UUID, now time.Time) error {
	if !p.IsSentBy(actorID) {
		return errs.NewForbiddenError("cancel package", "only the sender can cancel a package")
	}
	if p.IsBound() || p.status != Posted {
		return errs.NewInvalidStateError("package", p.status.String(), "cancel")
	}

	p.status = Cancelled
	p.updatedAt = now.UTC()
	return nil
}

func (p *Parcel) setParams(params Params) error {
	params.Title = strings.TrimSpace(params.Title)
	params.Description = strings.TrimSpace(params.Description)
	params.PaymentMethodID = strings.TrimSpace(params.PaymentMethodID)

	var errList []error
	if err := params.SenderID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("sender id", err))
	}
	if params.Title == "" {
		errList = append(errList, errs.NewValueIsRequiredError("title"))
	}
	if params.PaymentMethodID == "" {
		errList = append(errList, errs.NewValueIsRequiredError("payment method id"))
	}
	errList = append(errList,
		params.Dimensions.Validate(),
		params.Weight.Validate(),
		params.Type.Validate(),
		params.DeclaredValue.Validate(),
		params.Pickup.Validate(),
		params.Dropoff.Validate(),
		params.Window.Validate(),
		params.OfferedPrice.Validate(),
	)
	if params.OfferedPrice.Validate() == nil && !params.OfferedPrice.IsPositive() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("offered price",
			fmt.Errorf("%s is not greater than 0", params.OfferedPrice)))
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	p.params = params
	return nil
}
