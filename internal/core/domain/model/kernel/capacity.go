package kernel

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"parcelshare/internal/pkg/errs"
	"parcelshare/internal/pkg/guard"
)

// Weight is a mass in grams.
type Weight int64

const (
	Gram     Weight = 1
	Kilogram Weight = 1000
)

// Validate rejects non-positive weights.
func (w Weight) Validate() error {
	if w <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%d g is not greater than 0", int64(w)))
	}
	return nil
}

func (w Weight) Grams() int64 {
	return int64(w)
}

func (w Weight) String() string {
	return fmt.Sprintf("%dg", int64(w))
}

// ErrDimensionsAreNotConstructed is returned for zero-value Dimensions.
var ErrDimensionsAreNotConstructed = errs.NewValueIsRequiredError("dimensions must be created via NewDimensions")

// Dimensions is a box measured in whole centimetres.
type Dimensions struct { //nolint:recvcheck //using for validation
	length int
	width  int
	height int
	guard  guard.ConstructorGuard
}

func NewDimensions(length, width, height int) (Dimensions, error) {
	d := Dimensions{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		positiveSide("length", length),
		positiveSide("width", width),
		positiveSide("height", height),
	); err != nil {
		return Dimensions{}, err
	}

	d.length, d.width, d.height = length, width, height
	return d, nil
}

func MustDimensions(length, width, height int) Dimensions {
	d, err := NewDimensions(length, width, height)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Dimensions) Validate() error {
	return d.guard.Validate(ErrDimensionsAreNotConstructed)
}

func (d Dimensions) Length() int { return d.length }
func (d Dimensions) Width() int  { return d.width }
func (d Dimensions) Height() int { return d.height }

// FitsWithin reports whether d fits inside outer when both boxes are
// rotated so their sides line up smallest to largest.
func (d Dimensions) FitsWithin(outer Dimensions) bool {
	inner := d.sortedSides()
	bounds := outer.sortedSides()
	for i := range inner {
		if inner[i] > bounds[i] {
			return false
		}
	}
	return true
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%dx%dcm", d.length, d.width, d.height)
}

func (d Dimensions) sortedSides() []int {
	sides := []int{d.length, d.width, d.height}
	slices.Sort(sides)
	return sides
}

func positiveSide(name string, v int) error {
	if v <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%d cm is not greater than 0", v))
	}
	return nil
}

// PackageType classifies contents; trips list the types they accept.
type PackageType string

const (
	PackageTypeDocuments   PackageType = "DOCUMENTS"
	PackageTypeElectronics PackageType = "ELECTRONICS"
	PackageTypeClothing    PackageType = "CLOTHING"
	PackageTypeFood        PackageType = "FOOD"
	PackageTypeFragile     PackageType = "FRAGILE"
	PackageTypeOther       PackageType = "OTHER"
)

var packageTypes = []PackageType{
	PackageTypeDocuments,
	PackageTypeElectronics,
	PackageTypeClothing,
	PackageTypeFood,
	PackageTypeFragile,
	PackageTypeOther,
}

// ParsePackageType is case-insensitive.
func ParsePackageType(s string) (PackageType, error) {
	t := PackageType(strings.ToUpper(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t PackageType) Validate() error {
	if !slices.Contains(packageTypes, t) {
		return errs.NewValueIsInvalidErrorWithCause("package type", fmt.Errorf("%q is not a known package type", string(t)))
	}
	return nil
}
