package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/pkg/guard"
)

var ErrCreatePackageCommandIsNotConstructed = errors.New(
	"CreatePackageCommand must be created via NewCreatePackageCommand constructor",
)

// CreatePackageCommand posts a new package on behalf of its sender.
//
// Example:
//
//	cmd, err := NewCreatePackageCommand(kernel.NewUUID(), params)
//	if err != nil {
//	    return fmt.Errorf("invalid package: %w", err)
//	}
//	err = handler.Handle(ctx, cmd)
type CreatePackageCommand struct {
	packageID kernel.UUID
	params    parcel.Params

	guard guard.ConstructorGuard
}

// NewCreatePackageCommand checks the identifiers only; the package rules are
// enforced when the aggregate is built.
func NewCreatePackageCommand(packageID kernel.UUID, params parcel.Params) (CreatePackageCommand, error) {
	if err := errors.Join(packageID.Validate(), params.SenderID.Validate()); err != nil {
		return CreatePackageCommand{}, err
	}

	return CreatePackageCommand{
		packageID: packageID,
		params:    params,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreatePackageCommand) Validate() error {
	return c.guard.Validate(ErrCreatePackageCommandIsNotConstructed)
}

func (c CreatePackageCommand) PackageID() kernel.UUID { return c.packageID }
func (c CreatePackageCommand) Params() parcel.Params  { return c.params }
