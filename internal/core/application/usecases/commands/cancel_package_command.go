package commands

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrCancelPackageCommandIsNotConstructed = errors.New(
	"CancelPackageCommand must be created via NewCancelPackageCommand constructor",
)

// CancelPackageCommand soft-cancels a package that is not bound to an
// assignment. Packages are never deleted.
type CancelPackageCommand struct {
	packageID kernel.UUID
	actorID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelPackageCommand(packageID, actorID kernel.UUID) (CancelPackageCommand, error) {
	if err := errors.Join(packageID.Validate(), actorID.Validate()); err != nil {
		return CancelPackageCommand{}, err
	}

	return CancelPackageCommand{
		packageID: packageID,
		actorID:   actorID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CancelPackageCommand) Validate() error {
	return c.guard.Validate(ErrCancelPackageCommandIsNotConstructed)
}

func (c CancelPackageCommand) PackageID() kernel.UUID { return c.packageID }
func (c CancelPackageCommand) ActorID() kernel.UUID   { return c.actorID }
