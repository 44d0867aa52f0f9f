package commands

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/parcel"
)

// CreatePackageCommandHandler stores a new POSTED package.
type CreatePackageCommandHandler struct {
	uowFactory ParcelUoWFactory
}

func NewCreatePackageCommandHandler(uowFactory ParcelUoWFactory) CreatePackageCommandHandler {
	return CreatePackageCommandHandler{uowFactory: uowFactory}
}

func (h CreatePackageCommandHandler) Handle(ctx context.Context, command CreatePackageCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	pkg, err := parcel.NewParcel(command.PackageID(), command.Params(), time.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ParcelRepository().Add(ctx, pkg); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
