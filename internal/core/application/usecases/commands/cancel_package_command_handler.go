package commands

import (
	"context"
	"time"
)

type CancelPackageCommandHandler struct {
	uowFactory ParcelUoWFactory
}

func NewCancelPackageCommandHandler(uowFactory ParcelUoWFactory) CancelPackageCommandHandler {
	return CancelPackageCommandHandler{uowFactory: uowFactory}
}

// Handle cancels the package if the actor is its sender. A bound package
// must be released by cancelling its assignment first.
func (h CancelPackageCommandHandler) Handle(ctx context.Context, command CancelPackageCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ParcelRepository()

	pkg, err := repo.Get(ctx, command.PackageID())
	if err != nil {
		return err
	}

	if err = pkg.Cancel(command.ActorID(), time.Now()); err != nil {
		return err
	}

	if err = repo.Update(ctx, pkg); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
