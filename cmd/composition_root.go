package cmd

import (
	"context"
	"log/slog"

	httpin "parcelshare/internal/adapters/in/http"
	"parcelshare/internal/adapters/out/postgres"
	"parcelshare/internal/core/application/usecases/commands"
	"parcelshare/internal/core/application/usecases/queries"
	"parcelshare/internal/core/domain/services"
	"parcelshare/internal/core/ports"
	"parcelshare/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Infrastructure holds the adapters main opens and closes.
type Infrastructure struct {
	DB        *gorm.DB
	Gateway   ports.PaymentGateway
	Publisher ports.EventPublisher
	Deduper   ports.CallbackDeduper
	Logger    *slog.Logger
}

type CompositionRoot struct {
	cfg         Config
	infra       Infrastructure
	uowFactory  *postgres.GormUnitOfWorkFactory
	escrow      services.Escrow
	coordinator *commands.PaymentCoordinator
}

func NewCompositionRoot(cfg Config, infra Infrastructure) (*CompositionRoot, error) {
	fees, err := services.NewFeePolicy(cfg.PlatformFeeBps, cfg.GatewayFeeBps)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:        cfg,
		infra:      infra,
		uowFactory: postgres.NewGormUnitOfWorkFactory(infra.DB),
		escrow:     services.NewEscrow(fees),
	}
	c.coordinator = commands.NewPaymentCoordinator(c.newUoWFactory(), infra.Gateway, c.escrow, commands.RetryPolicy{
		MaxTries:        cfg.GatewayMaxTries,
		InitialInterval: cfg.GatewayRetryInitial,
		MaxInterval:     cfg.GatewayRetryMax,
	}, infra.Logger)
	return c, nil
}

// NewRouter builds the HTTP entry point with every handler wired.
func (c *CompositionRoot) NewRouter(ctx context.Context) (*echo.Echo, error) {
	server := httpin.NewServer(httpin.Handlers{
		CreatePackage:            c.CreateCreatePackageCommandHandler(),
		CancelPackage:            c.CreateCancelPackageCommandHandler(),
		CreateTrip:               c.CreateCreateTripCommandHandler(),
		RequestMatch:             c.CreateRequestMatchCommandHandler(),
		ProposePrice:             c.CreateProposePriceCommandHandler(),
		ConfirmPrice:             c.CreateConfirmPriceCommandHandler(),
		AcceptAssignment:         c.CreateAcceptAssignmentCommandHandler(),
		RecordSafetyConfirmation: c.CreateRecordSafetyConfirmationCommandHandler(),
		ConfirmPickup:            c.CreateConfirmPickupCommandHandler(),
		ConfirmDelivery:          c.CreateConfirmDeliveryCommandHandler(),
		CancelAssignment:         c.CreateCancelAssignmentCommandHandler(),
		RaiseDispute:             c.CreateRaiseDisputeCommandHandler(),
		ResolveDispute:           c.CreateResolveDisputeCommandHandler(),
		HandleGatewayCallback:    c.CreateHandleGatewayCallbackCommandHandler(),
		GetAssignmentSnapshot:    c.CreateGetAssignmentSnapshotQueryHandler(),
		GetAssignmentLedger:      c.CreateGetAssignmentLedgerQueryHandler(),
		GetTripCapacity:          c.CreateGetTripCapacityQueryHandler(),
	}, []byte(c.cfg.GatewayWebhookSecret))

	return httpin.NewRouter(ctx, server, httpin.RouterConfig{
		JWTSecret: []byte(c.cfg.JWTSecret),
		JWTIssuer: c.cfg.JWTIssuer,
		Logger:    c.infra.Logger,
	})
}

func (c *CompositionRoot) NewJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateDispatchOutboxCommandHandler(),
		c.CreateExpireStaleProposalsCommandHandler(),
		c.CreateRecoverStalledOperationsCommandHandler(),
		jobs.Schedules{
			OutboxDispatch:    c.cfg.OutboxSchedule,
			OutboxBatch:       c.cfg.OutboxBatch,
			ProposalExpiry:    c.cfg.ProposalExpirySchedule,
			ProposalTTL:       c.cfg.ProposalTTL,
			ExpiryBatch:       c.cfg.ProposalExpiryBatch,
			OperationRecovery: c.cfg.OperationRecoverySchedule,
			StalledAfter:      c.cfg.StalledOperationAfter,
			RecoveryBatch:     c.cfg.OperationRecoveryBatch,
		},
		c.infra.Logger,
	)
}

func (c *CompositionRoot) newUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreatePackageCommandHandler() commands.CreatePackageCommandHandler {
	var f commands.ParcelUoWFactory = FuncParcelUoWFactory(func() commands.ParcelUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreatePackageCommandHandler(f)
}

func (c *CompositionRoot) CreateCancelPackageCommandHandler() commands.CancelPackageCommandHandler {
	var f commands.ParcelUoWFactory = FuncParcelUoWFactory(func() commands.ParcelUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelPackageCommandHandler(f)
}

func (c *CompositionRoot) CreateCreateTripCommandHandler() commands.CreateTripCommandHandler {
	var f commands.TripUoWFactory = FuncTripUoWFactory(func() commands.TripUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateTripCommandHandler(f)
}

func (c *CompositionRoot) CreateRequestMatchCommandHandler() commands.RequestMatchCommandHandler {
	return commands.NewRequestMatchCommandHandler(c.newUoWFactory())
}

func (c *CompositionRoot) CreateProposePriceCommandHandler() commands.ProposePriceCommandHandler {
	return commands.NewProposePriceCommandHandler(c.newUoWFactory())
}

func (c *CompositionRoot) CreateConfirmPriceCommandHandler() commands.ConfirmPriceCommandHandler {
	return commands.NewConfirmPriceCommandHandler(c.newUoWFactory(), c.coordinator)
}

func (c *CompositionRoot) CreateAcceptAssignmentCommandHandler() commands.AcceptAssignmentCommandHandler {
	return commands.NewAcceptAssignmentCommandHandler(c.newUoWFactory())
}

func (c *CompositionRoot) CreateRecordSafetyConfirmationCommandHandler() commands.RecordSafetyConfirmationCommandHandler {
	return commands.NewRecordSafetyConfirmationCommandHandler(c.newUoWFactory(), c.infra.Logger)
}

func (c *CompositionRoot) CreateConfirmPickupCommandHandler() commands.ConfirmPickupCommandHandler {
	return commands.NewConfirmPickupCommandHandler(c.newUoWFactory(), c.coordinator, c.escrow)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() commands.ConfirmDeliveryCommandHandler {
	return commands.NewConfirmDeliveryCommandHandler(c.newUoWFactory(), c.escrow)
}

func (c *CompositionRoot) CreateCancelAssignmentCommandHandler() commands.CancelAssignmentCommandHandler {
	return commands.NewCancelAssignmentCommandHandler(c.newUoWFactory(), c.coordinator)
}

func (c *CompositionRoot) CreateRaiseDisputeCommandHandler() commands.RaiseDisputeCommandHandler {
	return commands.NewRaiseDisputeCommandHandler(c.newUoWFactory())
}

func (c *CompositionRoot) CreateResolveDisputeCommandHandler() commands.ResolveDisputeCommandHandler {
	return commands.NewResolveDisputeCommandHandler(c.newUoWFactory(), c.coordinator)
}

func (c *CompositionRoot) CreateHandleGatewayCallbackCommandHandler() commands.HandleGatewayCallbackCommandHandler {
	return commands.NewHandleGatewayCallbackCommandHandler(c.newUoWFactory(), c.coordinator, c.infra.Deduper, c.infra.Logger)
}

func (c *CompositionRoot) CreateDispatchOutboxCommandHandler() commands.DispatchOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchOutboxCommandHandler(f, c.infra.Publisher, c.infra.Logger)
}

func (c *CompositionRoot) CreateExpireStaleProposalsCommandHandler() commands.ExpireStaleProposalsCommandHandler {
	return commands.NewExpireStaleProposalsCommandHandler(c.newUoWFactory(), c.infra.Logger)
}

func (c *CompositionRoot) CreateRecoverStalledOperationsCommandHandler() commands.RecoverStalledOperationsCommandHandler {
	return commands.NewRecoverStalledOperationsCommandHandler(c.newUoWFactory(), c.coordinator, c.infra.Logger)
}

func (c *CompositionRoot) CreateGetAssignmentSnapshotQueryHandler() queries.GetAssignmentSnapshotQueryHandler {
	return queries.NewGetAssignmentSnapshotQueryHandler(c.infra.DB)
}

func (c *CompositionRoot) CreateGetAssignmentLedgerQueryHandler() queries.GetAssignmentLedgerQueryHandler {
	return queries.NewGetAssignmentLedgerQueryHandler(c.infra.DB)
}

func (c *CompositionRoot) CreateGetTripCapacityQueryHandler() queries.GetTripCapacityQueryHandler {
	return queries.NewGetTripCapacityQueryHandler(c.infra.DB)
}

type FuncParcelUoWFactory func() commands.ParcelUoW

func (f FuncParcelUoWFactory) Create() commands.ParcelUoW {
	return f()
}

type FuncTripUoWFactory func() commands.TripUoW

func (f FuncTripUoWFactory) Create() commands.TripUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
