package commands_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"parcelshare/internal/core/application/usecases/commands"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/core/domain/model/trip"
	"parcelshare/internal/core/domain/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) Authorize(ctx context.Context, methodID string, amount kernel.Money, idempotencyKey string) (string, error) {
	args := m.Called(ctx, methodID, amount, idempotencyKey)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) Capture(ctx context.Context, gatewayTxnID string) error {
	args := m.Called(ctx, gatewayTxnID)
	return args.Error(0)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, gatewayTxnID string, amount kernel.Money) error {
	args := m.Called(ctx, gatewayTxnID, amount)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, event assignment.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockCallbackDeduper struct{ mock.Mock }

func (m *MockCallbackDeduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCallbackDeduper) Forget(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func eur(minor int64) kernel.Money { return kernel.MustMoney(minor, "EUR") }

// marketplace wires every handler to one in-memory store and a mocked gateway.
type marketplace struct {
	store       *memStore
	gateway     *MockPaymentGateway
	escrow      services.Escrow
	coordinator *commands.PaymentCoordinator
	logger      *slog.Logger

	senderID   kernel.UUID
	travelerID kernel.UUID
	packageID  kernel.UUID
	tripID     kernel.UUID
}

func newMarketplace(t *testing.T) *marketplace {
	t.Helper()

	fees, err := services.NewFeePolicy(1000, 290)
	require.NoError(t, err)

	m := &marketplace{
		store:   newMemStore(),
		gateway: &MockPaymentGateway{},
		escrow:  services.NewEscrow(fees),
		logger:  slog.New(slog.DiscardHandler),
	}
	m.coordinator = commands.NewPaymentCoordinator(m.store, m.gateway, m.escrow, commands.RetryPolicy{
		MaxTries:        3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, m.logger)

	m.senderID = kernel.NewUUID()
	m.travelerID = kernel.NewUUID()
	m.packageID = m.postPackage(t, m.senderID, 3*kernel.Kilogram)
	m.tripID = m.postTrip(t, m.travelerID, 10*kernel.Kilogram)

	t.Cleanup(func() { m.gateway.AssertExpectations(t) })
	return m
}

func (m *marketplace) postPackage(t *testing.T, senderID kernel.UUID, weight kernel.Weight) kernel.UUID {
	t.Helper()

	pickup, err := kernel.NewAddress("Alexanderplatz 1", "Berlin", "10178", "DE")
	require.NoError(t, err)
	dropoff, err := kernel.NewAddress("Rynek 1", "Wroclaw", "50-106", "PL")
	require.NoError(t, err)
	start := time.Now().Add(24 * time.Hour)
	window, err := kernel.NewDateWindow(start, start.Add(72*time.Hour))
	require.NoError(t, err)

	id := kernel.NewUUID()
	cmd, err := commands.NewCreatePackageCommand(id, parcel.Params{
		SenderID:        senderID,
		Title:           "Books",
		Dimensions:      kernel.MustDimensions(30, 20, 10),
		Weight:          weight,
		Type:            kernel.PackageTypeDocuments,
		DeclaredValue:   eur(5000),
		Pickup:          pickup,
		Dropoff:         dropoff,
		Window:          window,
		OfferedPrice:    eur(4000),
		PaymentMethodID: "pm_card_visa",
	})
	require.NoError(t, err)
	require.NoError(t, commands.NewCreatePackageCommandHandler(memParcelUoWFactory{m.store}).Handle(t.Context(), cmd))
	return id
}

func (m *marketplace) postTrip(t *testing.T, travelerID kernel.UUID, capacity kernel.Weight) kernel.UUID {
	t.Helper()
	return m.postPricedTrip(t, travelerID, capacity, trip.Pricing{Currency: "EUR"})
}

func (m *marketplace) postPricedTrip(t *testing.T, travelerID kernel.UUID, capacity kernel.Weight, pricing trip.Pricing) kernel.UUID {
	t.Helper()

	origin, err := kernel.NewAddress("", "Berlin", "", "DE")
	require.NoError(t, err)
	destination, err := kernel.NewAddress("", "Wroclaw", "", "PL")
	require.NoError(t, err)
	start := time.Now().Add(48 * time.Hour)
	window, err := kernel.NewDateWindow(start, start.Add(6*time.Hour))
	require.NoError(t, err)

	id := kernel.NewUUID()
	cmd, err := commands.NewCreateTripCommand(id, trip.Params{
		TravelerID:    travelerID,
		Origin:        origin,
		Destination:   destination,
		Window:        window,
		MaxWeight:     capacity,
		MaxDimensions: kernel.MustDimensions(70, 45, 25),
		Pricing:       pricing,
		AcceptedTypes: []kernel.PackageType{kernel.PackageTypeDocuments},
	})
	require.NoError(t, err)
	require.NoError(t, commands.NewCreateTripCommandHandler(memTripUoWFactory{m.store}).Handle(t.Context(), cmd))
	return id
}

// propose opens a negotiation at the package's offered price, sender first.
func (m *marketplace) propose(t *testing.T) kernel.UUID {
	t.Helper()

	id := kernel.NewUUID()
	cmd, err := commands.NewRequestMatchCommand(id, m.packageID, m.tripID, m.senderID)
	require.NoError(t, err)
	require.NoError(t, commands.NewRequestMatchCommandHandler(m.store).Handle(t.Context(), cmd))
	return id
}

func (m *marketplace) confirmPrice(t *testing.T, id, actorID kernel.UUID) error {
	t.Helper()

	cmd, err := commands.NewConfirmPriceCommand(id, actorID, nil)
	require.NoError(t, err)
	return commands.NewConfirmPriceCommandHandler(m.store, m.coordinator).Handle(t.Context(), cmd)
}

// match drives a fresh negotiation to MATCHED with an authorized payment.
func (m *marketplace) match(t *testing.T) kernel.UUID {
	t.Helper()

	m.gateway.On("Authorize", mock.Anything, "pm_card_visa", eur(4000), mock.Anything).
		Return("gw_auth_1", nil).Once()

	id := m.propose(t)
	require.NoError(t, m.confirmPrice(t, id, m.senderID))
	require.NoError(t, m.confirmPrice(t, id, m.travelerID))
	require.Equal(t, assignment.Matched, m.assignment(t, id).Status())
	return id
}

func (m *marketplace) accept(t *testing.T, id, actorID kernel.UUID) error {
	t.Helper()

	cmd, err := commands.NewAcceptAssignmentCommand(id, actorID, nil)
	require.NoError(t, err)
	return commands.NewAcceptAssignmentCommandHandler(m.store).Handle(t.Context(), cmd)
}

// confirm drives a fresh negotiation to CONFIRMED.
func (m *marketplace) confirm(t *testing.T) kernel.UUID {
	t.Helper()

	id := m.match(t)
	require.NoError(t, m.accept(t, id, m.senderID))
	require.NoError(t, m.accept(t, id, m.travelerID))
	return id
}

func (m *marketplace) check(t *testing.T, id kernel.UUID, event safety.Event) {
	t.Helper()

	handler := commands.NewRecordSafetyConfirmationCommandHandler(m.store, m.logger)
	for _, item := range event.RequiredItems() {
		cmd, err := commands.NewRecordSafetyConfirmationCommand(id, m.travelerID, event, item, true, nil)
		require.NoError(t, err)
		_, err = handler.Handle(t.Context(), cmd)
		require.NoError(t, err)
	}
}

func (m *marketplace) pickUp(t *testing.T, id kernel.UUID) error {
	t.Helper()

	cmd, err := commands.NewConfirmPickupCommand(id, m.travelerID, nil)
	require.NoError(t, err)
	return commands.NewConfirmPickupCommandHandler(m.store, m.coordinator, m.escrow).Handle(t.Context(), cmd)
}

// ship drives a fresh negotiation to IN_TRANSIT with a captured payment.
func (m *marketplace) ship(t *testing.T) kernel.UUID {
	t.Helper()

	id := m.confirm(t)
	m.check(t, id, safety.EventPickup)
	m.gateway.On("Capture", mock.Anything, "gw_auth_1").Return(nil).Once()
	require.NoError(t, m.pickUp(t, id))
	return id
}

func (m *marketplace) cancel(t *testing.T, id, actorID kernel.UUID) (assignment.CancelOutcome, error) {
	t.Helper()

	cmd, err := commands.NewCancelAssignmentCommand(id, actorID, "changed plans", nil)
	require.NoError(t, err)
	return commands.NewCancelAssignmentCommandHandler(m.store, m.coordinator).Handle(t.Context(), cmd)
}

func (m *marketplace) assignment(t *testing.T, id kernel.UUID) *assignment.Assignment {
	t.Helper()

	a, err := m.store.Create().AssignmentRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return a
}

func (m *marketplace) parcel(t *testing.T) *parcel.Parcel {
	t.Helper()

	p, err := m.store.Create().ParcelRepository().Get(t.Context(), m.packageID)
	require.NoError(t, err)
	return p
}

func (m *marketplace) trip(t *testing.T) *trip.Trip {
	t.Helper()

	tr, err := m.store.Create().TripRepository().Get(t.Context(), m.tripID)
	require.NoError(t, err)
	return tr
}

func (m *marketplace) ledger(t *testing.T, id kernel.UUID) ledger.Entries {
	t.Helper()

	entries, err := m.store.Create().LedgerRepository().ListByAssignment(t.Context(), id)
	require.NoError(t, err)
	return entries
}

func (m *marketplace) events() []assignment.EventName {
	var names []assignment.EventName
	for _, row := range m.store.snapshot().outbox {
		names = append(names, row.msg.Event.Name)
	}
	return names
}
