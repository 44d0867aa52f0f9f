package commands_test

import (
	"testing"

	"parcelshare/internal/core/application/usecases/commands"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliver(t *testing.T, m *marketplace, id kernel.UUID) error {
	t.Helper()

	cmd, err := commands.NewConfirmDeliveryCommand(id, m.senderID, nil)
	require.NoError(t, err)
	return commands.NewConfirmDeliveryCommandHandler(m.store, m.escrow).Handle(t.Context(), cmd)
}

func TestConfirmDeliveryCommandHandler_Handle_ReleasesPayout(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.ship(t)
	m.check(t, id, safety.EventDelivery)

	// Act
	err := deliver(t, m, id)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, assignment.Delivered, m.assignment(t, id).Status())
	assert.Equal(t, parcel.Delivered, m.parcel(t).Status())
	assert.Equal(t, 7*kernel.Kilogram, m.trip(t).AvailableSpace())

	entries := m.ledger(t, id)
	require.NotNil(t, entries.Payout())
	require.NotNil(t, entries.Commission())
	assert.Equal(t, int64(3484), entries.Payout().Amount().Minor())
	assert.Equal(t, int64(400), entries.Commission().Amount().Minor())
	assert.Equal(t, 1, entries.Count(ledger.TypePayout, ledger.StatusCompleted))

	assert.Contains(t, m.events(), assignment.EventSettlementCompleted)
}

func TestConfirmDeliveryCommandHandler_Handle_RequiresDeliveryChecklist(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.ship(t)

	// Act
	err := deliver(t, m, id)

	// Assert
	require.ErrorIs(t, err, errs.ErrChecklistIncomplete)
	assert.Equal(t, assignment.InTransit, m.assignment(t, id).Status())
	assert.Nil(t, m.ledger(t, id).Payout())
}

func TestConfirmDeliveryCommandHandler_Handle_BeforePickup(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.confirm(t)

	// Act
	err := deliver(t, m, id)

	// Assert
	require.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestConfirmDeliveryCommandHandler_Handle_SecondCallIsRejected(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.ship(t)
	m.check(t, id, safety.EventDelivery)
	require.NoError(t, deliver(t, m, id))

	// Act
	err := deliver(t, m, id)

	// Assert
	require.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, 1, m.ledger(t, id).Count(ledger.TypePayout, ledger.StatusCompleted))
}
