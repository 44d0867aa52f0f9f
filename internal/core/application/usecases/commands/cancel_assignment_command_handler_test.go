package commands_test

import (
	"errors"
	"testing"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"
	"parcelshare/internal/core/domain/model/parcel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelAssignmentCommandHandler_Handle_WithoutReservation(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.propose(t)

	// Act
	outcome, err := m.cancel(t, id, m.travelerID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, assignment.CancelApplied, outcome)
	a := m.assignment(t, id)
	assert.Equal(t, assignment.Cancelled, a.Status())
	assert.Equal(t, "changed plans", a.CancelReason())
	assert.Contains(t, m.events(), assignment.EventCancelled)
	m.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAssignmentCommandHandler_Handle_MatchedVoidsAuthorization(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.match(t)
	m.gateway.On("Refund", mock.Anything, "gw_auth_1", eur(4000)).Return(nil).Once()

	// Act
	outcome, err := m.cancel(t, id, m.senderID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, assignment.CancelApplied, outcome)
	assert.Equal(t, assignment.Cancelled, m.assignment(t, id).Status())

	pkg := m.parcel(t)
	assert.Equal(t, parcel.Posted, pkg.Status())
	assert.False(t, pkg.IsBound())
	assert.Equal(t, 10*kernel.Kilogram, m.trip(t).AvailableSpace())

	entries := m.ledger(t, id)
	assert.Equal(t, ledger.StatusRefunded, entries.Payment().Status())
	assert.Equal(t, 1, entries.Count(ledger.TypeRefund, ledger.StatusCompleted))
}

func TestCancelAssignmentCommandHandler_Handle_InTransitRequiresDispute(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.ship(t)

	// Act
	_, err := m.cancel(t, id, m.senderID)

	// Assert
	require.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, assignment.InTransit, m.assignment(t, id).Status())
	m.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAssignmentCommandHandler_Handle_RefundFailureKeepsState(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.match(t)
	m.gateway.On("Refund", mock.Anything, "gw_auth_1", eur(4000)).Return(errors.New("gateway timeout")).Times(3)

	// Act
	_, err := m.cancel(t, id, m.senderID)

	// Assert
	require.ErrorIs(t, err, errs.ErrSettlementFailed)

	a := m.assignment(t, id)
	assert.Equal(t, assignment.Matched, a.Status())
	assert.Equal(t, assignment.OperationNone, a.PendingOperation())
	assert.Empty(t, a.CancelReason())
	assert.Equal(t, 7*kernel.Kilogram, m.trip(t).AvailableSpace())
	assert.Equal(t, ledger.StatusPending, m.ledger(t, id).Payment().Status())
}

func TestCancelAssignmentCommandHandler_Handle_QueuedBehindAuthorization(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.propose(t)
	require.NoError(t, m.confirmPrice(t, id, m.senderID))

	var (
		queued    assignment.CancelOutcome
		cancelErr error
	)
	m.gateway.On("Authorize", mock.Anything, "pm_card_visa", eur(4000), mock.Anything).Run(func(mock.Arguments) {
		queued, cancelErr = m.cancel(t, id, m.senderID)
	}).Return("gw_auth_1", nil).Once()
	m.gateway.On("Refund", mock.Anything, "gw_auth_1", eur(4000)).Return(nil).Once()

	// Act
	err := m.confirmPrice(t, id, m.travelerID)

	// Assert
	require.NoError(t, err)
	require.NoError(t, cancelErr)
	assert.Equal(t, assignment.CancelQueued, queued)

	a := m.assignment(t, id)
	assert.Equal(t, assignment.Cancelled, a.Status())
	assert.Nil(t, a.QueuedCancel())
	assert.Equal(t, parcel.Posted, m.parcel(t).Status())
	assert.Equal(t, 10*kernel.Kilogram, m.trip(t).AvailableSpace())
	assert.Equal(t, ledger.StatusRefunded, m.ledger(t, id).Payment().Status())
}

func TestCancelAssignmentCommandHandler_Handle_QueuedCancelDroppedAfterCapture(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.confirm(t)
	m.check(t, id, safety.EventPickup)

	var queued assignment.CancelOutcome
	m.gateway.On("Capture", mock.Anything, "gw_auth_1").Run(func(mock.Arguments) {
		queued, _ = m.cancel(t, id, m.senderID)
	}).Return(nil).Once()

	// Act
	err := m.pickUp(t, id)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, assignment.CancelQueued, queued)
	a := m.assignment(t, id)
	assert.Equal(t, assignment.InTransit, a.Status())
	assert.Nil(t, a.QueuedCancel())
}

func TestCancelAssignmentCommandHandler_Handle_TerminalState(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.propose(t)
	_, err := m.cancel(t, id, m.senderID)
	require.NoError(t, err)

	// Act
	_, err = m.cancel(t, id, m.senderID)

	// Assert
	require.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestCancelAssignmentCommandHandler_Handle_OutsiderIsForbidden(t *testing.T) {
	// Arrange
	m := newMarketplace(t)
	id := m.propose(t)

	// Act
	_, err := m.cancel(t, id, kernel.NewUUID())

	// Assert
	require.ErrorIs(t, err, errs.ErrForbidden)
}
