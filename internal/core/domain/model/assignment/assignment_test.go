package assignment_test

import (
	"testing"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/safety"
	"parcelshare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func eur(minor int64) kernel.Money { return kernel.MustMoney(minor, "EUR") }

func newProposed(t *testing.T) *assignment.Assignment {
	t.Helper()
	refs := assignment.Refs{
		PackageID:  kernel.NewUUID(),
		TripID:     kernel.NewUUID(),
		SenderID:   kernel.NewUUID(),
		TravelerID: kernel.NewUUID(),
	}
	a, err := assignment.NewAssignment(kernel.NewUUID(), refs, eur(4000), assignment.PartySender, now)
	require.NoError(t, err)
	return a
}

func newMatched(t *testing.T) *assignment.Assignment {
	t.Helper()
	a := newProposed(t)
	_, err := a.ConfirmPrice(assignment.PartySender, now)
	require.NoError(t, err)
	agreed, err := a.ConfirmPrice(assignment.PartyTraveler, now)
	require.NoError(t, err)
	require.True(t, agreed)
	require.NoError(t, a.BeginAuthorization(now))
	require.NoError(t, a.CompleteAuthorization(now))
	return a
}

func newConfirmed(t *testing.T) *assignment.Assignment {
	t.Helper()
	a := newMatched(t)
	_, err := a.Accept(assignment.PartySender, now)
	require.NoError(t, err)
	confirmed, err := a.Accept(assignment.PartyTraveler, now)
	require.NoError(t, err)
	require.True(t, confirmed)
	return a
}

func completeChecklist(t *testing.T, a *assignment.Assignment, event safety.Event) {
	t.Helper()
	for _, item := range event.RequiredItems() {
		_, err := a.RecordSafety(event, item, true, now)
		require.NoError(t, err)
	}
}

func newInTransit(t *testing.T) *assignment.Assignment {
	t.Helper()
	a := newConfirmed(t)
	completeChecklist(t, a, safety.EventPickup)
	require.NoError(t, a.BeginPickup(now))
	require.NoError(t, a.CompletePickup(now))
	return a
}

func eventNames(events []assignment.Event) []assignment.EventName {
	names := make([]assignment.EventName, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}

func TestNewAssignment(t *testing.T) {
	t.Run("should open with the offered price", func(t *testing.T) {
		a := newProposed(t)

		require.NoError(t, a.Validate())
		assert.Equal(t, assignment.Proposed, a.Status())
		assert.Equal(t, int64(4000), a.Negotiation().Price().Minor())
		assert.Nil(t, a.AgreedPrice())
		assert.Equal(t, assignment.OperationNone, a.PendingOperation())
		assert.Equal(t, []assignment.EventName{assignment.EventProposed}, eventNames(a.PullEvents()))
		assert.Empty(t, a.PullEvents())
	})

	t.Run("should reject sender carrying own package", func(t *testing.T) {
		user := kernel.NewUUID()
		refs := assignment.Refs{PackageID: kernel.NewUUID(), TripID: kernel.NewUUID(), SenderID: user, TravelerID: user}

		_, err := assignment.NewAssignment(kernel.NewUUID(), refs, eur(4000), assignment.PartySender, now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestAssignment_Negotiation(t *testing.T) {
	t.Run("first proposal moves to negotiating", func(t *testing.T) {
		a := newProposed(t)

		err := a.Propose(assignment.PartyTraveler, eur(5000), " a bit more please ", now)

		require.NoError(t, err)
		assert.Equal(t, assignment.Negotiating, a.Status())
		assert.Equal(t, assignment.PartyTraveler, a.Negotiation().ProposedBy())
		assert.Equal(t, "a bit more please", a.Negotiation().Note())
	})

	t.Run("counter offer resets both confirmations", func(t *testing.T) {
		// Given the sender proposed 40 and confirmed it
		a := newProposed(t)
		require.NoError(t, a.Propose(assignment.PartySender, eur(4000), "", now))
		agreed, err := a.ConfirmPrice(assignment.PartySender, now)
		require.NoError(t, err)
		require.False(t, agreed)

		// When the traveler proposes 50
		require.NoError(t, a.Propose(assignment.PartyTraveler, eur(5000), "", now))

		// Then both flags are cleared
		assert.False(t, a.Negotiation().ConfirmedBySender())
		assert.False(t, a.Negotiation().ConfirmedByTraveler())

		// And only both confirmations at 50 lead to agreedPrice=50
		agreed, err = a.ConfirmPrice(assignment.PartyTraveler, now)
		require.NoError(t, err)
		require.False(t, agreed)
		agreed, err = a.ConfirmPrice(assignment.PartySender, now)
		require.NoError(t, err)
		require.True(t, agreed)

		require.NoError(t, a.BeginAuthorization(now))
		require.NoError(t, a.CompleteAuthorization(now))
		assert.Equal(t, int64(5000), a.AgreedPrice().Minor())
		assert.Equal(t, assignment.Matched, a.Status())
	})

	t.Run("proposal in another currency is rejected", func(t *testing.T) {
		a := newProposed(t)

		err := a.Propose(assignment.PartySender, kernel.MustMoney(4000, "USD"), "", now)

		require.ErrorIs(t, err, kernel.ErrCurrencyMismatch)
		assert.Equal(t, assignment.Proposed, a.Status())
	})

	t.Run("negotiation after match is invalid state", func(t *testing.T) {
		a := newMatched(t)

		err := a.Propose(assignment.PartySender, eur(3000), "", now)
		require.ErrorIs(t, err, errs.ErrInvalidState)
		require.NotErrorIs(t, err, errs.ErrAssignmentNotNegotiable)

		_, err = a.ConfirmPrice(assignment.PartySender, now)
		require.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("negotiation on terminal or disputed is not negotiable", func(t *testing.T) {
		cancelled := newProposed(t)
		_, err := cancelled.RequestCancel(assignment.SystemCancelRequest("", now), now)
		require.NoError(t, err)

		disputed := newMatched(t)
		_, err = disputed.RaiseDispute(now)
		require.NoError(t, err)

		for _, a := range []*assignment.Assignment{cancelled, disputed} {
			err := a.Propose(assignment.PartySender, eur(3000), "", now)
			require.ErrorIs(t, err, errs.ErrAssignmentNotNegotiable)
			require.ErrorIs(t, err, errs.ErrInvalidState)
		}
	})
}

func TestAssignment_AgreedPriceIsSetOnce(t *testing.T) {
	a := newMatched(t)
	require.Equal(t, int64(4000), a.AgreedPrice().Minor())

	require.ErrorIs(t, a.BeginAuthorization(now), errs.ErrInvalidState)
	require.ErrorIs(t, a.CompleteAuthorization(now), errs.ErrInvalidState)
	assert.Equal(t, int64(4000), a.AgreedPrice().Minor())
}

func TestAssignment_FailedAuthorization(t *testing.T) {
	a := newProposed(t)
	_, _ = a.ConfirmPrice(assignment.PartySender, now)
	_, _ = a.ConfirmPrice(assignment.PartyTraveler, now)
	require.NoError(t, a.BeginAuthorization(now))
	assert.True(t, a.HoldsReservation())

	require.NoError(t, a.FailAuthorization(now))

	assert.Equal(t, assignment.Negotiating, a.Status())
	assert.Nil(t, a.AgreedPrice())
	assert.False(t, a.Negotiation().IsAgreed())
	assert.Equal(t, int64(4000), a.Negotiation().Price().Minor())
	assert.False(t, a.HoldsReservation())
}

func TestAssignment_InFlightOperation(t *testing.T) {
	a := newProposed(t)
	_, _ = a.ConfirmPrice(assignment.PartySender, now)
	_, _ = a.ConfirmPrice(assignment.PartyTraveler, now)
	require.NoError(t, a.BeginAuthorization(now))

	t.Run("other triggers fail with concurrent modification", func(t *testing.T) {
		err := a.Propose(assignment.PartySender, eur(3000), "", now)
		require.ErrorIs(t, err, errs.ErrConcurrentModification)
	})

	t.Run("cancel is queued", func(t *testing.T) {
		req, err := assignment.NewCancelRequest(a.Refs().SenderID, assignment.PartySender, "changed my mind", now)
		require.NoError(t, err)

		outcome, err := a.RequestCancel(req, now)

		require.NoError(t, err)
		assert.Equal(t, assignment.CancelQueued, outcome)
		assert.Equal(t, assignment.Negotiating, a.Status())
		require.NotNil(t, a.QueuedCancel())
	})

	t.Run("queued cancel is re-evaluated after finalization", func(t *testing.T) {
		require.NoError(t, a.CompleteAuthorization(now))
		queued := a.TakeQueuedCancel()
		require.NotNil(t, queued)
		assert.Nil(t, a.QueuedCancel())

		outcome, err := a.RequestCancel(*queued, now)

		require.NoError(t, err)
		assert.Equal(t, assignment.CancelAwaitingRefund, outcome)
		assert.Equal(t, assignment.OperationRefund, a.PendingOperation())
		assert.Equal(t, "changed my mind", a.CancelReason())
	})

	t.Run("second cancel during refund is rejected", func(t *testing.T) {
		_, err := a.RequestCancel(assignment.SystemCancelRequest("again", now), now)
		require.ErrorIs(t, err, errs.ErrConcurrentModification)
	})

	t.Run("refund completion cancels", func(t *testing.T) {
		a.PullEvents()
		require.NoError(t, a.CompleteCancellation(now))
		assert.Equal(t, assignment.Cancelled, a.Status())
		assert.Equal(t, assignment.OperationNone, a.PendingOperation())
		assert.Equal(t, []assignment.EventName{assignment.EventCancelled}, eventNames(a.PullEvents()))
	})
}

func TestAssignment_Cancel(t *testing.T) {
	t.Run("unreserved cancel applies immediately", func(t *testing.T) {
		a := newProposed(t)

		outcome, err := a.RequestCancel(assignment.SystemCancelRequest(" ", now), now)

		require.NoError(t, err)
		assert.Equal(t, assignment.CancelApplied, outcome)
		assert.Equal(t, assignment.Cancelled, a.Status())
		assert.Equal(t, "cancelled", a.CancelReason())
	})

	t.Run("in transit cannot be cancelled", func(t *testing.T) {
		a := newInTransit(t)

		_, err := a.RequestCancel(assignment.SystemCancelRequest("", now), now)

		require.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("aborted refund keeps state", func(t *testing.T) {
		a := newConfirmed(t)
		outcome, err := a.RequestCancel(assignment.SystemCancelRequest("no show", now), now)
		require.NoError(t, err)
		require.Equal(t, assignment.CancelAwaitingRefund, outcome)

		require.NoError(t, a.AbortOperation(assignment.OperationRefund, now))

		assert.Equal(t, assignment.Confirmed, a.Status())
		assert.Empty(t, a.CancelReason())
		assert.Equal(t, assignment.OperationNone, a.PendingOperation())
	})
}

func TestAssignment_Pickup(t *testing.T) {
	t.Run("partial pickup checklist blocks the transition", func(t *testing.T) {
		// Given 2 of 4 pickup items
		a := newConfirmed(t)
		_, err := a.RecordSafety(safety.EventPickup, safety.ItemIdentityVerified, true, now)
		require.NoError(t, err)
		rec, err := a.RecordSafety(safety.EventPickup, safety.ItemPackageConditionOK, true, now)
		require.NoError(t, err)
		assert.Equal(t, safety.StatusPartial, rec.Status)

		// When pickup is confirmed
		err = a.BeginPickup(now)

		// Then the gate rejects it
		require.ErrorIs(t, err, errs.ErrChecklistIncomplete)
		assert.Equal(t, assignment.Confirmed, a.Status())
		assert.Equal(t, assignment.OperationNone, a.PendingOperation())
	})

	t.Run("complete checklist emits gate event", func(t *testing.T) {
		a := newConfirmed(t)
		a.PullEvents()

		completeChecklist(t, a, safety.EventPickup)

		assert.Equal(t, []assignment.EventName{assignment.EventSafetyGateComplete}, eventNames(a.PullEvents()))
		require.NoError(t, a.BeginPickup(now))
		require.NoError(t, a.CompletePickup(now))
		assert.Equal(t, assignment.InTransit, a.Status())
	})

	t.Run("pickup checklist is frozen while capturing", func(t *testing.T) {
		a := newConfirmed(t)
		completeChecklist(t, a, safety.EventPickup)
		require.NoError(t, a.BeginPickup(now))

		_, err := a.RecordSafety(safety.EventPickup, safety.ItemPhotoTaken, false, now)

		require.ErrorIs(t, err, errs.ErrConcurrentModification)
	})
}

func TestAssignment_ChecklistWindows(t *testing.T) {
	testCases := []struct {
		name    string
		build   func(t *testing.T) *assignment.Assignment
		event   safety.Event
		allowed bool
	}{
		{"assignment_on_proposed", newProposed, safety.EventAssignment, true},
		{"assignment_on_confirmed", newConfirmed, safety.EventAssignment, false},
		{"pickup_on_matched", newMatched, safety.EventPickup, true},
		{"pickup_on_proposed", newProposed, safety.EventPickup, false},
		{"delivery_on_confirmed", newConfirmed, safety.EventDelivery, false},
		{"delivery_on_in_transit", newInTransit, safety.EventDelivery, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := tc.build(t)

			_, err := a.RecordSafety(tc.event, safety.ItemIdentityVerified, true, now)

			if tc.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrInvalidState)
		})
	}
}

func TestAssignment_Delivery(t *testing.T) {
	a := newInTransit(t)

	err := a.ConfirmDelivery(eur(3484), now)
	require.ErrorIs(t, err, errs.ErrChecklistIncomplete)

	completeChecklist(t, a, safety.EventDelivery)
	a.PullEvents()
	require.NoError(t, a.ConfirmDelivery(eur(3484), now))

	assert.Equal(t, assignment.Delivered, a.Status())
	events := a.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, assignment.EventSettlementCompleted, events[0].Name)
	assert.Equal(t, "3484", events[0].Attributes["payout"])
}

func TestAssignment_Dispute(t *testing.T) {
	t.Run("freezes and resumes to previous state", func(t *testing.T) {
		a := newInTransit(t)

		previous, err := a.RaiseDispute(now)
		require.NoError(t, err)
		assert.Equal(t, assignment.InTransit, previous)
		assert.Equal(t, assignment.Disputed, a.Status())

		require.NoError(t, a.ResumeFromDispute(previous, now))
		assert.Equal(t, assignment.InTransit, a.Status())
	})

	t.Run("rejects every non verdict transition", func(t *testing.T) {
		a := newConfirmed(t)
		completeChecklist(t, a, safety.EventPickup)
		_, err := a.RaiseDispute(now)
		require.NoError(t, err)

		_, acceptErr := a.Accept(assignment.PartySender, now)
		_, cancelErr := a.RequestCancel(assignment.SystemCancelRequest("", now), now)
		_, disputeErr := a.RaiseDispute(now)
		_, recordErr := a.RecordSafety(safety.EventPickup, safety.ItemPhotoTaken, true, now)

		for _, err := range []error{
			a.Propose(assignment.PartySender, eur(1000), "", now),
			a.BeginPickup(now),
			a.ConfirmDelivery(eur(1), now),
			acceptErr, cancelErr, disputeErr, recordErr,
		} {
			require.ErrorIs(t, err, errs.ErrInvalidState)
		}
	})

	t.Run("verdict cancel goes through refund", func(t *testing.T) {
		a := newInTransit(t)
		_, err := a.RaiseDispute(now)
		require.NoError(t, err)

		require.NoError(t, a.BeginDisputeCancellation("parcel lost", now))
		require.NoError(t, a.CompleteCancellation(now))

		assert.Equal(t, assignment.Cancelled, a.Status())
		assert.Equal(t, "parcel lost", a.CancelReason())
	})

	t.Run("cannot dispute before match", func(t *testing.T) {
		_, err := newProposed(t).RaiseDispute(now)
		require.ErrorIs(t, err, errs.ErrInvalidState)
	})
}

func TestAssignment_PartyOf(t *testing.T) {
	a := newProposed(t)

	party, err := a.PartyOf(a.Refs().TravelerID)
	require.NoError(t, err)
	assert.Equal(t, assignment.PartyTraveler, party)

	_, err = a.PartyOf(kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestAssignment_CheckVersion(t *testing.T) {
	a := newProposed(t)
	a.IncrementVersion()

	current, stale := int64(1), int64(0)
	require.NoError(t, a.CheckVersion(nil))
	require.NoError(t, a.CheckVersion(&current))
	require.ErrorIs(t, a.CheckVersion(&stale), errs.ErrConcurrentModification)
}

func TestAssignment_IsStale(t *testing.T) {
	a := newProposed(t)

	assert.False(t, a.IsStale(now.Add(time.Hour), 24*time.Hour))
	assert.True(t, a.IsStale(now.Add(25*time.Hour), 24*time.Hour))
	assert.False(t, newMatched(t).IsStale(now.Add(25*time.Hour), 24*time.Hour))
}

func TestRestoreAssignment_RoundTrip(t *testing.T) {
	a := newConfirmed(t)
	completeChecklist(t, a, safety.EventPickup)

	restored, err := assignment.RestoreAssignment(a.State())

	require.NoError(t, err)
	assert.Equal(t, a.State(), restored.State())
	assert.Empty(t, restored.PullEvents())

	state := a.State()
	state.AgreedPrice = nil
	_, err = assignment.RestoreAssignment(state)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
