package errs_test

import (
	"errors"
	"testing"

	"parcelshare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidStateError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewInvalidStateError("assignment", "DISPUTED", "accept")

		assert.Equal(t, "invalid state: cannot accept assignment in DISPUTED", err.Error())
		require.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("with_cause", func(t *testing.T) {
		err := errs.NewInvalidStateErrorWithCause("assignment", "CONFIRMED", "propose", errors.New("left negotiation"))

		assert.Equal(t,
			"invalid state: cannot propose assignment in CONFIRMED (cause: left negotiation)",
			err.Error())
	})
}

func TestLifecycleErrorsUnwrapToSentinels(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not_negotiable", errs.NewAssignmentNotNegotiableError("CANCELLED"), errs.ErrAssignmentNotNegotiable},
		{"payment_authorization", errs.NewPaymentAuthorizationError("card declined"), errs.ErrPaymentAuthorization},
		{"settlement_precondition", errs.NewSettlementPreconditionError("release", "payment is PENDING"),
			errs.ErrSettlementPrecondition},
		{"settlement_failed", errs.NewSettlementFailedError("capture", "gw_1", 3, errors.New("timeout")),
			errs.ErrSettlementFailed},
		{"concurrent_modification", errs.NewConcurrentModificationError("assignment", "42"),
			errs.ErrConcurrentModification},
		{"checklist_incomplete", errs.NewChecklistIncompleteError("PICKUP", "partial", []string{"photo_taken"}),
			errs.ErrChecklistIncomplete},
		{"forbidden", errs.NewForbiddenError("cancel", "not a participant"), errs.ErrForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.err, tc.sentinel)
			assert.Contains(t, tc.err.Error(), tc.sentinel.Error())
		})
	}
}

func TestChecklistIncompleteError_ListsMissingItems(t *testing.T) {
	err := errs.NewChecklistIncompleteError("PICKUP", "partial", []string{"location_confirmed", "photo_taken"})

	assert.Equal(t,
		"checklist incomplete: PICKUP checklist is partial, missing [location_confirmed, photo_taken]",
		err.Error())
}

func TestErrorsAsRecoversDetails(t *testing.T) {
	var err error = errs.NewConcurrentModificationErrorWithCause("trip", "7", errors.New("version 3 != 4"))

	var target *errs.ConcurrentModificationError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "trip", target.Entity)
	assert.Equal(t, "7", target.ID)
}

func TestAssignmentNotNegotiableError_IsAlsoInvalidState(t *testing.T) {
	err := errs.NewAssignmentNotNegotiableError("DISPUTED")

	require.ErrorIs(t, err, errs.ErrAssignmentNotNegotiable)
	require.ErrorIs(t, err, errs.ErrInvalidState)
}
