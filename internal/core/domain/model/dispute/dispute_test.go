package dispute_test

import (
	"testing"
	"time"

	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)

func TestNewDispute(t *testing.T) {
	t.Run("should store the pushed down state", func(t *testing.T) {
		d, err := dispute.NewDispute(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"package damaged", assignment.InTransit, now)

		require.NoError(t, err)
		assert.Equal(t, dispute.StatusOpen, d.Status())
		assert.Equal(t, assignment.InTransit, d.PreviousStatus())
		assert.Nil(t, d.Verdict())
	})

	t.Run("should reject undisputable previous state", func(t *testing.T) {
		_, err := dispute.NewDispute(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			"why", assignment.Negotiating, now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require a reason", func(t *testing.T) {
		_, err := dispute.NewDispute(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			" ", assignment.Matched, now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestDispute_Resolve(t *testing.T) {
	d, err := dispute.NewDispute(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"no show", assignment.Confirmed, now)
	require.NoError(t, err)
	verdict, err := dispute.NewVerdict(dispute.OutcomeResolveCancel, "traveler never came", kernel.NewUUID(), now)
	require.NoError(t, err)

	require.NoError(t, d.StartReview(now))
	require.NoError(t, d.StartReview(now))
	require.NoError(t, d.Resolve(verdict, now))

	assert.True(t, d.IsResolved())
	assert.Equal(t, dispute.OutcomeResolveCancel, d.Verdict().Outcome)
	require.ErrorIs(t, d.Resolve(verdict, now), errs.ErrInvalidState)
	require.ErrorIs(t, d.StartReview(now), errs.ErrInvalidState)

	restored, err := dispute.RestoreDispute(d.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, d.Snapshot(), restored.Snapshot())
}

func TestParseOutcome(t *testing.T) {
	o, err := dispute.ParseOutcome("RESOLVE_FORWARD")
	require.NoError(t, err)
	assert.Equal(t, dispute.OutcomeResolveForward, o)

	_, err = dispute.ParseOutcome("SPLIT")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
