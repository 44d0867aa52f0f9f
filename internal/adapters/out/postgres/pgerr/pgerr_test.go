package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"parcelshare/internal/adapters/out/postgres/pgerr"
	"parcelshare/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantConflict  bool
		wantRetryable bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true, true},
		{"wrapped serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true, false},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false, false},
		{"plain error", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := pgerr.Translate(tt.err, "assignment", "a-1")

			// Assert
			assert.Equal(t, tt.wantConflict, errors.Is(got, errs.ErrConcurrentModification))
			assert.Equal(t, tt.wantRetryable, pgerr.IsRetryable(tt.err))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestTranslate_Nil(t *testing.T) {
	assert.NoError(t, pgerr.Translate(nil, "assignment", "a-1"))
}
