// Package pgerr translates PostgreSQL driver errors into domain errors.
package pgerr

import (
	"errors"

	"parcelshare/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
)

// IsRetryable reports whether err is a serialization failure or a deadlock,
// which clients resolve by re-reading and retrying.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	default:
		return false
	}
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// Translate maps err for entity/id. Retryable conflicts become concurrent
// modification errors; anything else is returned unchanged.
func Translate(err error, entity string, id string) error {
	if err == nil {
		return nil
	}
	if IsRetryable(err) || IsUniqueViolation(err) {
		return errs.NewConcurrentModificationErrorWithCause(entity, id, err)
	}
	return err
}
