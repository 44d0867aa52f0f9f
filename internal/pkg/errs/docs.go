// Package errs provides standardized error types for the parcelshare application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes generic validation errors:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a value falls outside its bounds
//   - ObjectNotFoundError: For when an object cannot be found
//
// and the assignment lifecycle taxonomy:
//   - InvalidStateError, AssignmentNotNegotiableError
//   - PaymentAuthorizationError, SettlementPreconditionError, SettlementFailedError
//   - ConcurrentModificationError, ChecklistIncompleteError, ForbiddenError
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel
package errs
