// Package ports defines the contracts between the assignment engine and its
// infrastructure: repositories, the unit of work, the payment gateway and
// the notification publisher.
package ports

import (
	"context"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/parcel"
)

// ParcelRepository defines the persistence contract for packages.
type ParcelRepository interface {
	// Add persists a new package.
	Add(ctx context.Context, aggregate *parcel.Parcel) error

	// Update writes the package if its stored version still matches and
	// increments the version. A stale write returns a concurrent
	// modification error.
	Update(ctx context.Context, aggregate *parcel.Parcel) error

	// Get loads a package and locks its row until the transaction ends.
	Get(ctx context.Context, id kernel.UUID) (*parcel.Parcel, error)
}
