package ports

import (
	"context"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/trip"
)

// TripRepository defines the persistence contract for trips. Available space
// is stored on the row and only changes through Update.
type TripRepository interface {
	Add(ctx context.Context, aggregate *trip.Trip) error
	Update(ctx context.Context, aggregate *trip.Trip) error

	// Get loads a trip and locks its row until the transaction ends.
	Get(ctx context.Context, id kernel.UUID) (*trip.Trip, error)
}
