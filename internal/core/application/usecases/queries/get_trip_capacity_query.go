package queries

import (
	"errors"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrGetTripCapacityQueryIsNotConstructed = errors.New(
	"GetTripCapacityQuery must be created via NewGetTripCapacityQuery constructor",
)

// GetTripCapacityQuery reports how much weight a trip can still take and
// which packages currently hold a reservation on it.
type GetTripCapacityQuery struct {
	tripID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetTripCapacityQuery(tripID kernel.UUID) (GetTripCapacityQuery, error) {
	if err := tripID.Validate(); err != nil {
		return GetTripCapacityQuery{}, err
	}

	return GetTripCapacityQuery{tripID: tripID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTripCapacityQuery) Validate() error {
	return q.guard.Validate(ErrGetTripCapacityQueryIsNotConstructed)
}

func (q GetTripCapacityQuery) TripID() kernel.UUID { return q.tripID }

type GetTripCapacityQueryResponse struct {
	TripID         kernel.UUID
	MaxWeight      kernel.Weight
	AvailableSpace kernel.Weight
	Reserved       kernel.Weight
	Packages       []BoundPackage
}

// BoundPackage is a package whose binding assignment is on the trip.
type BoundPackage struct {
	PackageID        kernel.UUID
	AssignmentID     kernel.UUID
	Weight           kernel.Weight
	PackageStatus    string
	AssignmentStatus string
}
