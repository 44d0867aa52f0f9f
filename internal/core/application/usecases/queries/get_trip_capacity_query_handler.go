package queries

import (
	"context"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetTripCapacityQueryHandler struct {
	db *gorm.DB
}

func NewGetTripCapacityQueryHandler(db *gorm.DB) GetTripCapacityQueryHandler {
	return GetTripCapacityQueryHandler{db: db}
}

type tripCapacityRow struct {
	MaxWeightGrams      int64
	AvailableSpaceGrams int64
}

func (h GetTripCapacityQueryHandler) Handle(
	ctx context.Context,
	query GetTripCapacityQuery,
) (GetTripCapacityQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTripCapacityQueryResponse{}, err
	}

	var capacity tripCapacityRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT max_weight_grams, available_space_grams
		FROM trips
		WHERE id = ?
	`, query.TripID().Bytes()).Scan(&capacity)
	if result.Error != nil {
		return GetTripCapacityQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetTripCapacityQueryResponse{}, errs.NewObjectNotFoundError("trip", query.TripID().String())
	}

	response := GetTripCapacityQueryResponse{
		TripID:         query.TripID(),
		MaxWeight:      kernel.Weight(capacity.MaxWeightGrams),
		AvailableSpace: kernel.Weight(capacity.AvailableSpaceGrams),
		Reserved:       kernel.Weight(capacity.MaxWeightGrams - capacity.AvailableSpaceGrams),
		Packages:       make([]BoundPackage, 0),
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			a.id,
			p.weight_grams,
			p.status,
			a.status
		FROM packages p
		JOIN assignments a ON a.id = p.assignment_id
		WHERE a.trip_id = ?
		ORDER BY a.created_at, p.id
	`, query.TripID().Bytes()).Rows()
	if err != nil {
		return GetTripCapacityQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var bound BoundPackage
		var packageID, assignmentID uuid.UUID
		var grams int64

		err = rows.Scan(
			&packageID,
			&assignmentID,
			&grams,
			&bound.PackageStatus,
			&bound.AssignmentStatus,
		)
		if err != nil {
			return GetTripCapacityQueryResponse{}, err
		}

		if bound.PackageID, err = kernel.UUIDFromBytes(packageID[:]); err != nil {
			return GetTripCapacityQueryResponse{}, err
		}
		if bound.AssignmentID, err = kernel.UUIDFromBytes(assignmentID[:]); err != nil {
			return GetTripCapacityQueryResponse{}, err
		}
		bound.Weight = kernel.Weight(grams)

		response.Packages = append(response.Packages, bound)
	}

	if err = rows.Err(); err != nil {
		return GetTripCapacityQueryResponse{}, err
	}

	return response, nil
}
