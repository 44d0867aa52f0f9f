package queries

import (
	"context"
	"encoding/json"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetAssignmentSnapshotQueryHandler struct {
	db *gorm.DB
}

func NewGetAssignmentSnapshotQueryHandler(db *gorm.DB) GetAssignmentSnapshotQueryHandler {
	return GetAssignmentSnapshotQueryHandler{db: db}
}

type assignmentSnapshotRow struct {
	ID                    uuid.UUID
	PackageID             uuid.UUID
	TripID                uuid.UUID
	SenderID              uuid.UUID
	TravelerID            uuid.UUID
	Status                string
	ProposedPriceMinor    int64
	ProposedPriceCurrency string
	ProposedBy            string
	ProposalNote          string
	AgreedPriceMinor      *int64
	AgreedPriceCurrency   *string
	ConfirmedBySender     bool
	ConfirmedByTraveler   bool
	AcceptedBySender      bool
	AcceptedByTraveler    bool
	Checklist             string
	CancelReason          string
	PendingOperation      string
	CancelQueued          bool
	Version               int64
	UpdatedAt             time.Time
}

func (h GetAssignmentSnapshotQueryHandler) Handle(
	ctx context.Context,
	query GetAssignmentSnapshotQuery,
) (GetAssignmentSnapshotQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAssignmentSnapshotQueryResponse{}, err
	}

	var row assignmentSnapshotRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			package_id,
			trip_id,
			sender_id,
			traveler_id,
			status,
			proposed_price_minor,
			proposed_price_currency,
			proposed_by,
			proposal_note,
			agreed_price_minor,
			agreed_price_currency,
			confirmed_by_sender,
			confirmed_by_traveler,
			accepted_by_sender,
			accepted_by_traveler,
			COALESCE(checklist::text, '{}') AS checklist,
			cancel_reason,
			pending_operation,
			queued_cancel IS NOT NULL AND queued_cancel::text <> 'null' AS cancel_queued,
			version,
			updated_at
		FROM assignments
		WHERE id = ?
	`, query.AssignmentID().Bytes()).Scan(&row)
	if result.Error != nil {
		return GetAssignmentSnapshotQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetAssignmentSnapshotQueryResponse{}, errs.NewObjectNotFoundError("assignment", query.AssignmentID().String())
	}

	if err := authorizeParty(query.ActorID(), row.SenderID, row.TravelerID); err != nil {
		return GetAssignmentSnapshotQueryResponse{}, err
	}

	return row.toResponse()
}

func (row assignmentSnapshotRow) toResponse() (GetAssignmentSnapshotQueryResponse, error) {
	var (
		resp GetAssignmentSnapshotQueryResponse
		err  error
	)

	if resp.ID, err = kernel.UUIDFromBytes(row.ID[:]); err != nil {
		return resp, err
	}
	if resp.PackageID, err = kernel.UUIDFromBytes(row.PackageID[:]); err != nil {
		return resp, err
	}
	if resp.TripID, err = kernel.UUIDFromBytes(row.TripID[:]); err != nil {
		return resp, err
	}
	if resp.ProposedPrice, err = kernel.NewMoney(row.ProposedPriceMinor, row.ProposedPriceCurrency); err != nil {
		return resp, err
	}
	if row.AgreedPriceMinor != nil && row.AgreedPriceCurrency != nil {
		agreed, err := kernel.NewMoney(*row.AgreedPriceMinor, *row.AgreedPriceCurrency)
		if err != nil {
			return resp, err
		}
		resp.AgreedPrice = &agreed
	}
	if err = json.Unmarshal([]byte(row.Checklist), &resp.SafetyChecklist); err != nil {
		return resp, err
	}

	resp.Status = row.Status
	resp.ProposedBy = row.ProposedBy
	resp.ProposalNote = row.ProposalNote
	resp.ConfirmedBySender = row.ConfirmedBySender
	resp.ConfirmedByTraveler = row.ConfirmedByTraveler
	resp.AcceptedBySender = row.AcceptedBySender
	resp.AcceptedByTraveler = row.AcceptedByTraveler
	resp.CancelReason = row.CancelReason
	resp.PendingOperation = row.PendingOperation
	resp.CancelQueued = row.CancelQueued
	resp.Version = row.Version
	resp.UpdatedAt = row.UpdatedAt

	return resp, nil
}

// authorizeParty allows the two parties of an assignment and nobody else.
func authorizeParty(actorID kernel.UUID, senderID, travelerID uuid.UUID) error {
	actor := actorID.Bytes()
	if actor == senderID || actor == travelerID {
		return nil
	}
	return errs.NewForbiddenError("read assignment", "only the sender and the traveler can see it")
}
