package queries

import (
	"context"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetAssignmentLedgerQueryHandler struct {
	db *gorm.DB
}

func NewGetAssignmentLedgerQueryHandler(db *gorm.DB) GetAssignmentLedgerQueryHandler {
	return GetAssignmentLedgerQueryHandler{db: db}
}

type assignmentParties struct {
	SenderID   uuid.UUID
	TravelerID uuid.UUID
}

func (h GetAssignmentLedgerQueryHandler) Handle(
	ctx context.Context,
	query GetAssignmentLedgerQuery,
) ([]GetAssignmentLedgerQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var parties assignmentParties
	result := h.db.WithContext(ctx).Raw(`
		SELECT sender_id, traveler_id
		FROM assignments
		WHERE id = ?
	`, query.AssignmentID().Bytes()).Scan(&parties)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("assignment", query.AssignmentID().String())
	}
	if err := authorizeParty(query.ActorID(), parties.SenderID, parties.TravelerID); err != nil {
		return nil, err
	}

	entries := make([]GetAssignmentLedgerQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			type,
			status,
			amount_minor,
			platform_fee_minor,
			gateway_fee_minor,
			net_amount_minor,
			currency,
			gateway_txn_id,
			failure,
			created_at,
			processed_at
		FROM transactions
		WHERE assignment_id = ?
		ORDER BY created_at, id
	`, query.AssignmentID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry GetAssignmentLedgerQueryResponse
		var id uuid.UUID
		var amount, platformFee, gatewayFee, net int64
		var currency string
		var processedAt *time.Time

		err = rows.Scan(
			&id,
			&entry.Type,
			&entry.Status,
			&amount,
			&platformFee,
			&gatewayFee,
			&net,
			&currency,
			&entry.GatewayTxnID,
			&entry.Failure,
			&entry.CreatedAt,
			&processedAt,
		)
		if err != nil {
			return nil, err
		}

		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if entry.Amount, err = kernel.NewMoney(amount, currency); err != nil {
			return nil, err
		}
		if entry.PlatformFee, err = kernel.NewMoney(platformFee, currency); err != nil {
			return nil, err
		}
		if entry.GatewayFee, err = kernel.NewMoney(gatewayFee, currency); err != nil {
			return nil, err
		}
		if entry.NetAmount, err = kernel.NewMoney(net, currency); err != nil {
			return nil, err
		}
		entry.ProcessedAt = processedAt

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
