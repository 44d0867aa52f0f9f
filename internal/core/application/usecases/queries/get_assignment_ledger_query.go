package queries

import (
	"errors"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrGetAssignmentLedgerQueryIsNotConstructed = errors.New(
	"GetAssignmentLedgerQuery must be created via NewGetAssignmentLedgerQuery constructor",
)

// GetAssignmentLedgerQuery lists the escrow transactions of one assignment,
// oldest first.
type GetAssignmentLedgerQuery struct {
	assignmentID kernel.UUID
	actorID      kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetAssignmentLedgerQuery(assignmentID, actorID kernel.UUID) (GetAssignmentLedgerQuery, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate()); err != nil {
		return GetAssignmentLedgerQuery{}, err
	}

	return GetAssignmentLedgerQuery{
		assignmentID: assignmentID,
		actorID:      actorID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetAssignmentLedgerQuery) Validate() error {
	return q.guard.Validate(ErrGetAssignmentLedgerQueryIsNotConstructed)
}

func (q GetAssignmentLedgerQuery) AssignmentID() kernel.UUID { return q.assignmentID }
func (q GetAssignmentLedgerQuery) ActorID() kernel.UUID      { return q.actorID }

type GetAssignmentLedgerQueryResponse struct {
	ID           kernel.UUID
	Type         string
	Status       string
	Amount       kernel.Money
	PlatformFee  kernel.Money
	GatewayFee   kernel.Money
	NetAmount    kernel.Money
	GatewayTxnID string
	Failure      string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}
