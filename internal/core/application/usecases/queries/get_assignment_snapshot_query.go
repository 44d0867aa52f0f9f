// Package queries contains read-only use cases. Handlers run raw SQL against
// the tables the postgres repositories maintain and return flat responses.
package queries

import (
	"errors"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/pkg/guard"
)

var ErrGetAssignmentSnapshotQueryIsNotConstructed = errors.New(
	"GetAssignmentSnapshotQuery must be created via NewGetAssignmentSnapshotQuery constructor",
)

// GetAssignmentSnapshotQuery reads the presentation model of one assignment.
// Only the package's sender and the trip's traveler may read it.
//
// Example:
//
//	query, err := NewGetAssignmentSnapshotQuery(assignmentID, userID)
//	if err != nil {
//	    return err
//	}
//	snapshot, err := handler.Handle(ctx, query)
type GetAssignmentSnapshotQuery struct {
	assignmentID kernel.UUID
	actorID      kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetAssignmentSnapshotQuery(assignmentID, actorID kernel.UUID) (GetAssignmentSnapshotQuery, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate()); err != nil {
		return GetAssignmentSnapshotQuery{}, err
	}

	return GetAssignmentSnapshotQuery{
		assignmentID: assignmentID,
		actorID:      actorID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetAssignmentSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetAssignmentSnapshotQueryIsNotConstructed)
}

func (q GetAssignmentSnapshotQuery) AssignmentID() kernel.UUID { return q.assignmentID }
func (q GetAssignmentSnapshotQuery) ActorID() kernel.UUID      { return q.actorID }

// GetAssignmentSnapshotQueryResponse mirrors what both parties see while
// negotiating and shipping. SafetyChecklist is keyed by event then item.
type GetAssignmentSnapshotQueryResponse struct {
	ID                  kernel.UUID
	PackageID           kernel.UUID
	TripID              kernel.UUID
	Status              string
	ProposedPrice       kernel.Money
	ProposedBy          string
	ProposalNote        string
	AgreedPrice         *kernel.Money
	ConfirmedBySender   bool
	ConfirmedByTraveler bool
	AcceptedBySender    bool
	AcceptedByTraveler  bool
	SafetyChecklist     map[string]map[string]bool
	CancelReason        string
	PendingOperation    string
	CancelQueued        bool
	Version             int64
	UpdatedAt           time.Time
}
