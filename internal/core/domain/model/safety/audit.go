package safety

import (
	"errors"
	"time"

	"parcelshare/internal/core/domain/model/kernel"
)

// AuditEntry is an append-only record of one checklist recording.
type AuditEntry struct {
	ID           kernel.UUID
	AssignmentID kernel.UUID
	Event        Event
	Item         Item
	Previous     bool
	Value        bool
	Correction   bool
	ActorID      kernel.UUID
	RecordedAt   time.Time
}

// NewAuditEntry turns a recording into an append-only audit row with a
// fresh id.
//
// Parameters:
//   - assignmentID: the assignment whose checklist changed
//   - actorID: the user who ticked or unticked the item
//   - rec: the recording returned by Checklist.Record
//   - now: recording time, stored in UTC
//
// Returns:
//   - AuditEntry: the row to append
//   - error: when an id or the event is invalid
func NewAuditEntry(assignmentID, actorID kernel.UUID, rec Recording, now time.Time) (AuditEntry, error) {
	if err := errors.Join(assignmentID.Validate(), actorID.Validate(), rec.Event.Validate()); err != nil {
		return AuditEntry{}, err
	}

	return AuditEntry{
		ID:           kernel.NewUUID(),
		AssignmentID: assignmentID,
		Event:        rec.Event,
		Item:         rec.Item,
		Previous:     rec.Previous,
		Value:        rec.Value,
		Correction:   rec.Correction,
		ActorID:      actorID,
		RecordedAt:   now.UTC(),
	}, nil
}
