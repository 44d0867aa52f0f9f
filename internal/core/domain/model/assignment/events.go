package assignment

import (
	"time"

	"parcelshare/internal/core/domain/model/kernel"
)

// EventName identifies a notification-worthy assignment event.
type EventName string

const (
	EventProposed            EventName = "ASSIGNMENT_PROPOSED"
	EventMatched             EventName = "ASSIGNMENT_MATCHED"
	EventSafetyGateComplete  EventName = "SAFETY_GATE_COMPLETE"
	EventDisputed            EventName = "ASSIGNMENT_DISPUTED"
	EventSettlementCompleted EventName = "SETTLEMENT_COMPLETED"
	EventCancelled           EventName = "ASSIGNMENT_CANCELLED"
)

// Event is recorded by the aggregate and drained by the application layer
// into the outbox in the same transaction as the state change.
type Event struct {
	ID           kernel.UUID
	Name         EventName
	AssignmentID kernel.UUID
	PackageID    kernel.UUID
	TripID       kernel.UUID
	SenderID     kernel.UUID
	TravelerID   kernel.UUID
	Status       Status
	Attributes   map[string]string
	OccurredAt   time.Time
}
