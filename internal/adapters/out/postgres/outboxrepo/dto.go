package outboxrepo

import (
	"time"

	"parcelshare/internal/adapters/out/postgres/columns"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// MessageDTO is an outbox row. The event is kept as JSON so the dispatcher
// never joins back to the assignment.
type MessageDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentID  uuid.UUID `gorm:"type:uuid;index"`
	Name          string    `gorm:"size:64"`
	Payload       EventDTO  `gorm:"serializer:json;type:jsonb"`
	Attempts      int
	NextAttemptAt time.Time  `gorm:"index"`
	PublishedAt   *time.Time `gorm:"index"`
	LastError     string
	CreatedAt     time.Time
}

func (MessageDTO) TableName() string {
	return "outbox"
}

type EventDTO struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	AssignmentID uuid.UUID         `json:"assignment_id"`
	PackageID    uuid.UUID         `json:"package_id"`
	TripID       uuid.UUID         `json:"trip_id"`
	SenderID     uuid.UUID         `json:"sender_id"`
	TravelerID   uuid.UUID         `json:"traveler_id"`
	Status       string            `json:"status"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

func fromDomain(e assignment.Event, now time.Time) MessageDTO {
	return MessageDTO{
		ID:           e.ID.Bytes(),
		AssignmentID: e.AssignmentID.Bytes(),
		Name:         string(e.Name),
		Payload: EventDTO{
			ID:           e.ID.Bytes(),
			Name:         string(e.Name),
			AssignmentID: e.AssignmentID.Bytes(),
			PackageID:    e.PackageID.Bytes(),
			TripID:       e.TripID.Bytes(),
			SenderID:     e.SenderID.Bytes(),
			TravelerID:   e.TravelerID.Bytes(),
			Status:       e.Status.String(),
			Attributes:   e.Attributes,
			OccurredAt:   e.OccurredAt,
		},
		NextAttemptAt: now,
		CreatedAt:     now,
	}
}

func toDomain(dto MessageDTO) (assignment.Event, kernel.UUID, error) {
	var (
		e   assignment.Event
		err error
	)

	msgID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}

	p := dto.Payload
	if e.ID, err = columns.UUID(p.ID); err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}
	if e.AssignmentID, err = columns.UUID(p.AssignmentID); err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}
	if e.PackageID, err = columns.UUID(p.PackageID); err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}
	if e.TripID, err = columns.UUID(p.TripID); err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}
	if e.SenderID, err = columns.UUID(p.SenderID); err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}
	if e.TravelerID, err = columns.UUID(p.TravelerID); err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}
	if e.Status, err = assignment.ParseStatus(p.Status); err != nil {
		return assignment.Event{}, kernel.UUID{}, err
	}

	e.Name = assignment.EventName(p.Name)
	e.Attributes = p.Attributes
	e.OccurredAt = p.OccurredAt

	return e, msgID, nil
}
