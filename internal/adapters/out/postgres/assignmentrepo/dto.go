package assignmentrepo

import (
	"time"

	"parcelshare/internal/adapters/out/postgres/columns"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/safety"

	"github.com/google/uuid"
)

type AssignmentDTO struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey"`
	PackageID           uuid.UUID        `gorm:"type:uuid;index"`
	TripID              uuid.UUID        `gorm:"type:uuid;index"`
	SenderID            uuid.UUID        `gorm:"type:uuid"`
	TravelerID          uuid.UUID        `gorm:"type:uuid"`
	Status              string           `gorm:"size:32;index:idx_assignments_idle,priority:1"`
	ProposedPrice       columns.MoneyDTO `gorm:"embedded;embeddedPrefix:proposed_price_"`
	ProposedBy          string           `gorm:"size:16"`
	ProposalNote        string
	ConfirmedBySender   bool
	ConfirmedByTraveler bool
	AgreedPrice         columns.NullableMoneyDTO `gorm:"embedded;embeddedPrefix:agreed_price_"`
	AcceptedBySender    bool
	AcceptedByTraveler  bool
	Checklist           map[string]map[string]bool `gorm:"serializer:json;type:jsonb"`
	CancelReason        string
	PendingOperation    string           `gorm:"size:16"`
	QueuedCancel        *QueuedCancelDTO `gorm:"serializer:json;type:jsonb"`
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time `gorm:"autoUpdateTime:false;index:idx_assignments_idle,priority:2"`
}

func (AssignmentDTO) TableName() string {
	return "assignments"
}

// QueuedCancelDTO is the JSON form of a cancellation waiting behind a gateway
// call. RequestedBy is empty for system cancellations.
type QueuedCancelDTO struct {
	RequestedBy string    `json:"requested_by,omitempty"`
	Party       string    `json:"party,omitempty"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

func fromDomain(a *assignment.Assignment) AssignmentDTO {
	s := a.State()

	var queued *QueuedCancelDTO
	if s.QueuedCancel != nil {
		queued = &QueuedCancelDTO{
			Party:       s.QueuedCancel.Party.String(),
			Reason:      s.QueuedCancel.Reason,
			RequestedAt: s.QueuedCancel.RequestedAt,
		}
		if !s.QueuedCancel.RequestedBy.IsZero() {
			queued.RequestedBy = s.QueuedCancel.RequestedBy.String()
		}
	}

	return AssignmentDTO{
		ID:                  s.ID.Bytes(),
		PackageID:           s.Refs.PackageID.Bytes(),
		TripID:              s.Refs.TripID.Bytes(),
		SenderID:            s.Refs.SenderID.Bytes(),
		TravelerID:          s.Refs.TravelerID.Bytes(),
		Status:              s.Status.String(),
		ProposedPrice:       columns.MoneyFromDomain(s.ProposedPrice),
		ProposedBy:          s.ProposedBy.String(),
		ProposalNote:        s.ProposalNote,
		ConfirmedBySender:   s.ConfirmedBySender,
		ConfirmedByTraveler: s.ConfirmedByTraveler,
		AgreedPrice:         columns.NullableMoneyFromDomain(s.AgreedPrice),
		AcceptedBySender:    s.AcceptedBySender,
		AcceptedByTraveler:  s.AcceptedByTraveler,
		Checklist:           s.Checklist.Marks(),
		CancelReason:        s.CancelReason,
		PendingOperation:    s.PendingOperation.String(),
		QueuedCancel:        queued,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func toDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	var (
		s   assignment.State
		err error
	)

	if s.ID, err = kernel.UUIDFromBytes(dto.ID[:]); err != nil {
		return nil, err
	}
	if s.Refs.PackageID, err = kernel.UUIDFromBytes(dto.PackageID[:]); err != nil {
		return nil, err
	}
	if s.Refs.TripID, err = kernel.UUIDFromBytes(dto.TripID[:]); err != nil {
		return nil, err
	}
	if s.Refs.SenderID, err = kernel.UUIDFromBytes(dto.SenderID[:]); err != nil {
		return nil, err
	}
	if s.Refs.TravelerID, err = kernel.UUIDFromBytes(dto.TravelerID[:]); err != nil {
		return nil, err
	}
	if s.Status, err = assignment.ParseStatus(dto.Status); err != nil {
		return nil, err
	}
	if s.ProposedPrice, err = dto.ProposedPrice.ToDomain(); err != nil {
		return nil, err
	}
	if s.ProposedBy, err = assignment.ParseParty(dto.ProposedBy); err != nil {
		return nil, err
	}
	if s.AgreedPrice, err = dto.AgreedPrice.ToDomain(); err != nil {
		return nil, err
	}
	if s.Checklist, err = safety.RestoreChecklist(dto.Checklist); err != nil {
		return nil, err
	}
	if s.PendingOperation, err = assignment.ParseOperation(dto.PendingOperation); err != nil {
		return nil, err
	}
	if s.QueuedCancel, err = queuedCancelToDomain(dto.QueuedCancel); err != nil {
		return nil, err
	}

	s.ProposalNote = dto.ProposalNote
	s.ConfirmedBySender = dto.ConfirmedBySender
	s.ConfirmedByTraveler = dto.ConfirmedByTraveler
	s.AcceptedBySender = dto.AcceptedBySender
	s.AcceptedByTraveler = dto.AcceptedByTraveler
	s.CancelReason = dto.CancelReason
	s.Version = dto.Version
	s.CreatedAt = dto.CreatedAt
	s.UpdatedAt = dto.UpdatedAt

	return assignment.RestoreAssignment(s)
}

func queuedCancelToDomain(dto *QueuedCancelDTO) (*assignment.CancelRequest, error) {
	if dto == nil {
		return nil, nil
	}

	req := assignment.CancelRequest{Reason: dto.Reason, RequestedAt: dto.RequestedAt}
	if dto.RequestedBy == "" {
		return &req, nil
	}

	by, err := kernel.UUIDFromString(dto.RequestedBy)
	if err != nil {
		return nil, err
	}
	party, err := assignment.ParseParty(dto.Party)
	if err != nil {
		return nil, err
	}
	req.RequestedBy = by
	req.Party = party
	return &req, nil
}
