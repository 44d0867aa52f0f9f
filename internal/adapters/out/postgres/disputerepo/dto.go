package disputerepo

import (
	"time"

	"parcelshare/internal/adapters/out/postgres/columns"
	"parcelshare/internal/core/domain/model/assignment"
	"parcelshare/internal/core/domain/model/dispute"
	"parcelshare/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type DisputeDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentID   uuid.UUID `gorm:"type:uuid;index"`
	RaisedBy       uuid.UUID `gorm:"type:uuid"`
	Reason         string
	Status         string     `gorm:"size:16;index"`
	PreviousStatus string     `gorm:"size:32"`
	Verdict        VerdictDTO `gorm:"embedded;embeddedPrefix:verdict_"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DisputeDTO) TableName() string {
	return "disputes"
}

// VerdictDTO columns are all NULL until the dispute is resolved.
type VerdictDTO struct {
	Outcome   *string `gorm:"size:32"`
	Note      *string
	DecidedBy *uuid.UUID `gorm:"type:uuid"`
	DecidedAt *time.Time
}

func fromDomain(d *dispute.Dispute) DisputeDTO {
	s := d.Snapshot()

	var verdict VerdictDTO
	if v := s.Verdict; v != nil {
		outcome, note, decidedBy, decidedAt := string(v.Outcome), v.Note, v.DecidedBy.Bytes(), v.DecidedAt
		verdict = VerdictDTO{Outcome: &outcome, Note: &note, DecidedBy: &decidedBy, DecidedAt: &decidedAt}
	}

	return DisputeDTO{
		ID:             s.ID.Bytes(),
		AssignmentID:   s.AssignmentID.Bytes(),
		RaisedBy:       s.RaisedBy.Bytes(),
		Reason:         s.Reason,
		Status:         string(s.Status),
		PreviousStatus: s.PreviousStatus.String(),
		Verdict:        verdict,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toDomain(dto DisputeDTO) (*dispute.Dispute, error) {
	var (
		s   dispute.Snapshot
		err error
	)

	if s.ID, err = kernel.UUIDFromBytes(dto.ID[:]); err != nil {
		return nil, err
	}
	if s.AssignmentID, err = kernel.UUIDFromBytes(dto.AssignmentID[:]); err != nil {
		return nil, err
	}
	if s.RaisedBy, err = kernel.UUIDFromBytes(dto.RaisedBy[:]); err != nil {
		return nil, err
	}
	if s.PreviousStatus, err = assignment.ParseStatus(dto.PreviousStatus); err != nil {
		return nil, err
	}
	if dto.Verdict.Outcome != nil {
		v := dispute.Verdict{}
		if v.Outcome, err = dispute.ParseOutcome(*dto.Verdict.Outcome); err != nil {
			return nil, err
		}
		if dto.Verdict.Note != nil {
			v.Note = *dto.Verdict.Note
		}
		decidedBy, err := columns.UUIDFromPtr(dto.Verdict.DecidedBy)
		if err != nil {
			return nil, err
		}
		if decidedBy != nil {
			v.DecidedBy = *decidedBy
		}
		if dto.Verdict.DecidedAt != nil {
			v.DecidedAt = *dto.Verdict.DecidedAt
		}
		s.Verdict = &v
	}

	s.Reason = dto.Reason
	s.Status = dispute.Status(dto.Status)
	s.CreatedAt = dto.CreatedAt
	s.UpdatedAt = dto.UpdatedAt

	return dispute.RestoreDispute(s)
}
