package ledgerrepo

import (
	"time"

	"parcelshare/internal/core/domain/model/kernel"
	"parcelshare/internal/core/domain/model/ledger"

	"github.com/google/uuid"
)

// TransactionDTO is one escrow ledger row. Every amount of a row shares its
// currency.
type TransactionDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	AssignmentID     uuid.UUID `gorm:"type:uuid;index"`
	PackageID        uuid.UUID `gorm:"type:uuid"`
	TripID           uuid.UUID `gorm:"type:uuid"`
	Type             string    `gorm:"size:16"`
	Status           string    `gorm:"size:16"`
	AmountMinor      int64
	PlatformFeeMinor int64
	GatewayFeeMinor  int64
	NetAmountMinor   int64
	Currency         string `gorm:"size:3"`
	GatewayTxnID     string `gorm:"size:128;index"`
	Failure          string
	CreatedAt        time.Time
	ProcessedAt      *time.Time
}

func (TransactionDTO) TableName() string {
	return "transactions"
}

func fromDomain(t *ledger.Transaction) TransactionDTO {
	s := t.Snapshot()
	return TransactionDTO{
		ID:               s.ID.Bytes(),
		AssignmentID:     s.Refs.AssignmentID.Bytes(),
		PackageID:        s.Refs.PackageID.Bytes(),
		TripID:           s.Refs.TripID.Bytes(),
		Type:             string(s.Type),
		Status:           string(s.Status),
		AmountMinor:      s.Amount.Minor(),
		PlatformFeeMinor: s.PlatformFee.Minor(),
		GatewayFeeMinor:  s.GatewayFee.Minor(),
		NetAmountMinor:   s.NetAmount.Minor(),
		Currency:         s.Amount.Currency(),
		GatewayTxnID:     s.GatewayTxnID,
		Failure:          s.Failure,
		CreatedAt:        s.CreatedAt,
		ProcessedAt:      s.ProcessedAt,
	}
}

func toDomain(dto TransactionDTO) (*ledger.Transaction, error) {
	var (
		s   ledger.Snapshot
		err error
	)

	if s.ID, err = kernel.UUIDFromBytes(dto.ID[:]); err != nil {
		return nil, err
	}
	if s.Refs.AssignmentID, err = kernel.UUIDFromBytes(dto.AssignmentID[:]); err != nil {
		return nil, err
	}
	if s.Refs.PackageID, err = kernel.UUIDFromBytes(dto.PackageID[:]); err != nil {
		return nil, err
	}
	if s.Refs.TripID, err = kernel.UUIDFromBytes(dto.TripID[:]); err != nil {
		return nil, err
	}
	if s.Amount, err = kernel.NewMoney(dto.AmountMinor, dto.Currency); err != nil {
		return nil, err
	}
	if s.PlatformFee, err = kernel.NewMoney(dto.PlatformFeeMinor, dto.Currency); err != nil {
		return nil, err
	}
	if s.GatewayFee, err = kernel.NewMoney(dto.GatewayFeeMinor, dto.Currency); err != nil {
		return nil, err
	}
	if s.NetAmount, err = kernel.NewMoney(dto.NetAmountMinor, dto.Currency); err != nil {
		return nil, err
	}

	s.Type = ledger.Type(dto.Type)
	s.Status = ledger.Status(dto.Status)
	s.GatewayTxnID = dto.GatewayTxnID
	s.Failure = dto.Failure
	s.CreatedAt = dto.CreatedAt
	s.ProcessedAt = dto.ProcessedAt

	return ledger.RestoreTransaction(s)
}
