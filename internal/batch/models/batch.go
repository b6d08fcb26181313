package models

import (
	"time"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

// DateLayout is the wire and storage format of manufacture and expiry dates.
const DateLayout = "2006-01-02"

// Batch is the canonical medicine batch record.
type Batch struct {
	ID              id.BatchID
	DrugName        string
	Manufacturer    string
	ManufactureDate time.Time
	ExpiryDate      time.Time
	Quantity        int
	ProducerWallet  id.WalletAddress
	Status          Status

	RegistrationMarker string
	AppID              string
	QRCodeData         string
	QRCodeHash         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BatchParams are the producer supplied fields of a new batch.
type BatchParams struct {
	ID              id.BatchID
	DrugName        string
	Manufacturer    string
	ManufactureDate time.Time
	ExpiryDate      time.Time
	Quantity        int
	ProducerWallet  id.WalletAddress

	RegistrationMarker string
	AppID              string
	QRCodeData         string
	QRCodeHash         string

	// EnforceDateOrder rejects batches whose expiry is not after manufacture.
	EnforceDateOrder bool
}

// Validate checks the producer supplied fields. The registration marker is
// checked by NewBatch since it is resolved after validation.
func (p BatchParams) Validate() error {
	switch {
	case p.ID.IsNil():
		return dErrors.New(dErrors.CodeInvariantViolation, "batch id is required")
	case p.DrugName == "":
		return dErrors.New(dErrors.CodeInvariantViolation, "drug name is required")
	case p.Manufacturer == "":
		return dErrors.New(dErrors.CodeInvariantViolation, "manufacturer is required")
	case p.ManufactureDate.IsZero():
		return dErrors.New(dErrors.CodeInvariantViolation, "manufacture date is required")
	case p.ExpiryDate.IsZero():
		return dErrors.New(dErrors.CodeInvariantViolation, "expiry date is required")
	case p.Quantity <= 0:
		return dErrors.New(dErrors.CodeInvariantViolation, "quantity must be positive")
	case p.ProducerWallet.IsNil():
		return dErrors.New(dErrors.CodeInvariantViolation, "producer wallet is required")
	}
	if p.EnforceDateOrder && !p.ManufactureDate.Before(p.ExpiryDate) {
		return dErrors.New(dErrors.CodeInvariantViolation, "expiry date must be after manufacture date")
	}
	return nil
}

// NewBatch builds a pending batch.
func NewBatch(p BatchParams, now time.Time) (*Batch, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.RegistrationMarker == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration marker is required")
	}

	return &Batch{
		ID:                 p.ID,
		DrugName:           p.DrugName,
		Manufacturer:       p.Manufacturer,
		ManufactureDate:    p.ManufactureDate,
		ExpiryDate:         p.ExpiryDate,
		Quantity:           p.Quantity,
		ProducerWallet:     p.ProducerWallet,
		Status:             StatusPending,
		RegistrationMarker: p.RegistrationMarker,
		AppID:              p.AppID,
		QRCodeData:         p.QRCodeData,
		QRCodeHash:         p.QRCodeHash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// CanDecide reports whether the review engine may still decide this batch.
func (b *Batch) CanDecide() error {
	if b.Status != StatusPending {
		return dErrors.New(dErrors.CodeAlreadyReviewed, "batch has already been reviewed")
	}
	return nil
}

// ApplyDecision moves a pending batch to its terminal status.
func (b *Batch) ApplyDecision(d Decision, now time.Time) error {
	if err := b.CanDecide(); err != nil {
		return err
	}
	if err := validateDecision(d); err != nil {
		return err
	}
	b.Status = d.Status()
	b.UpdatedAt = now
	return nil
}

// CanTransfer reports whether custody transfers may be logged.
func (b *Batch) CanTransfer() error {
	if b.Status != StatusApproved {
		return dErrors.New(dErrors.CodeNotApproved, "medicine must be approved by regulator before distribution")
	}
	return nil
}

// IsAuthentic is true exactly when a regulator approved the batch.
func (b *Batch) IsAuthentic() bool {
	return b.Status == StatusApproved
}
