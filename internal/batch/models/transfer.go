package models

import (
	"time"

	"github.com/google/uuid"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

// EventTypeTransfer is used when the caller does not name an event type.
const EventTypeTransfer = "transfer"

// TransferEvent is one append-only custody step. Events of a batch are
// ordered by CreatedAt, then by Seq.
type TransferEvent struct {
	ID             id.EventID
	Seq            int64
	BatchID        id.BatchID
	EventType      string
	SenderWallet   id.WalletAddress
	ReceiverWallet id.WalletAddress
	Location       string
	Marker         string
	CreatedAt      time.Time
}

type TransferParams struct {
	BatchID        id.BatchID
	EventType      string
	SenderWallet   id.WalletAddress
	ReceiverWallet id.WalletAddress
	Location       string
	Marker         string
}

func NewTransferEvent(p TransferParams, now time.Time) (*TransferEvent, error) {
	switch {
	case p.BatchID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "batch id is required")
	case p.SenderWallet.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "sender wallet is required")
	case p.ReceiverWallet.IsNil():
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "receiver wallet is required")
	case p.Location == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "location is required")
	case p.Marker == "":
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "transaction marker is required")
	}
	eventType := p.EventType
	if eventType == "" {
		eventType = EventTypeTransfer
	}
	return &TransferEvent{
		ID:             id.EventID(uuid.New()),
		BatchID:        p.BatchID,
		EventType:      eventType,
		SenderWallet:   p.SenderWallet,
		ReceiverWallet: p.ReceiverWallet,
		Location:       p.Location,
		Marker:         p.Marker,
		CreatedAt:      now,
	}, nil
}

// Before orders events for history output.
func (e *TransferEvent) Before(other *TransferEvent) bool {
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.Before(other.CreatedAt)
	}
	return e.Seq < other.Seq
}
