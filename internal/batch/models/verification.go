package models

import (
	"time"

	"github.com/google/uuid"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

type VerificationMethod string

const (
	MethodQRScan VerificationMethod = "qr_scan"
	MethodManual VerificationMethod = "manual"
)

func ParseVerificationMethod(s string) (VerificationMethod, error) {
	switch m := VerificationMethod(s); m {
	case "":
		return MethodQRScan, nil
	case MethodQRScan, MethodManual:
		return m, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "method must be qr_scan or manual")
	}
}

// VerificationRecord is a write-only audit row, one per verify call.
type VerificationRecord struct {
	ID          id.VerificationID
	BatchID     id.BatchID
	Method      VerificationMethod
	IsAuthentic bool
	Client      string
	RecordedAt  time.Time
}

func NewVerificationRecord(batchID id.BatchID, method VerificationMethod, authentic bool, client string, now time.Time) *VerificationRecord {
	return &VerificationRecord{
		ID:          id.VerificationID(uuid.New()),
		BatchID:     batchID,
		Method:      method,
		IsAuthentic: authentic,
		Client:      client,
		RecordedAt:  now,
	}
}
