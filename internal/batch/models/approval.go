package models

import (
	"time"

	"github.com/google/uuid"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

// Approval records the single regulatory decision on a batch.
type Approval struct {
	ID              id.ApprovalID
	BatchID         id.BatchID
	RegulatorWallet id.WalletAddress
	Decision        Decision
	Marker          string
	DecidedAt       time.Time
}

func NewApproval(batchID id.BatchID, regulator id.WalletAddress, d Decision, marker string, now time.Time) (*Approval, error) {
	if batchID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "batch id is required")
	}
	if regulator.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "regulator wallet is required")
	}
	if marker == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "approval marker is required")
	}
	if err := validateDecision(d); err != nil {
		return nil, err
	}
	return &Approval{
		ID:              id.ApprovalID(uuid.New()),
		BatchID:         batchID,
		RegulatorWallet: regulator,
		Decision:        d,
		Marker:          marker,
		DecidedAt:       now,
	}, nil
}

func (a *Approval) Status() Status { return a.Decision.Status() }

// ComplianceScore is nil for rejections.
func (a *Approval) ComplianceScore() *int {
	if v, ok := a.Decision.(Approved); ok {
		score := v.ComplianceScore
		return &score
	}
	return nil
}

func (a *Approval) RejectionReason() string {
	if v, ok := a.Decision.(Rejected); ok {
		return v.Reason
	}
	return ""
}

// DecisionFromRow rebuilds a Decision from its stored columns.
func DecisionFromRow(status string, score *int, reason string) (Decision, error) {
	switch Status(status) {
	case StatusApproved:
		if score == nil {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "approved decision without score")
		}
		return Approved{ComplianceScore: *score}, nil
	case StatusRejected:
		return Rejected{Reason: reason}, nil
	default:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown decision status "+status)
	}
}
