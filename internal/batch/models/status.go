package models

import dErrors "healx/pkg/domain-errors"

// Status is the review state of a batch. pending is the only non-terminal
// state; the review engine moves a batch out of it exactly once.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "status must be one of pending, approved, rejected")
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

func (s Status) String() string { return string(s) }

// Decision is the outcome of a regulatory review. It is sealed: Approved and
// Rejected are the only implementations.
type Decision interface {
	Status() Status
	isDecision()
}

// Approved carries the compliance score awarded by the regulator, 0..100.
type Approved struct {
	ComplianceScore int
}

// Rejected carries the mandatory reason shown to the producer.
type Rejected struct {
	Reason string
}

func (Approved) Status() Status { return StatusApproved }
func (Rejected) Status() Status { return StatusRejected }
func (Approved) isDecision()    {}
func (Rejected) isDecision()    {}

func validateDecision(d Decision) error {
	switch v := d.(type) {
	case Approved:
		if v.ComplianceScore < 0 || v.ComplianceScore > 100 {
			return dErrors.New(dErrors.CodeInvariantViolation, "compliance score must be within 0..100")
		}
	case Rejected:
		if v.Reason == "" {
			return dErrors.New(dErrors.CodeMissingReason, "rejection reason is required")
		}
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "decision is required")
	}
	return nil
}
