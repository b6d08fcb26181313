package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "healx/pkg/domain-errors"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func validParams() BatchParams {
	return BatchParams{
		ID:                 "B-1",
		DrugName:           "Amoxicillin 500mg",
		Manufacturer:       "Acme Pharma",
		ManufactureDate:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		ExpiryDate:         time.Date(2028, 1, 10, 0, 0, 0, 0, time.UTC),
		Quantity:           1000,
		ProducerWallet:     "PRODUCER",
		RegistrationMarker: "MARKER1",
	}
}

func TestStatus_Transitions(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())

	assert.True(t, StatusPending.CanTransitionTo(StatusApproved))
	assert.True(t, StatusPending.CanTransitionTo(StatusRejected))
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
	assert.False(t, StatusApproved.CanTransitionTo(StatusRejected))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseStatus("Approved")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNewBatch(t *testing.T) {
	t.Run("valid params produce a pending batch", func(t *testing.T) {
		b, err := NewBatch(validParams(), now)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, b.Status)
		assert.False(t, b.IsAuthentic())
		assert.Equal(t, now, b.CreatedAt)
	})

	missing := map[string]func(*BatchParams){
		"drug name":    func(p *BatchParams) { p.DrugName = "" },
		"manufacturer": func(p *BatchParams) { p.Manufacturer = "" },
		"expiry date":  func(p *BatchParams) { p.ExpiryDate = time.Time{} },
		"quantity":     func(p *BatchParams) { p.Quantity = 0 },
		"producer":     func(p *BatchParams) { p.ProducerWallet = "" },
		"marker":       func(p *BatchParams) { p.RegistrationMarker = "" },
	}
	for name, mutate := range missing {
		t.Run("rejects missing "+name, func(t *testing.T) {
			p := validParams()
			mutate(&p)
			_, err := NewBatch(p, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}

	t.Run("date order is only checked when enforced", func(t *testing.T) {
		p := validParams()
		p.ExpiryDate = p.ManufactureDate.AddDate(0, 0, -1)
		_, err := NewBatch(p, now)
		require.NoError(t, err)

		p.EnforceDateOrder = true
		_, err = NewBatch(p, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestBatch_ApplyDecision(t *testing.T) {
	t.Run("approve once", func(t *testing.T) {
		b, _ := NewBatch(validParams(), now)
		require.NoError(t, b.ApplyDecision(Approved{ComplianceScore: 90}, now.Add(time.Hour)))
		assert.Equal(t, StatusApproved, b.Status)
		assert.True(t, b.IsAuthentic())
		assert.NoError(t, b.CanTransfer())

		err := b.ApplyDecision(Rejected{Reason: "late"}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyReviewed))
		assert.Equal(t, StatusApproved, b.Status)
	})

	t.Run("reject requires reason", func(t *testing.T) {
		b, _ := NewBatch(validParams(), now)
		err := b.ApplyDecision(Rejected{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingReason))
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("score out of range", func(t *testing.T) {
		b, _ := NewBatch(validParams(), now)
		err := b.ApplyDecision(Approved{ComplianceScore: 101}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejected batches cannot move", func(t *testing.T) {
		b, _ := NewBatch(validParams(), now)
		require.NoError(t, b.ApplyDecision(Rejected{Reason: "contaminated"}, now))
		assert.False(t, b.IsAuthentic())
		assert.True(t, dErrors.HasCode(b.CanTransfer(), dErrors.CodeNotApproved))
	})
}

func TestBatch_PendingCannotTransfer(t *testing.T) {
	b, _ := NewBatch(validParams(), now)
	assert.True(t, dErrors.HasCode(b.CanTransfer(), dErrors.CodeNotApproved))
}

func TestApproval(t *testing.T) {
	a, err := NewApproval("B-1", "REG", Approved{ComplianceScore: 95}, "M", now)
	require.NoError(t, err)
	require.NotNil(t, a.ComplianceScore())
	assert.Equal(t, 95, *a.ComplianceScore())
	assert.Empty(t, a.RejectionReason())

	r, err := NewApproval("B-1", "REG", Rejected{Reason: "bad seal"}, "M", now)
	require.NoError(t, err)
	assert.Nil(t, r.ComplianceScore())
	assert.Equal(t, "bad seal", r.RejectionReason())
	assert.Equal(t, StatusRejected, r.Status())

	_, err = NewApproval("B-1", "REG", nil, "M", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestDecisionFromRow(t *testing.T) {
	score := 70
	d, err := DecisionFromRow("approved", &score, "")
	require.NoError(t, err)
	assert.Equal(t, Approved{ComplianceScore: 70}, d)

	d, err = DecisionFromRow("rejected", nil, "why")
	require.NoError(t, err)
	assert.Equal(t, Rejected{Reason: "why"}, d)

	_, err = DecisionFromRow("approved", nil, "")
	assert.Error(t, err)
	_, err = DecisionFromRow("pending", nil, "")
	assert.Error(t, err)
}

func TestNewTransferEvent(t *testing.T) {
	e, err := NewTransferEvent(TransferParams{
		BatchID: "B-1", SenderWallet: "A", ReceiverWallet: "B", Location: "Delhi", Marker: "TX1",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, EventTypeTransfer, e.EventType)

	_, err = NewTransferEvent(TransferParams{BatchID: "B-1", SenderWallet: "A", ReceiverWallet: "B", Marker: "TX1"}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestTransferEvent_Before(t *testing.T) {
	a := &TransferEvent{CreatedAt: now, Seq: 2}
	b := &TransferEvent{CreatedAt: now, Seq: 3}
	c := &TransferEvent{CreatedAt: now.Add(-time.Second), Seq: 9}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, c.Before(a))
}

func TestParseVerificationMethod(t *testing.T) {
	m, err := ParseVerificationMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodQRScan, m)

	m, err = ParseVerificationMethod("manual")
	require.NoError(t, err)
	assert.Equal(t, MethodManual, m)

	_, err = ParseVerificationMethod("nfc")
	assert.Error(t, err)
}
