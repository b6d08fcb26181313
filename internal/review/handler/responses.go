package handler

import (
	"time"

	"healx/internal/batch/models"
)

// ApprovalResponse is a regulatory_approvals row.
type ApprovalResponse struct {
	ID               string     `json:"id"`
	BatchID          string     `json:"batch_id"`
	RegulatorWallet  string     `json:"regulator_wallet"`
	Status           string     `json:"status"`
	ComplianceScore  *int       `json:"compliance_score"`
	RejectionReason  *string    `json:"rejection_reason"`
	BlockchainTxHash string     `json:"blockchain_tx_hash"`
	ApprovedAt       *time.Time `json:"approved_at"`
	DecidedAt        time.Time  `json:"decided_at"`
}

// ApproveMedicineResponse is the response of POST /functions/approve-medicine.
type ApproveMedicineResponse struct {
	Success         bool             `json:"success"`
	Approval        ApprovalResponse `json:"approval"`
	TransactionHash string           `json:"transactionHash"`
}

func FromApproval(a *models.Approval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:               a.ID.String(),
		BatchID:          a.BatchID.String(),
		RegulatorWallet:  a.RegulatorWallet.String(),
		Status:           a.Status().String(),
		ComplianceScore:  a.ComplianceScore(),
		BlockchainTxHash: a.Marker,
		DecidedAt:        a.DecidedAt,
	}
	if reason := a.RejectionReason(); reason != "" {
		resp.RejectionReason = &reason
	}
	if a.Status() == models.StatusApproved {
		at := a.DecidedAt
		resp.ApprovedAt = &at
	}
	return resp
}
