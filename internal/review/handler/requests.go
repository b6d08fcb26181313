package handler

import (
	"strings"

	"healx/internal/batch/models"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

// ApproveMedicineRequest is the body of POST /functions/approve-medicine.
type ApproveMedicineRequest struct {
	BatchID          string `json:"batchId"`
	RegulatorWallet  string `json:"regulatorWallet"`
	Status           string `json:"status"`
	ComplianceScore  *int   `json:"complianceScore"`
	RejectionReason  string `json:"rejectionReason"`
	BlockchainTxHash string `json:"blockchainTxHash"`

	parsedBatchID id.BatchID
	parsedStatus  models.Status
}

func (r *ApproveMedicineRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.RejectionReason) > 2000 {
		return dErrors.New(dErrors.CodeValidation, "rejectionReason must be at most 2000 characters")
	}

	r.BatchID = strings.TrimSpace(r.BatchID)
	r.Status = strings.TrimSpace(strings.ToLower(r.Status))
	r.RejectionReason = strings.TrimSpace(r.RejectionReason)
	r.BlockchainTxHash = strings.TrimSpace(r.BlockchainTxHash)

	if r.BatchID == "" {
		return dErrors.New(dErrors.CodeValidation, "batchId is required")
	}
	batchID, err := id.ParseBatchID(r.BatchID)
	if err != nil {
		return err
	}
	r.parsedBatchID = batchID

	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	status, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	if !status.IsTerminal() {
		return dErrors.New(dErrors.CodeValidation, "status must be approved or rejected")
	}
	r.parsedStatus = status
	return nil
}

func (r *ApproveMedicineRequest) ParsedBatchID() id.BatchID {
	return r.parsedBatchID
}

func (r *ApproveMedicineRequest) ParsedStatus() models.Status {
	return r.parsedStatus
}
