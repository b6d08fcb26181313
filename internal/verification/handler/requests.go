package handler

import (
	"strings"

	"healx/internal/batch/models"
	"healx/internal/provenance"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

// VerifyMedicineRequest is the body of POST /functions/verify-medicine.
// BatchID may hold the raw content of a scanned label.
type VerifyMedicineRequest struct {
	BatchID string `json:"batchId"`
	Method  string `json:"method"`

	parsedBatchID id.BatchID
	parsedMethod  models.VerificationMethod
}

func (r *VerifyMedicineRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	raw := strings.TrimSpace(provenance.ParseQRPayload(strings.TrimSpace(r.BatchID)))
	if raw == "" {
		return dErrors.New(dErrors.CodeValidation, "Batch ID is required")
	}
	batchID, err := id.ParseBatchID(raw)
	if err != nil {
		return err
	}
	r.parsedBatchID = batchID

	method, err := models.ParseVerificationMethod(strings.TrimSpace(r.Method))
	if err != nil {
		return err
	}
	r.parsedMethod = method
	return nil
}

func (r *VerifyMedicineRequest) ParsedBatchID() id.BatchID {
	return r.parsedBatchID
}

func (r *VerifyMedicineRequest) ParsedMethod() models.VerificationMethod {
	return r.parsedMethod
}
