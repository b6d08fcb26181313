package handler

import (
	"time"

	"healx/internal/batch/models"
	"healx/internal/verification/service"
)

// VerificationResponse is the public authenticity report.
type VerificationResponse struct {
	IsAuthentic        bool               `json:"isAuthentic"`
	Status             string             `json:"status"`
	BatchID            string             `json:"batchId"`
	DrugName           string             `json:"drugName"`
	Manufacturer       string             `json:"manufacturer"`
	ExpiryDate         string             `json:"expiryDate"`
	Quantity           int                `json:"quantity"`
	RegistrationTxHash string             `json:"registrationTxHash"`
	ApprovalTxHash     string             `json:"approvalTxHash,omitempty"`
	SupplyChainEvents  []SupplyChainEvent `json:"supplyChainEvents"`
}

type SupplyChainEvent struct {
	EventType        string    `json:"eventType"`
	Location         string    `json:"location"`
	Timestamp        time.Time `json:"timestamp"`
	BlockchainTxHash string    `json:"blockchainTxHash"`
}

func FromReport(r *service.Report) *VerificationResponse {
	resp := &VerificationResponse{
		IsAuthentic:        r.IsAuthentic,
		Status:             r.Batch.Status.String(),
		BatchID:            r.Batch.ID.String(),
		DrugName:           r.Batch.DrugName,
		Manufacturer:       r.Batch.Manufacturer,
		ExpiryDate:         r.Batch.ExpiryDate.Format(models.DateLayout),
		Quantity:           r.Batch.Quantity,
		RegistrationTxHash: r.Batch.RegistrationMarker,
		SupplyChainEvents:  make([]SupplyChainEvent, 0, len(r.Events)),
	}
	if r.Approval != nil {
		resp.ApprovalTxHash = r.Approval.Marker
	}
	for _, e := range r.Events {
		resp.SupplyChainEvents = append(resp.SupplyChainEvents, SupplyChainEvent{
			EventType:        e.EventType,
			Location:         e.Location,
			Timestamp:        e.CreatedAt,
			BlockchainTxHash: e.Marker,
		})
	}
	return resp
}
