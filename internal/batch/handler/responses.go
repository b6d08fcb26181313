package handler

import (
	"time"

	"healx/internal/batch/models"
	"healx/internal/batch/service"
)

// MedicineResponse is the stored batch row as returned by the actions and
// the dashboard reads.
type MedicineResponse struct {
	BatchID          string    `json:"batch_id"`
	DrugName         string    `json:"drug_name"`
	Manufacturer     string    `json:"manufacturer"`
	ManufactureDate  string    `json:"manufacture_date"`
	ExpiryDate       string    `json:"expiry_date"`
	Quantity         int       `json:"quantity"`
	ProducerWallet   string    `json:"producer_wallet"`
	Status           string    `json:"status"`
	BlockchainTxHash string    `json:"blockchain_tx_hash"`
	BlockchainAppID  string    `json:"blockchain_app_id,omitempty"`
	QRCodeData       string    `json:"qr_code_data,omitempty"`
	QRCodeHash       string    `json:"qr_code_hash,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RegisterMedicineResponse is the response of POST /functions/register-medicine.
type RegisterMedicineResponse struct {
	Success         bool             `json:"success"`
	Medicine        MedicineResponse `json:"medicine"`
	QRCodeImage     string           `json:"qrCodeImage"`
	TransactionHash string           `json:"transactionHash"`
	AppID           string           `json:"appId"`
}

type ListMedicinesResponse struct {
	Medicines []MedicineResponse `json:"medicines"`
	Total     int                `json:"total"`
}

func FromBatch(b *models.Batch) MedicineResponse {
	return MedicineResponse{
		BatchID:          b.ID.String(),
		DrugName:         b.DrugName,
		Manufacturer:     b.Manufacturer,
		ManufactureDate:  b.ManufactureDate.Format(models.DateLayout),
		ExpiryDate:       b.ExpiryDate.Format(models.DateLayout),
		Quantity:         b.Quantity,
		ProducerWallet:   b.ProducerWallet.String(),
		Status:           b.Status.String(),
		BlockchainTxHash: b.RegistrationMarker,
		BlockchainAppID:  b.AppID,
		QRCodeData:       b.QRCodeData,
		QRCodeHash:       b.QRCodeHash,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func FromRegistration(reg *service.Registration) *RegisterMedicineResponse {
	return &RegisterMedicineResponse{
		Success:         true,
		Medicine:        FromBatch(reg.Batch),
		QRCodeImage:     reg.QRCodeImage,
		TransactionHash: reg.Batch.RegistrationMarker,
		AppID:           reg.Batch.AppID,
	}
}

func FromBatches(batches []*models.Batch) *ListMedicinesResponse {
	out := make([]MedicineResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, FromBatch(b))
	}
	return &ListMedicinesResponse{Medicines: out, Total: len(out)}
}
