package handler

import (
	"strings"
	"time"

	"healx/internal/batch/models"
	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

// RegisterMedicineRequest is the body of POST /functions/register-medicine.
type RegisterMedicineRequest struct {
	BatchID         string `json:"batchId"`
	DrugName        string `json:"drugName"`
	Manufacturer    string `json:"manufacturer"`
	ManufactureDate string `json:"manufactureDate"`
	ExpiryDate      string `json:"expiryDate"`
	Quantity        int    `json:"quantity"`
	ProducerWallet  string `json:"producerWallet"`
	PaymentTxID     string `json:"paymentTxId"`

	parsedBatchID         id.BatchID
	parsedManufactureDate time.Time
	parsedExpiryDate      time.Time
}

// Validate implements httputil.Validatable. The producer wallet is resolved
// against the session by the handler.
func (r *RegisterMedicineRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.DrugName) > 200 || len(r.Manufacturer) > 200 {
		return dErrors.New(dErrors.CodeValidation, "drugName and manufacturer must be at most 200 characters")
	}

	r.BatchID = strings.TrimSpace(r.BatchID)
	r.DrugName = strings.TrimSpace(r.DrugName)
	r.Manufacturer = strings.TrimSpace(r.Manufacturer)
	r.PaymentTxID = strings.TrimSpace(r.PaymentTxID)

	if r.BatchID == "" {
		return dErrors.New(dErrors.CodeValidation, "batchId is required")
	}
	batchID, err := id.ParseBatchID(r.BatchID)
	if err != nil {
		return err
	}
	r.parsedBatchID = batchID

	if r.DrugName == "" {
		return dErrors.New(dErrors.CodeValidation, "drugName is required")
	}
	if r.Manufacturer == "" {
		return dErrors.New(dErrors.CodeValidation, "manufacturer is required")
	}
	if r.parsedManufactureDate, err = parseDate("manufactureDate", r.ManufactureDate); err != nil {
		return err
	}
	if r.parsedExpiryDate, err = parseDate("expiryDate", r.ExpiryDate); err != nil {
		return err
	}
	if r.Quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be a positive number")
	}
	return nil
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}

// Params builds the batch parameters for producer.
func (r *RegisterMedicineRequest) Params(producer id.WalletAddress) models.BatchParams {
	return models.BatchParams{
		ID:              r.parsedBatchID,
		DrugName:        r.DrugName,
		Manufacturer:    r.Manufacturer,
		ManufactureDate: r.parsedManufactureDate,
		ExpiryDate:      r.parsedExpiryDate,
		Quantity:        r.Quantity,
		ProducerWallet:  producer,
	}
}
