package handler

import (
	"strings"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
)

// TrackTransferRequest is the body of POST /functions/track-transfer.
type TrackTransferRequest struct {
	BatchID          string `json:"batchId"`
	SenderWallet     string `json:"senderWallet"`
	ReceiverWallet   string `json:"receiverWallet"`
	Location         string `json:"location"`
	EventType        string `json:"eventType"`
	BlockchainTxHash string `json:"blockchainTxHash"`

	parsedBatchID  id.BatchID
	parsedReceiver id.WalletAddress
}

// Validate parses the batch id and receiver. Presence of the remaining fields
// is checked by the ledger once the batch status is known, so an unapproved
// batch always reports not_approved first.
func (r *TrackTransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.BatchID = strings.TrimSpace(r.BatchID)
	r.ReceiverWallet = strings.TrimSpace(r.ReceiverWallet)
	r.Location = strings.TrimSpace(r.Location)
	r.EventType = strings.TrimSpace(r.EventType)
	r.BlockchainTxHash = strings.TrimSpace(r.BlockchainTxHash)

	if r.BatchID == "" {
		return dErrors.New(dErrors.CodeValidation, "batchId is required")
	}
	batchID, err := id.ParseBatchID(r.BatchID)
	if err != nil {
		return err
	}
	r.parsedBatchID = batchID

	if r.ReceiverWallet != "" {
		receiver, err := id.ParseWalletAddress(r.ReceiverWallet)
		if err != nil {
			return err
		}
		r.parsedReceiver = receiver
	}
	return nil
}

func (r *TrackTransferRequest) ParsedBatchID() id.BatchID {
	return r.parsedBatchID
}

func (r *TrackTransferRequest) ParsedReceiver() id.WalletAddress {
	return r.parsedReceiver
}
