package handler

import (
	"time"

	"healx/internal/batch/models"
)

// TransferResponse is a supply_chain_events row.
type TransferResponse struct {
	ID               string    `json:"id"`
	BatchID          string    `json:"batch_id"`
	EventType        string    `json:"event_type"`
	SenderWallet     string    `json:"sender_wallet"`
	ReceiverWallet   string    `json:"receiver_wallet"`
	Location         string    `json:"location"`
	BlockchainTxHash string    `json:"blockchain_tx_hash"`
	CreatedAt        time.Time `json:"created_at"`
}

// TrackTransferResponse is the response of POST /functions/track-transfer.
type TrackTransferResponse struct {
	Success         bool             `json:"success"`
	Transfer        TransferResponse `json:"transfer"`
	TransactionHash string           `json:"transactionHash"`
}

type EventsResponse struct {
	Events []TransferResponse `json:"events"`
	Total  int                `json:"total"`
}

func FromEvent(e *models.TransferEvent) TransferResponse {
	return TransferResponse{
		ID:               e.ID.String(),
		BatchID:          e.BatchID.String(),
		EventType:        e.EventType,
		SenderWallet:     e.SenderWallet.String(),
		ReceiverWallet:   e.ReceiverWallet.String(),
		Location:         e.Location,
		BlockchainTxHash: e.Marker,
		CreatedAt:        e.CreatedAt,
	}
}

func FromEvents(events []*models.TransferEvent) *EventsResponse {
	out := make([]TransferResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return &EventsResponse{Events: out, Total: len(out)}
}
