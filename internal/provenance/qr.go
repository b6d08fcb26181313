package provenance

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"
)

// QRPayload is the JSON printed in a batch's QR code.
type QRPayload struct {
	BatchID      string `json:"batchId"`
	DrugName     string `json:"drugName"`
	Manufacturer string `json:"manufacturer"`
	Timestamp    string `json:"timestamp"`
}

// QRCode is the encoded payload and its SHA-256 hex digest.
type QRCode struct {
	Data string
	Hash string
}

func NewQRCode(batchID, drugName, manufacturer string, at time.Time) (QRCode, error) {
	raw, err := json.Marshal(QRPayload{
		BatchID:      batchID,
		DrugName:     drugName,
		Manufacturer: manufacturer,
		Timestamp:    at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return QRCode{}, fmt.Errorf("encode qr payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return QRCode{Data: string(raw), Hash: hex.EncodeToString(sum[:])}, nil
}

// ImageDataURL renders data as a PNG data URL.
func ImageDataURL(data string) (string, error) {
	png, err := qrcode.Encode(data, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("render qr image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ParseQRPayload reads the batch id back out of scanned QR data. Plain batch
// ids (older labels) are returned as is.
func ParseQRPayload(data string) string {
	var p QRPayload
	if err := json.Unmarshal([]byte(data), &p); err == nil && p.BatchID != "" {
		return p.BatchID
	}
	return data
}
