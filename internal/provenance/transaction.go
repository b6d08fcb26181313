// Package provenance mints and guards provenance markers: opaque transaction
// ids recorded as evidence that a lifecycle step happened. Signing goes
// through the Signer capability only; the lifecycle never learns which wallet
// provider produced a signature.
package provenance

import (
	"crypto/sha512"
	"encoding/base32"
	"encoding/json"
)

// Purpose selects the amount and note of a self-payment.
type Purpose string

const (
	PurposeRegistration Purpose = "registration"
	PurposeApproval     Purpose = "approval"
	PurposeDistribution Purpose = "distribution"
)

// Amount in microAlgos.
func (p Purpose) Amount() uint64 {
	if p == PurposeDistribution {
		return 10000
	}
	return 20000
}

func (p Purpose) Note(subject string) string {
	switch p {
	case PurposeRegistration:
		return "Medicine Registration: " + subject
	case PurposeApproval:
		return "Regulator Approval"
	default:
		return "Medicine Distribution"
	}
}

// Transaction is a payment as handed to a signer. Field order is the
// encoding order.
type Transaction struct {
	Type     string `json:"type"`
	Sender   string `json:"snd"`
	Receiver string `json:"rcv"`
	Amount   uint64 `json:"amt"`
	Note     string `json:"note,omitempty"`
	IssuedAt int64  `json:"ts"`
	Lease    string `json:"lx,omitempty"`
}

// Encode is the canonical byte form that is signed and hashed.
func (t Transaction) Encode() []byte {
	raw, _ := json.Marshal(t) // plain fields, cannot fail
	return raw
}

var txIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// TxID derives the marker of a transaction: base32 of SHA-512/256 over the
// "TX" domain tag and the encoding.
func (t Transaction) TxID() string {
	sum := sha512.Sum512_256(append([]byte("TX"), t.Encode()...))
	return txIDEncoding.EncodeToString(sum[:])
}
