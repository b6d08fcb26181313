package provenance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	id "healx/pkg/domain"
)

// Receipt is a minted marker and the signed transaction behind it.
type Receipt struct {
	Marker string
	Signed []byte
}

// Notary mints markers for lifecycle steps by signing a self-payment of its
// own account.
type Notary struct {
	signer  Signer
	account id.WalletAddress
	now     func() time.Time
}

type NotaryOption func(*Notary)

func WithClock(now func() time.Time) NotaryOption {
	return func(n *Notary) {
		if now != nil {
			n.now = now
		}
	}
}

func NewNotary(signer Signer, account id.WalletAddress, opts ...NotaryOption) *Notary {
	n := &Notary{signer: signer, account: account, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Mint signs a self-payment for purpose. subject names the batch; actor is
// the participant the step is attributed to and is carried in the lease so
// two actors never collide on the same marker.
func (n *Notary) Mint(ctx context.Context, purpose Purpose, subject string, actor id.WalletAddress) (Receipt, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return Receipt{}, fmt.Errorf("marker nonce: %w", err)
	}
	txn := Transaction{
		Type:     "pay",
		Sender:   n.account.String(),
		Receiver: n.account.String(),
		Amount:   purpose.Amount(),
		Note:     purpose.Note(subject),
		IssuedAt: n.now().UnixMilli(),
		Lease:    actor.String() + ":" + hex.EncodeToString(nonce),
	}
	signed, err := n.signer.Sign(ctx, []Transaction{txn})
	if err != nil {
		return Receipt{}, fmt.Errorf("sign %s payment: %w", purpose, err)
	}
	if len(signed) != 1 || len(signed[0]) == 0 {
		return Receipt{}, ErrSignatureMissing
	}
	return Receipt{Marker: txn.TxID(), Signed: signed[0]}, nil
}

var appIDRange = big.NewInt(1_000_000)

// NewAppID returns an APP_<n> identifier with n in [0, 1000000).
func NewAppID() (string, error) {
	n, err := rand.Int(rand.Reader, appIDRange)
	if err != nil {
		return "", err
	}
	return "APP_" + n.String(), nil
}
