package provenance

import (
	"context"
	"errors"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Signer signs a set of transactions and returns one signed blob per input,
// in order.
type Signer interface {
	Sign(ctx context.Context, txns []Transaction) ([][]byte, error)
}

// ErrSignatureMissing is returned when a provider leaves a requested
// transaction unsigned.
var ErrSignatureMissing = errors.New("wallet returned no signature")

// GroupTransaction is one entry of a grouped signing request.
type GroupTransaction struct {
	Txn     []byte
	Signers []string
}

// PeraConnector signs transaction groups.
type PeraConnector interface {
	SignTransaction(ctx context.Context, groups [][]GroupTransaction) ([][]byte, error)
}

// DeflyConnector signs transaction groups for an explicit signer address.
type DeflyConnector interface {
	SignTransaction(ctx context.Context, groups [][]GroupTransaction, signerAddress string) ([][]byte, error)
}

// WalletTransaction is the flat wire form used by extension wallets.
type WalletTransaction struct {
	Txn     string   `json:"txn"`
	Signers []string `json:"signers,omitempty"`
}

// LuteConnector signs a flat list; slots it did not sign come back nil.
type LuteConnector interface {
	SignTxns(ctx context.Context, txns []WalletTransaction) ([][]byte, error)
}

// ReplayGuard admits each marker once across all lifecycle actions.
// Consume returns sentinel.ErrAlreadyUsed for a marker seen before. Release
// undoes a Consume whose write did not land.
type ReplayGuard interface {
	Consume(ctx context.Context, marker string) error
	Release(ctx context.Context, marker string) error
}
