package provenance

import (
	"context"
	"encoding/base64"
	"fmt"
)

func toGroup(txns []Transaction) [][]GroupTransaction {
	group := make([]GroupTransaction, 0, len(txns))
	for _, t := range txns {
		group = append(group, GroupTransaction{Txn: t.Encode(), Signers: []string{t.Sender}})
	}
	return [][]GroupTransaction{group}
}

func checkSigned(signed [][]byte, want int) ([][]byte, error) {
	if len(signed) != want {
		return nil, fmt.Errorf("expected %d signed transactions, got %d: %w", want, len(signed), ErrSignatureMissing)
	}
	for i, s := range signed {
		if len(s) == 0 {
			return nil, fmt.Errorf("transaction %d: %w", i, ErrSignatureMissing)
		}
	}
	return signed, nil
}

// The provider signers below let a process that holds a live wallet session,
// such as a desktop or command-line client embedding a Notary, mint markers
// with the participant's own key. cmd/server has no wallet session and signs
// with LocalSigner.

// PeraSigner adapts a Pera connection.
type PeraSigner struct {
	conn PeraConnector
}

func NewPeraSigner(conn PeraConnector) *PeraSigner {
	return &PeraSigner{conn: conn}
}

func (s *PeraSigner) Sign(ctx context.Context, txns []Transaction) ([][]byte, error) {
	signed, err := s.conn.SignTransaction(ctx, toGroup(txns))
	if err != nil {
		return nil, fmt.Errorf("pera sign: %w", err)
	}
	return checkSigned(signed, len(txns))
}

// DeflySigner adapts a Defly connection. The signer address is the sender of
// the first transaction.
type DeflySigner struct {
	conn DeflyConnector
}

func NewDeflySigner(conn DeflyConnector) *DeflySigner {
	return &DeflySigner{conn: conn}
}

func (s *DeflySigner) Sign(ctx context.Context, txns []Transaction) ([][]byte, error) {
	if len(txns) == 0 {
		return nil, nil
	}
	signed, err := s.conn.SignTransaction(ctx, toGroup(txns), txns[0].Sender)
	if err != nil {
		return nil, fmt.Errorf("defly sign: %w", err)
	}
	return checkSigned(signed, len(txns))
}

// LuteSigner adapts a Lute connection. Only non-nil slots are kept, so the
// result still lines up with the input when every slot was signed.
type LuteSigner struct {
	conn LuteConnector
}

func NewLuteSigner(conn LuteConnector) *LuteSigner {
	return &LuteSigner{conn: conn}
}

func (s *LuteSigner) Sign(ctx context.Context, txns []Transaction) ([][]byte, error) {
	flat := make([]WalletTransaction, 0, len(txns))
	for _, t := range txns {
		flat = append(flat, WalletTransaction{Txn: base64.StdEncoding.EncodeToString(t.Encode())})
	}
	raw, err := s.conn.SignTxns(ctx, flat)
	if err != nil {
		return nil, fmt.Errorf("lute sign: %w", err)
	}
	signed := make([][]byte, 0, len(raw))
	for _, r := range raw {
		if r != nil {
			signed = append(signed, r)
		}
	}
	return checkSigned(signed, len(txns))
}
