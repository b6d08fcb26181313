package provenance

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base32"
	"encoding/hex"
	"fmt"

	id "healx/pkg/domain"
)

// LocalSigner holds an ed25519 key in process. It backs server-minted
// markers when the caller did not bring a wallet-signed payment.
type LocalSigner struct {
	key ed25519.PrivateKey
}

// NewLocalSigner derives the key from a hex encoded 32 byte seed.
func NewLocalSigner(seedHex string) (*LocalSigner, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("decode signer seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signer seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &LocalSigner{key: ed25519.NewKeyFromSeed(seed)}, nil
}

func GenerateLocalSigner() (*LocalSigner, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &LocalSigner{key: key}, nil
}

// Address is the base32 public key.
func (s *LocalSigner) Address() id.WalletAddress {
	pub := s.key.Public().(ed25519.PublicKey)
	return id.WalletAddress(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(pub))
}

// Sign returns encoding||signature for every transaction.
func (s *LocalSigner) Sign(ctx context.Context, txns []Transaction) ([][]byte, error) {
	out := make([][]byte, 0, len(txns))
	for _, t := range txns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		enc := t.Encode()
		sig := ed25519.Sign(s.key, append([]byte("TX"), enc...))
		out = append(out, append(enc, sig...))
	}
	return out, nil
}

// Verify checks a blob produced by Sign.
func (s *LocalSigner) Verify(signed []byte) bool {
	if len(signed) < ed25519.SignatureSize {
		return false
	}
	split := len(signed) - ed25519.SignatureSize
	return ed25519.Verify(s.key.Public().(ed25519.PublicKey), append([]byte("TX"), signed[:split]...), signed[split:])
}
