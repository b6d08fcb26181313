package domain

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	dErrors "healx/pkg/domain-errors"
)

const (
	maxBatchIDLength = 64
	maxWalletLength  = 128
)

// BatchID is the business key of a medicine batch, as printed on the pack and
// encoded in its QR code.
// Invariant: 1..64 characters from [A-Za-z0-9-_./].
type BatchID string

// WalletAddress identifies a participant. Profiles, batches, approvals and
// transfers all reference participants by this value.
// Invariant: non-empty, at most 128 printable non-space ASCII characters.
type WalletAddress string

// EventID identifies a supply-chain event row.
type EventID uuid.UUID

// ApprovalID identifies a regulatory approval row.
type ApprovalID uuid.UUID

// VerificationID identifies a verification audit row.
type VerificationID uuid.UUID

// ParseBatchID constructs a BatchID from external input.
func ParseBatchID(s string) (BatchID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "batch id cannot be empty")
	}
	if len(s) > maxBatchIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "batch id must be 64 characters or less")
	}
	for _, r := range s {
		if !isBatchIDRune(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "batch id contains invalid characters")
		}
	}
	return BatchID(s), nil
}

func isBatchIDRune(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("-_./", r)
}

func (b BatchID) String() string { return string(b) }

func (b BatchID) IsNil() bool { return b == "" }

// ParseWalletAddress constructs a WalletAddress from external input.
// The format is not checked against any chain encoding.
func ParseWalletAddress(s string) (WalletAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address cannot be empty")
	}
	if len(s) > maxWalletLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address must be 128 characters or less")
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "wallet address contains invalid characters")
		}
	}
	return WalletAddress(s), nil
}

func (w WalletAddress) String() string { return string(w) }

func (w WalletAddress) IsNil() bool { return w == "" }

func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id ApprovalID) String() string     { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }

// MarshalText lets typed UUIDs serialize as plain strings.
func (id EventID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id ApprovalID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id VerificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
