package provenance

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/sentinel"
)

const testSeed = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func TestTransaction_TxID(t *testing.T) {
	txn := Transaction{Type: "pay", Sender: "A", Receiver: "A", Amount: 20000, Note: "Regulator Approval", IssuedAt: 1}

	id1 := txn.TxID()
	assert.Equal(t, id1, txn.TxID(), "deterministic")
	assert.Len(t, id1, 52)
	assert.Equal(t, strings.ToUpper(id1), id1)

	txn.IssuedAt = 2
	assert.NotEqual(t, id1, txn.TxID())
}

func TestPurpose(t *testing.T) {
	assert.Equal(t, uint64(20000), PurposeRegistration.Amount())
	assert.Equal(t, uint64(20000), PurposeApproval.Amount())
	assert.Equal(t, uint64(10000), PurposeDistribution.Amount())
	assert.Equal(t, "Medicine Registration: B-1", PurposeRegistration.Note("B-1"))
	assert.Equal(t, "Regulator Approval", PurposeApproval.Note("B-1"))
	assert.Equal(t, "Medicine Distribution", PurposeDistribution.Note("B-1"))
}

func TestLocalSigner(t *testing.T) {
	signer, err := NewLocalSigner(testSeed)
	require.NoError(t, err)

	again, err := NewLocalSigner(testSeed)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), again.Address())

	signed, err := signer.Sign(context.Background(), []Transaction{{Type: "pay", Amount: 1}, {Type: "pay", Amount: 2}})
	require.NoError(t, err)
	require.Len(t, signed, 2)
	assert.True(t, signer.Verify(signed[0]))

	tampered := append([]byte{}, signed[0]...)
	tampered[0] ^= 0xff
	assert.False(t, signer.Verify(tampered))
	assert.False(t, signer.Verify([]byte("short")))

	_, err = NewLocalSigner("abcd")
	assert.Error(t, err)
	_, err = NewLocalSigner("not-hex")
	assert.Error(t, err)
}

func TestNotary_Mint(t *testing.T) {
	signer, err := NewLocalSigner(testSeed)
	require.NoError(t, err)
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	notary := NewNotary(signer, signer.Address(), WithClock(func() time.Time { return fixed }))

	a, err := notary.Mint(context.Background(), PurposeRegistration, "B-1", "PRODUCER")
	require.NoError(t, err)
	b, err := notary.Mint(context.Background(), PurposeRegistration, "B-1", "PRODUCER")
	require.NoError(t, err)

	assert.NotEqual(t, a.Marker, b.Marker, "nonce keeps markers unique")
	assert.True(t, signer.Verify(a.Signed))

	var txn Transaction
	raw := a.Signed[:len(a.Signed)-64]
	require.NoError(t, json.Unmarshal(raw, &txn))
	assert.Equal(t, a.Marker, txn.TxID())
	assert.Equal(t, signer.Address().String(), txn.Sender)
	assert.Equal(t, txn.Sender, txn.Receiver)
	assert.Equal(t, uint64(20000), txn.Amount)
	assert.Equal(t, fixed.UnixMilli(), txn.IssuedAt)
	assert.True(t, strings.HasPrefix(txn.Lease, "PRODUCER:"))
}

func TestNewAppID(t *testing.T) {
	appID, err := NewAppID()
	require.NoError(t, err)
	assert.Regexp(t, `^APP_\d{1,6}$`, appID)
}

func TestParseMarker(t *testing.T) {
	m, err := ParseMarker("  TX_1718000000_abc ")
	require.NoError(t, err)
	assert.Equal(t, "TX_1718000000_abc", m)

	for _, bad := range []string{"", "   ", "has space", "tab\there", strings.Repeat("x", 129), "naïve"} {
		_, err := ParseMarker(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), bad)
	}
}

func TestMemoryReplayGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes once", func(t *testing.T) {
		g := NewMemoryReplayGuard(0)
		require.NoError(t, g.Consume(ctx, "M1"))
		assert.ErrorIs(t, g.Consume(ctx, "M1"), sentinel.ErrAlreadyUsed)
		require.NoError(t, g.Consume(ctx, "M2"))
	})

	t.Run("release frees the marker", func(t *testing.T) {
		g := NewMemoryReplayGuard(0)
		require.NoError(t, g.Consume(ctx, "M1"))
		require.NoError(t, g.Release(ctx, "M1"))
		assert.NoError(t, g.Consume(ctx, "M1"))
	})

	t.Run("ttl expiry", func(t *testing.T) {
		g := NewMemoryReplayGuard(time.Minute)
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		g.now = func() time.Time { return now }
		require.NoError(t, g.Consume(ctx, "M1"))
		now = now.Add(2 * time.Minute)
		assert.NoError(t, g.Consume(ctx, "M1"))
	})
}

func TestQRCode(t *testing.T) {
	at := time.Date(2026, 2, 3, 4, 5, 6, 7_000_000, time.UTC)
	code, err := NewQRCode("B-1", "Amoxicillin", "Acme", at)
	require.NoError(t, err)

	assert.JSONEq(t, `{"batchId":"B-1","drugName":"Amoxicillin","manufacturer":"Acme","timestamp":"2026-02-03T04:05:06.007Z"}`, code.Data)
	assert.Len(t, code.Hash, 64)
	assert.Equal(t, "B-1", ParseQRPayload(code.Data))
	assert.Equal(t, "B-plain", ParseQRPayload("B-plain"))

	img, err := ImageDataURL(code.Data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img, "data:image/png;base64,"))
}
