package provenance

import (
	"context"
	"errors"

	id "healx/pkg/domain"
	dErrors "healx/pkg/domain-errors"
	"healx/pkg/platform/sentinel"
)

// Attestor hands lifecycle actions their provenance marker: either a caller
// supplied transaction hash, admitted once through the replay guard, or one
// minted by the notary.
type Attestor struct {
	notary *Notary
	guard  ReplayGuard
}

func NewAttestor(notary *Notary, guard ReplayGuard) *Attestor {
	return &Attestor{notary: notary, guard: guard}
}

// Claim admits a caller supplied marker. The returned release func undoes the
// claim and must be called when the write that records the marker fails.
func (a *Attestor) Claim(ctx context.Context, supplied string) (string, func(), error) {
	marker, err := ParseMarker(supplied)
	if err != nil {
		return "", nil, err
	}
	if err := a.guard.Consume(ctx, marker); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return "", nil, dErrors.New(dErrors.CodeMarkerReused, "transaction hash has already been recorded")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim transaction hash")
	}
	release := func() {
		_ = a.guard.Release(context.WithoutCancel(ctx), marker)
	}
	return marker, release, nil
}

// Resolve claims supplied when it is non-empty and otherwise mints a fresh
// marker for purpose. Minted markers need no release.
func (a *Attestor) Resolve(ctx context.Context, supplied string, purpose Purpose, subject string, actor id.WalletAddress) (string, func(), error) {
	if supplied != "" {
		return a.Claim(ctx, supplied)
	}
	receipt, err := a.notary.Mint(ctx, purpose, subject, actor)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint transaction")
	}
	return receipt.Marker, func() {}, nil
}
