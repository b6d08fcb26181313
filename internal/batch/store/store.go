// Package store persists batches, approvals, custody events and verification
// records. Both implementations enforce the lifecycle guards atomically:
// a decision only lands on a pending batch and a transfer only on an approved
// one. Guard failures surface as sentinel errors:
//   - sentinel.ErrNotFound: no such batch (or approval)
//   - sentinel.ErrAlreadyUsed: batch id taken
//   - sentinel.ErrInvalidState: the batch is not in the required status
package store

import (
	"healx/internal/batch/models"
	id "healx/pkg/domain"
)

const defaultListLimit = 100

// ListFilter narrows a batch listing. Zero values match everything.
type ListFilter struct {
	Status   models.Status
	Producer id.WalletAddress
	Limit    int
}

func (f ListFilter) limit() int {
	if f.Limit <= 0 || f.Limit > defaultListLimit {
		return defaultListLimit
	}
	return f.Limit
}

func (f ListFilter) matches(b *models.Batch) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if !f.Producer.IsNil() && b.ProducerWallet != f.Producer {
		return false
	}
	return true
}
