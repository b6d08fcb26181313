package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors:
//   - ErrNotFound: the batch, approval or profile does not exist
//   - ErrAlreadyUsed: a unique key (batch id, wallet, provenance marker) is taken
//   - ErrInvalidState: a conditional transition found the row in another state
//   - ErrUnavailable: a backing service cannot be reached
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
