// Package store persists wallet profiles. Both implementations refuse a
// second profile for the same wallet with sentinel.ErrAlreadyUsed.
package store
