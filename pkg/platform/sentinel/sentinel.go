package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored records, not validation
// failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: a uniqueness or already-in-that-state rule was hit
// - ErrCapacity: a configured ceiling (pool count, signer set) was reached
// - ErrInvalidState: record is in the wrong state for the requested change
//
// For validation errors (bad input, out-of-range bounds), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrCapacity     = errors.New("capacity reached")
	ErrInvalidState = errors.New("invalid state")
)
