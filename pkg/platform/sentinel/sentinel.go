package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about stored entities, not rule violations:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: a uniqueness constraint rejected the write (duplicate vote,
//   second in-progress meeting of the same condominium, duplicate presence)
// - ErrInvalidState: entity in wrong state for the requested mutation
// - ErrUnavailable: backing store temporarily unreachable; callers may retry
//
// For rule rejections (quorum, eligibility), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
