package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Program stores and caches return
// these (optionally wrapped) so the service can translate them into coded
// domain errors:
// - ErrNotFound: program does not exist in the store
// - ErrConflict: a program with the same ID already exists
// - ErrUnavailable: backing store or cache is temporarily unreachable
//
// For validation errors (bad input, broken authoring rules), use
// pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
