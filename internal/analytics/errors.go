package analytics

import "errors"

// ErrPersistFailed and related errors describe storage-side failures. A
// mutation that returns ErrPersistFailed has still taken effect in memory;
// the in-memory log stays authoritative for the running session.
var (
	ErrPersistFailed      = errors.New("analytics log not persisted")
	ErrUnsupportedVersion = errors.New("unsupported log version")
)
