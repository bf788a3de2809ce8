package zcore

import "errors"

// Fault kinds surfaced by the core. Callers compare with errors.Is; the
// driver loop in zvm never recovers from these, it just forwards them to
// the host.
var (
	// ErrLoadFailure means the supplied image was too small to hold a header.
	ErrLoadFailure = errors.New("zcore: load failure")
	// ErrBadAddress means a read or write fell outside the image bounds.
	ErrBadAddress = errors.New("zcore: address out of range")
	// ErrReadOnlyMemory means a write targeted static or high memory.
	ErrReadOnlyMemory = errors.New("zcore: write to read-only memory")
)
