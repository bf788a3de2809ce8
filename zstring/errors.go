package zstring

import "errors"

var (
	// ErrInvalidZString means a string ran off the end of memory before its
	// terminator bit was seen.
	ErrInvalidZString = errors.New("zstring: truncated or malformed z-string")
	// ErrInvalidAbbreviation means an abbreviation z-char referenced a bank
	// entry outside what the story's version allows.
	ErrInvalidAbbreviation = errors.New("zstring: invalid abbreviation reference")
)
