// Package zinstr decodes Z-machine instructions: opcode form classification,
// operand-type parsing, and the branch/store post-reads that follow an
// opcode's operands. It does not execute anything; zvm consumes its output.
package zinstr

import "errors"

var (
	// ErrInvalidOpcode means the opcode byte has no defined meaning for the
	// story's version (e.g. an extended-form opcode on a V4 story).
	ErrInvalidOpcode = errors.New("zinstr: opcode not defined for this version")
	// ErrInvalidInstructionFormat means operand types or branch/store bytes
	// were malformed (e.g. a branch whose offset ran off the end of memory).
	ErrInvalidInstructionFormat = errors.New("zinstr: malformed instruction format")
)
