// Package zvm ties zcore/zobject/zstring/zdict/zinstr together into an
// executable Z-machine: call frames, variable addressing, the dispatch
// tables that turn a decoded instruction into an Action, and the driver
// loop that consumes Actions.
package zvm

import "errors"

// ErrStackUnderflow is a recoverable condition (reported via Host.Warnf,
// per spec.md's "Z-string decoding recovers in place" posture extended to
// the evaluation stack) rather than a fault that aborts the instance.
var ErrStackUnderflow = errors.New("zvm: evaluation stack underflow")

// ErrNoSuchLocal means an opcode addressed a local variable number past
// the current frame's local count.
var ErrNoSuchLocal = errors.New("zvm: local variable out of range for this frame")

// ErrCallStackUnderflow means a return (implicit or via `ret`) was executed
// with no caller left to resume, i.e. the main routine itself returned.
var ErrCallStackUnderflow = errors.New("zvm: call stack underflow")

// ErrUnsupportedOpcode is raised for opcodes this core recognizes as
// belonging to a family but does not implement a handler for (distinct
// from zinstr.ErrInvalidOpcode, which is an opcode with no meaning at all
// for the story's version).
var ErrUnsupportedOpcode = errors.New("zvm: opcode recognized but not implemented")
