package zvm

import "github.com/kestrelgames/zfic/zaddr"

// Action is what an opcode handler hands back to the driver loop instead of
// mutating the program counter or call stack itself (spec.md §9, "Control
// transfer as data"). Step is the sole place that advances PC or
// pushes/pops frames; this keeps dispatch unit-testable without a live
// driver.
type Action interface {
	isAction()
}

// ActionContinue resumes execution of the current frame at PC (usually the
// instruction's NextPC, but a jump or branch may have redirected it).
type ActionContinue struct {
	PC zaddr.ByteAddr
}

// ActionReturn pops the current frame and stores Value into the caller's
// return variable, if the frame called for one.
type ActionReturn struct {
	Value uint16
}

// ActionCall pushes a new frame at Target with the given arguments. A
// Target of 0 is the "calling routine 0" special case: doCall (reached
// from Step through applyAction) pushes no frame and stores 0 immediately.
type ActionCall struct {
	Target    zaddr.ByteAddr
	Kind      RoutineKind
	ReturnVar uint8
	HasReturn bool
	Args      []uint16
}

// ActionQuit stops the driver loop cleanly (the `quit` opcode).
type ActionQuit struct{}

func (ActionContinue) isAction() {}
func (ActionReturn) isAction()   {}
func (ActionCall) isAction()     {}
func (ActionQuit) isAction()     {}
