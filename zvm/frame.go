package zvm

import "github.com/kestrelgames/zfic/zaddr"

// RoutineKind distinguishes a function (which stores its result into a
// variable on return) from a procedure (whose result is discarded), and
// the V5+ interrupt routine used by sound effects and timed input.
type RoutineKind int

const (
	RoutineFunction RoutineKind = iota
	RoutineProcedure
	RoutineInterrupt
)

// Frame is one call-stack entry: the return address and variable, the
// routine's locals, its private evaluation stack, and how many arguments
// the caller actually supplied (check_arg_count needs this).
type Frame struct {
	PC            zaddr.ByteAddr
	ReturnPC      zaddr.ByteAddr
	ReturnVar     uint8
	HasReturnVar  bool
	Kind          RoutineKind
	Locals        []uint16
	Stack         []uint16
	ArgsSupplied  int
}

func (f *Frame) push(v uint16) {
	f.Stack = append(f.Stack, v)
}

// pop reports ok=false on underflow instead of erroring outright: per
// spec.md's recoverable-faults posture, callers substitute 0, and most
// also report the underflow through Host.Warnf.
func (f *Frame) pop() (uint16, bool) {
	if len(f.Stack) == 0 {
		return 0, false
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v, true
}

func (f *Frame) peek() (uint16, bool) {
	if len(f.Stack) == 0 {
		return 0, false
	}
	return f.Stack[len(f.Stack)-1], true
}

// cloneFrame deep-copies a frame for save/restore-undo snapshots.
func cloneFrame(f *Frame) *Frame {
	c := *f
	c.Locals = append([]uint16(nil), f.Locals...)
	c.Stack = append([]uint16(nil), f.Stack...)
	return &c
}
