package zvm

import (
	"fmt"

	"github.com/kestrelgames/zfic/zinstr"
)

// dispatch turns one decoded instruction into an Action. It touches
// vm.frames only through readVariable/writeVariable and the current frame's
// private stack, except that restart, restore and restore_undo replace the
// whole call stack - pushing or popping a single call frame is Step's job,
// driven by the Action this returns.
func (vm *VM) dispatch(instr zinstr.Instruction) (Action, error) {
	switch instr.Count {
	case zinstr.OP0:
		return vm.dispatchOP0(instr)
	case zinstr.OP1:
		return vm.dispatchOP1(instr)
	case zinstr.OP2:
		return vm.dispatchOP2(instr)
	case zinstr.VAR:
		return vm.dispatchVAR(instr)
	case zinstr.EXT:
		return vm.dispatchEXT(instr)
	default:
		return nil, fmt.Errorf("zvm: instruction at %#x has unknown operand count family: %w", instr.PC, ErrUnsupportedOpcode)
	}
}
