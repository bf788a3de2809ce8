package zvm

import (
	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zinstr"
)

// buildCall turns a call-family opcode's operands into an ActionCall: the
// first operand is the packed routine address, everything after it is an
// argument. kind and whether the call stores a result both come from
// which specific opcode dispatched here (call_1n/call_vn/call_vn2 never
// store; call/call_1s/call_2s/call_vs2 always do).
func (vm *VM) buildCall(instr zinstr.Instruction, routinePacked uint16, args []uint16, kind RoutineKind) Action {
	target := vm.resolvePacked(routinePacked, zaddr.PackedRoutine)
	return ActionCall{
		Target:    target,
		Kind:      kind,
		ReturnVar: instr.StoreVar,
		HasReturn: instr.Stores,
		Args:      args,
	}
}
