package zvm

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zinstr"
)

func (vm *VM) dispatchOP0(instr zinstr.Instruction) (Action, error) {
	switch instr.Opcode {
	case 0: // rtrue
		return ActionReturn{Value: 1}, nil

	case 1: // rfalse
		return ActionReturn{Value: 0}, nil

	case 2: // print
		consumed, err := vm.printZString(instr.NextPC)
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC.Add(consumed)}, nil

	case 3: // print_ret
		consumed, err := vm.printZString(instr.NextPC)
		if err != nil {
			return nil, err
		}
		_ = consumed
		vm.output("\n")
		return ActionReturn{Value: 1}, nil

	case 4: // nop
		return ActionContinue{PC: instr.NextPC}, nil

	case 5: // save (V1-V3 branch form)
		ok, err := vm.saveGame()
		if err != nil {
			return nil, err
		}
		return vm.branchAction(instr, ok), nil

	case 6: // restore (V1-V3 branch form)
		ok, err := vm.restoreGame()
		if err != nil {
			return nil, err
		}
		if ok {
			return ActionContinue{PC: vm.currentFrame().PC}, nil
		}
		return vm.branchAction(instr, false), nil

	case 7: // restart
		if err := vm.Restart(); err != nil {
			return nil, err
		}
		return ActionContinue{PC: vm.currentFrame().PC}, nil

	case 8: // ret_popped
		v, ok := vm.currentFrame().pop()
		if !ok {
			vm.Host.Warnf("ret_popped: stack underflow at %#x", instr.PC)
		}
		return ActionReturn{Value: v}, nil

	case 9: // pop / catch
		if vm.Core.Version >= zaddr.V5 {
			return ActionContinue{PC: instr.NextPC}, fmt.Errorf("zvm: catch: %w", ErrUnsupportedOpcode)
		}
		vm.currentFrame().pop()
		return ActionContinue{PC: instr.NextPC}, nil

	case 10: // quit
		return ActionQuit{}, nil

	case 11: // new_line
		vm.output("\n")
		return ActionContinue{PC: instr.NextPC}, nil

	case 12: // show_status
		vm.showStatus()
		return ActionContinue{PC: instr.NextPC}, nil

	case 13: // verify
		return vm.branchAction(instr, vm.Core.VerifyChecksum()), nil

	case 15: // piracy
		return vm.branchAction(instr, true), nil

	default:
		return nil, fmt.Errorf("zvm: 0OP opcode %d at %#x: %w", instr.Opcode, instr.PC, ErrUnsupportedOpcode)
	}
}
