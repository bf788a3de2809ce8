package zvm

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zinstr"
)

func (vm *VM) dispatchOP1(instr zinstr.Instruction) (Action, error) {
	values, err := vm.operandValues(instr.Operands)
	if err != nil {
		return nil, err
	}
	a := values[0]

	switch instr.Opcode {
	case 0: // jz
		return vm.branchAction(instr, a == 0), nil

	case 1: // get_sibling
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		sibling, err := obj.Sibling()
		if err != nil {
			return nil, err
		}
		if err := vm.store(instr, sibling); err != nil {
			return nil, err
		}
		return vm.branchAction(instr, sibling != 0), nil

	case 2: // get_child
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		child, err := obj.Child()
		if err != nil {
			return nil, err
		}
		if err := vm.store(instr, child); err != nil {
			return nil, err
		}
		return vm.branchAction(instr, child != 0), nil

	case 3: // get_parent
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		parent, err := obj.Parent()
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, parent)

	case 4: // get_prop_len
		length, err := vm.Objects.PropertyLengthAt(zaddr.ByteAddr(a))
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, uint16(length))

	case 5: // inc
		v := uint8(a)
		cur, err := vm.readVariable(v, true)
		if err != nil {
			return nil, err
		}
		if err := vm.writeVariable(v, cur+1, true); err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 6: // dec
		v := uint8(a)
		cur, err := vm.readVariable(v, true)
		if err != nil {
			return nil, err
		}
		if err := vm.writeVariable(v, cur-1, true); err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 7: // print_addr
		if _, err := vm.printZString(zaddr.ByteAddr(a)); err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 8: // call_1s
		return vm.buildCall(instr, a, nil, RoutineFunction), nil

	case 9: // remove_obj
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		if err := obj.Unlink(); err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 10: // print_obj
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		name, err := obj.Name()
		if err != nil {
			return nil, err
		}
		vm.output(name)
		return ActionContinue{PC: instr.NextPC}, nil

	case 11: // ret
		return ActionReturn{Value: a}, nil

	case 12: // jump
		offset := int32(int16(a))
		target := instr.NextPC.Add(uint32(offset - 2))
		return ActionContinue{PC: target}, nil

	case 13: // print_paddr
		addr := vm.resolvePacked(a, zaddr.PackedString)
		if _, err := vm.printZString(addr); err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 14: // load
		v, err := vm.readVariable(uint8(a), true)
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, v)

	case 15: // not (V1-4) / call_1n (V5+)
		if vm.Core.Version < zaddr.V5 {
			return ActionContinue{PC: instr.NextPC}, vm.store(instr, ^a)
		}
		return vm.buildCall(instr, a, nil, RoutineProcedure), nil

	default:
		return nil, fmt.Errorf("zvm: 1OP opcode %d at %#x: %w", instr.Opcode, instr.PC, ErrUnsupportedOpcode)
	}
}
