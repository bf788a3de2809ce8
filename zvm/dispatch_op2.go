package zvm

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zinstr"
)

func (vm *VM) dispatchOP2(instr zinstr.Instruction) (Action, error) {
	values, err := vm.operandValues(instr.Operands)
	if err != nil {
		return nil, err
	}
	a := values[0]
	var b uint16
	if len(values) > 1 {
		b = values[1]
	}

	switch instr.Opcode {
	case 1: // je: a equals any of the following operands
		for _, v := range values[1:] {
			if a == v {
				return vm.branchAction(instr, true), nil
			}
		}
		return vm.branchAction(instr, false), nil

	case 2: // jl
		return vm.branchAction(instr, int16(a) < int16(b)), nil

	case 3: // jg
		return vm.branchAction(instr, int16(a) > int16(b)), nil

	case 4: // dec_chk
		v := uint8(a)
		cur, err := vm.readVariable(v, true)
		if err != nil {
			return nil, err
		}
		newValue := int16(cur) - 1
		if err := vm.writeVariable(v, uint16(newValue), true); err != nil {
			return nil, err
		}
		return vm.branchAction(instr, newValue < int16(b)), nil

	case 5: // inc_chk
		v := uint8(a)
		cur, err := vm.readVariable(v, true)
		if err != nil {
			return nil, err
		}
		newValue := int16(cur) + 1
		if err := vm.writeVariable(v, uint16(newValue), true); err != nil {
			return nil, err
		}
		return vm.branchAction(instr, newValue > int16(b)), nil

	case 6: // jin
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		parent, err := obj.Parent()
		if err != nil {
			return nil, err
		}
		return vm.branchAction(instr, parent == b), nil

	case 7: // test
		return vm.branchAction(instr, a&b == b), nil

	case 8: // or
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, a|b)

	case 9: // and
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, a&b)

	case 10: // test_attr
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		set, err := obj.Attribute(int(b))
		if err != nil {
			return nil, err
		}
		return vm.branchAction(instr, set), nil

	case 11: // set_attr
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, obj.SetAttribute(int(b))

	case 12: // clear_attr
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, obj.ClearAttribute(int(b))

	case 13: // store
		return ActionContinue{PC: instr.NextPC}, vm.writeVariable(uint8(a), b, true)

	case 14: // insert_obj
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		dest, err := vm.Objects.Object(b)
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, obj.MoveTo(dest)

	case 15: // loadw
		v, err := vm.Core.WordAt(zaddr.ByteAddr(a).Add(2 * uint32(b)))
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, v)

	case 16: // loadb
		v, err := vm.Core.ByteAt(zaddr.ByteAddr(a).Add(uint32(b)))
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, uint16(v))

	case 17: // get_prop
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		v, err := obj.PropertyValue(uint8(b))
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, v)

	case 18: // get_prop_addr
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		prop, ok, err := obj.Property(uint8(b))
		if err != nil {
			return nil, err
		}
		addr := zaddr.ByteAddr(0)
		if ok {
			addr = prop.DataAddress
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, uint16(addr))

	case 19: // get_next_prop
		obj, err := vm.Objects.Object(a)
		if err != nil {
			return nil, err
		}
		next, err := obj.NextProperty(uint8(b))
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, uint16(next))

	case 20: // add
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, a+b)

	case 21: // sub
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, a-b)

	case 22: // mul
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, a*b)

	case 23: // div
		if int16(b) == 0 {
			return nil, fmt.Errorf("zvm: div by zero at %#x", instr.PC)
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, uint16(int16(a)/int16(b)))

	case 24: // mod
		if int16(b) == 0 {
			return nil, fmt.Errorf("zvm: mod by zero at %#x", instr.PC)
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, uint16(int16(a)%int16(b)))

	case 25: // call_2s
		return vm.buildCall(instr, a, values[1:2], RoutineFunction), nil

	case 26: // call_2n
		return vm.buildCall(instr, a, values[1:2], RoutineProcedure), nil

	case 27: // set_colour
		fg := vm.resolveColour(a)
		bg := vm.resolveColour(b)
		vm.Host.SetColour(fg, bg, 0)
		return ActionContinue{PC: instr.NextPC}, nil

	case 28: // throw
		return nil, fmt.Errorf("zvm: throw: %w", ErrUnsupportedOpcode)

	default:
		return nil, fmt.Errorf("zvm: 2OP opcode %d at %#x: %w", instr.Opcode, instr.PC, ErrUnsupportedOpcode)
	}
}
