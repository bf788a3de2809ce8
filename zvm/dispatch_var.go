package zvm

import (
	"fmt"
	"strconv"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zdict"
	"github.com/kestrelgames/zfic/zhost"
	"github.com/kestrelgames/zfic/zinstr"
	"github.com/kestrelgames/zfic/ztable"
)

func (vm *VM) dispatchVAR(instr zinstr.Instruction) (Action, error) {
	values, err := vm.operandValues(instr.Operands)
	if err != nil {
		return nil, err
	}

	switch instr.Opcode {
	case 0: // call / call_vs
		return vm.buildCall(instr, values[0], values[1:], RoutineFunction), nil

	case 1: // storew
		addr := zaddr.ByteAddr(values[0]).Add(2 * uint32(values[1]))
		return ActionContinue{PC: instr.NextPC}, vm.Core.WriteWordAt(addr, values[2])

	case 2: // storeb
		addr := zaddr.ByteAddr(values[0]).Add(uint32(values[1]))
		return ActionContinue{PC: instr.NextPC}, vm.Core.WriteByteAt(addr, uint8(values[2]))

	case 3: // put_prop
		obj, err := vm.Objects.Object(values[0])
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, obj.SetPropertyValue(uint8(values[1]), values[2])

	case 4: // sread / aread
		var parseBuffer zaddr.ByteAddr
		if len(values) > 1 {
			parseBuffer = zaddr.ByteAddr(values[1])
		}
		terminator, err := vm.doRead(zaddr.ByteAddr(values[0]), parseBuffer)
		if err != nil {
			return nil, err
		}
		if vm.Core.Version >= zaddr.V5 {
			return ActionContinue{PC: instr.NextPC}, vm.store(instr, terminator)
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 5: // print_char
		if values[0] != 0 {
			vm.output(string(rune(values[0])))
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 6: // print_num
		vm.output(strconv.Itoa(int(int16(values[0]))))
		return ActionContinue{PC: instr.NextPC}, nil

	case 7: // random
		n := int16(values[0])
		var result uint16
		switch {
		case n < 0:
			vm.Host.RandomSeed(int64(n))
		case n == 0:
			vm.Host.RandomSeed(0)
		default:
			result = uint16(vm.Host.RandomNext(int(n)))
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, result)

	case 8: // push
		vm.currentFrame().push(values[0])
		return ActionContinue{PC: instr.NextPC}, nil

	case 9: // pull
		v, ok := vm.currentFrame().pop()
		if !ok {
			vm.Host.Warnf("pull: stack underflow at %#x", instr.PC)
		}
		return ActionContinue{PC: instr.NextPC}, vm.writeVariable(uint8(values[0]), v, true)

	case 10: // split_window
		vm.Host.SplitWindow(int(values[0]))
		return ActionContinue{PC: instr.NextPC}, nil

	case 11: // set_window
		vm.Host.SetWindow(int(values[0]))
		return ActionContinue{PC: instr.NextPC}, nil

	case 12: // call_vs2
		return vm.buildCall(instr, values[0], values[1:], RoutineFunction), nil

	case 13: // erase_window
		vm.Host.EraseWindow(int(int16(values[0])))
		return ActionContinue{PC: instr.NextPC}, nil

	case 14: // erase_line
		vm.Host.EraseLine()
		return ActionContinue{PC: instr.NextPC}, nil

	case 15: // set_cursor
		vm.Host.SetCursor(int(values[0]), int(values[1]))
		return ActionContinue{PC: instr.NextPC}, nil

	case 16: // get_cursor
		return ActionContinue{PC: instr.NextPC}, nil

	case 17: // set_text_style
		vm.Host.SetTextStyle(zhost.TextStyle(values[0]))
		return ActionContinue{PC: instr.NextPC}, nil

	case 18: // buffer_mode
		vm.Host.SetBufferMode(values[0] != 0)
		return ActionContinue{PC: instr.NextPC}, nil

	case 19: // output_stream
		return ActionContinue{PC: instr.NextPC}, vm.setOutputStream(int16(values[0]), values)

	case 20: // input_stream
		return ActionContinue{PC: instr.NextPC}, nil

	case 21: // sound_effect
		effect := zhost.SoundEffect{Number: int(values[0])}
		if len(values) > 1 {
			effect.Effect = int(values[1])
		}
		if len(values) > 2 {
			effect.Volume = int(values[2] & 0xff)
			effect.Repeats = int(values[2] >> 8)
		}
		vm.Host.SoundEffect(effect)
		return ActionContinue{PC: instr.NextPC}, nil

	case 22: // read_char
		c, err := vm.Host.ReadChar()
		if err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, uint16(c))

	case 23: // scan_table
		test := values[0]
		table := zaddr.ByteAddr(values[1])
		count := values[2]
		form := uint16(0x82)
		if len(values) > 3 {
			form = values[3]
		}
		found, ok, err := ztable.Scan(vm.Core, table, test, int(count), scanTableFieldLen(form))
		if err != nil {
			return nil, err
		}
		if err := vm.store(instr, uint16(found)); err != nil {
			return nil, err
		}
		return vm.branchAction(instr, ok), nil

	case 24: // not
		return ActionContinue{PC: instr.NextPC}, vm.store(instr, ^values[0])

	case 25: // call_vn
		return vm.buildCall(instr, values[0], values[1:], RoutineProcedure), nil

	case 26: // call_vn2
		return vm.buildCall(instr, values[0], values[1:], RoutineProcedure), nil

	case 27: // tokenise
		dictionary := vm.Dict
		leaveBlank := false
		if len(values) > 2 && values[2] != 0 {
			d, err := zdict.Load(vm.Core, vm.Core.Version, zaddr.ByteAddr(values[2]))
			if err != nil {
				return nil, err
			}
			dictionary = d
		}
		if len(values) > 3 {
			leaveBlank = values[3] != 0
		}
		if err := vm.tokenise(zaddr.ByteAddr(values[0]), zaddr.ByteAddr(values[1]), dictionary, leaveBlank); err != nil {
			return nil, err
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 28: // encode_text
		return nil, fmt.Errorf("zvm: encode_text: %w", ErrUnsupportedOpcode)

	case 29: // copy_table
		size := int16(values[2])
		return ActionContinue{PC: instr.NextPC}, ztable.Copy(vm.Core, zaddr.ByteAddr(values[0]), zaddr.ByteAddr(values[1]), int(size))

	case 30: // print_table
		width := int(values[1])
		height := 1
		skip := 0
		if len(values) > 2 {
			height = int(values[2])
		}
		if len(values) > 3 {
			skip = int(values[3])
		}
		base := zaddr.ByteAddr(values[0])
		for row := 0; row < height; row++ {
			if row > 0 {
				vm.output("\n")
			}
			cells, err := ztable.PrintRow(vm.Core, base.Add(uint32(row*(width+skip))), width, 1)
			if err != nil {
				return nil, err
			}
			for _, c := range cells {
				vm.output(string(rune(c)))
			}
		}
		return ActionContinue{PC: instr.NextPC}, nil

	case 31: // check_arg_count
		return vm.branchAction(instr, int(values[0]) <= vm.currentFrame().ArgsSupplied), nil

	default:
		return nil, fmt.Errorf("zvm: VAR opcode %d at %#x: %w", instr.Opcode, instr.PC, ErrUnsupportedOpcode)
	}
}

// setOutputStream implements output_stream: positive stream numbers
// enable a stream, negative disable it; stream 3 nests memory-stream
// writers on a stack (opening one suspends screen/transcript output
// until it closes), per spec.md's output-stream semantics.
func (vm *VM) setOutputStream(stream int16, operands []uint16) error {
	switch stream {
	case 1, -1:
		vm.streams.Screen = stream > 0
	case 2, -2:
		vm.streams.Transcript = stream > 0
	case 3:
		if len(operands) < 2 {
			return fmt.Errorf("zvm: output_stream 3 requires a table address operand")
		}
		base := zaddr.ByteAddr(operands[1])
		vm.streams.Memory = append(vm.streams.Memory, memoryStream{base: base, ptr: base.Add(2)})
	case -3:
		if n := len(vm.streams.Memory); n > 0 {
			top := vm.streams.Memory[n-1]
			length := uint16(uint32(top.ptr) - uint32(top.base) - 2)
			if err := vm.Core.WriteWordAt(top.base, length); err != nil {
				return err
			}
			vm.streams.Memory = vm.streams.Memory[:n-1]
		}
	case 4, -4:
		vm.streams.Command = stream > 0
	}
	return nil
}
