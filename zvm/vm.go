package zvm

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
	"github.com/kestrelgames/zfic/zdict"
	"github.com/kestrelgames/zfic/zhost"
	"github.com/kestrelgames/zfic/zinstr"
	"github.com/kestrelgames/zfic/zobject"
	"github.com/kestrelgames/zfic/zstring"
)

// Streams tracks which of the four Z-machine output streams are active, and
// the memory-stream write cursors (stream 3 nests - output_stream pushes a
// new one, -3 pops it), grounded on the teacher's zmachine.Streams.
type Streams struct {
	Screen     bool
	Transcript bool
	Memory     []memoryStream
	Command    bool
}

type memoryStream struct {
	base zaddr.ByteAddr
	ptr  zaddr.ByteAddr
}

// Option configures New.
type Option func(*VM)

// WithObjectCount overrides the object-count inference (zobject.WithObjectCount).
func WithObjectCount(count uint16) Option {
	return func(vm *VM) { vm.objectCountOverride = count }
}

// VM is one running instance of a story: the decoded structural views from
// zcore/zobject/zstring/zdict, the call stack, and the host collaborator
// it drives output through and reads input from.
type VM struct {
	Core       *zcore.Core
	Objects    *zobject.Tree
	Dict       *zdict.Dictionary
	Alphabets  zstring.Alphabets
	Unicode    zstring.UnicodeTable
	AbbrevBase zaddr.ByteAddr
	Host       zhost.Host

	frames  []*Frame
	undo    []savedState
	streams Streams

	objectCountOverride uint16
	originalImage       []uint8
}

// New loads a story image and builds the VM: header, alphabets, Unicode
// table, object tree, dictionary, and the first call frame at the story's
// initial PC (or, for V6, the packed main-routine address). Grounded on
// the teacher's zmachine.LoadRom.
func New(image []uint8, host zhost.Host, opts ...Option) (*VM, error) {
	core, err := zcore.Load(image)
	if err != nil {
		return nil, err
	}

	original := make([]uint8, len(image))
	copy(original, image)

	vm := &VM{Core: core, Host: host, originalImage: original}
	for _, opt := range opts {
		opt(vm)
	}

	vm.Alphabets = zstring.Default(core.Version)
	if core.AlphabetTableBase != 0 {
		raw, err := core.Slice(core.AlphabetTableBase, 78)
		if err == nil {
			if override, ok := zstring.WithOverride(raw); ok {
				vm.Alphabets = override
			}
		}
	}

	vm.Unicode = zstring.DefaultUnicodeTable()
	if core.UnicodeTableBase != 0 {
		n, err := core.ByteAt(core.UnicodeTableBase)
		if err == nil && n > 0 {
			raw, err := core.Slice(core.UnicodeTableBase, uint32(n)*2+1)
			if err == nil {
				if table, ok := zstring.ParseUnicodeTable(raw); ok {
					vm.Unicode = table
				}
			}
		}
	}

	vm.AbbrevBase = core.AbbreviationTableBase

	var objOpts []zobject.Option
	if vm.objectCountOverride != 0 {
		objOpts = append(objOpts, zobject.WithObjectCount(vm.objectCountOverride))
	}
	tree, err := zobject.Load(core, core.Version, core.ObjectTableBase, vm.Alphabets, vm.Unicode, vm.AbbrevBase, objOpts...)
	if err != nil {
		return nil, err
	}
	vm.Objects = tree

	dict, err := zdict.Load(core, core.Version, core.DictionaryBase)
	if err != nil {
		return nil, err
	}
	vm.Dict = dict

	vm.streams = Streams{Screen: true}

	initialPC := core.InitialPC
	if core.Version == zaddr.V6 {
		packed := zaddr.ResolvePacked(core.Version, uint16(core.InitialPC), zaddr.PackedRoutine, core.RoutinesOffset, core.StringsOffset)
		localCount, err := core.ByteAt(packed)
		if err != nil {
			return nil, err
		}
		frame := &Frame{PC: packed.Add(1), Locals: make([]uint16, localCount)}
		vm.frames = append(vm.frames, frame)
	} else {
		vm.frames = append(vm.frames, &Frame{PC: initialPC})
	}

	return vm, nil
}

func (vm *VM) currentFrame() *Frame {
	return vm.frames[len(vm.frames)-1]
}

func (vm *VM) resolvePacked(packed uint16, kind zaddr.PackedRefKind) zaddr.ByteAddr {
	return zaddr.ResolvePacked(vm.Core.Version, packed, kind, vm.Core.RoutinesOffset, vm.Core.StringsOffset)
}

// operandValue resolves an operand to its 16-bit contents: constants are
// returned verbatim, Variable operands are read through the current frame.
func (vm *VM) operandValue(operand zinstr.Operand) (uint16, error) {
	if operand.Type == zinstr.Variable {
		return vm.readVariable(uint8(operand.Value), false)
	}
	return operand.Value, nil
}

func (vm *VM) operandValues(operands []zinstr.Operand) ([]uint16, error) {
	values := make([]uint16, len(operands))
	for i, op := range operands {
		v, err := vm.operandValue(op)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// readVariable reads variable number v. indirect matters only for v == 0:
// the seven opcodes with indirect variable references (inc, dec, inc_chk,
// dec_chk, load, store, pull) read/write the top of the stack in place
// instead of popping it.
func (vm *VM) readVariable(v uint8, indirect bool) (uint16, error) {
	frame := vm.currentFrame()
	switch {
	case v == 0:
		var val uint16
		var ok bool
		if indirect {
			val, ok = frame.peek()
		} else {
			val, ok = frame.pop()
		}
		if !ok {
			vm.Host.Warnf("stack underflow reading variable 0 at pc %#x", frame.PC)
			return 0, nil
		}
		return val, nil
	case v < 16:
		idx := int(v) - 1
		if idx >= len(frame.Locals) {
			return 0, fmt.Errorf("zvm: local %d: frame has %d locals: %w", v, len(frame.Locals), ErrNoSuchLocal)
		}
		return frame.Locals[idx], nil
	default:
		addr := vm.Core.GlobalVariableBase.Add(uint32(v-16) * 2)
		return vm.Core.WordAt(addr)
	}
}

func (vm *VM) writeVariable(v uint8, value uint16, indirect bool) error {
	frame := vm.currentFrame()
	switch {
	case v == 0:
		if indirect {
			if _, ok := frame.pop(); !ok {
				vm.Host.Warnf("stack underflow writing variable 0 indirectly at pc %#x", frame.PC)
			}
		}
		frame.push(value)
		return nil
	case v < 16:
		idx := int(v) - 1
		if idx >= len(frame.Locals) {
			return fmt.Errorf("zvm: local %d: frame has %d locals: %w", v, len(frame.Locals), ErrNoSuchLocal)
		}
		frame.Locals[idx] = value
		return nil
	default:
		addr := vm.Core.GlobalVariableBase.Add(uint32(v-16) * 2)
		return vm.Core.WriteWordAt(addr, value)
	}
}

// store writes value to the instruction's decoded store variable, if the
// instruction has one.
func (vm *VM) store(instr zinstr.Instruction, value uint16) error {
	if !instr.Stores {
		return nil
	}
	return vm.writeVariable(instr.StoreVar, value, false)
}

// branchAction computes the Action a branch opcode should return, given
// its decoded Branch descriptor and the truth value the opcode tested.
func (vm *VM) branchAction(instr zinstr.Instruction, result bool) Action {
	if !instr.Branches {
		return ActionContinue{PC: instr.NextPC}
	}
	take := result == instr.Branch.OnTrue
	if !take {
		return ActionContinue{PC: instr.NextPC}
	}
	if instr.Branch.Special {
		return ActionReturn{Value: instr.Branch.Value}
	}
	return ActionContinue{PC: instr.Branch.Target}
}

// Step decodes and executes one instruction, returning false when the
// story has quit. All faults (decode or dispatch) surface as the returned
// error; the driver (Run, or a caller's own loop) decides what to do with
// them rather than this method panicking.
func (vm *VM) Step() (bool, error) {
	frame := vm.currentFrame()
	instr, err := zinstr.Decode(vm.Core, vm.Core.Version, frame.PC)
	if err != nil {
		return false, err
	}

	action, err := vm.dispatch(instr)
	if err != nil {
		return false, err
	}

	return vm.applyAction(frame, instr, action)
}

func (vm *VM) applyAction(frame *Frame, instr zinstr.Instruction, action Action) (bool, error) {
	switch a := action.(type) {
	case ActionContinue:
		frame.PC = a.PC
		return true, nil

	case ActionReturn:
		return true, vm.doReturn(a.Value)

	case ActionCall:
		// The caller resumes at NextPC once the callee eventually
		// returns; doCall never touches the caller's frame, so this is
		// the one place that has to do it.
		frame.PC = instr.NextPC
		return true, vm.doCall(a)

	case ActionQuit:
		return false, nil

	default:
		return false, fmt.Errorf("zvm: dispatch returned unknown action type %T", action)
	}
}

func (vm *VM) doReturn(value uint16) error {
	if len(vm.frames) == 0 {
		return ErrCallStackUnderflow
	}
	popped := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		// The outermost routine returned: nothing left to resume into.
		return ErrCallStackUnderflow
	}
	if popped.HasReturnVar {
		return vm.writeVariable(popped.ReturnVar, value, false)
	}
	return nil
}

// doCall pushes a new frame for a routine call. A target of 0 is the
// well-known "calling address 0" no-op: no frame is pushed, and a function
// call (one expecting a result) stores 0 immediately into the caller's
// frame instead.
func (vm *VM) doCall(a ActionCall) error {
	if a.Target == 0 {
		if a.HasReturn {
			return vm.writeVariable(a.ReturnVar, 0, false)
		}
		return nil
	}

	localCount, err := vm.Core.ByteAt(a.Target)
	if err != nil {
		return err
	}
	pc := a.Target.Add(1)
	locals := make([]uint16, localCount)

	if vm.Core.Version < zaddr.V5 {
		for i := 0; i < int(localCount); i++ {
			def, err := vm.Core.WordAt(pc)
			if err != nil {
				return err
			}
			locals[i] = def
			pc = pc.Add(2)
		}
	}
	for i := 0; i < len(a.Args) && i < len(locals); i++ {
		locals[i] = a.Args[i]
	}

	vm.frames = append(vm.frames, &Frame{
		PC:           pc,
		Locals:       locals,
		Kind:         a.Kind,
		ReturnVar:    a.ReturnVar,
		HasReturnVar: a.HasReturn,
		ArgsSupplied: len(a.Args),
	})
	return nil
}

// Run drives the story to completion (quit, or a fault). The Host is
// responsible for any presentation of an error to the user; Run just
// forwards it, per spec.md §7's "all faults surface to the execution
// driver".
func (vm *VM) Run() error {
	for {
		ok, err := vm.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// printZString decodes and emits the Z-string at addr, advancing past it by
// returning the number of octets consumed.
func (vm *VM) printZString(addr zaddr.ByteAddr) (uint32, error) {
	text, consumed, err := zstring.Decode(vm.Core, vm.Core.Version, vm.Alphabets, vm.Unicode, vm.AbbrevBase, addr)
	if err != nil {
		return 0, err
	}
	vm.output(text)
	return consumed, nil
}

// output routes text through the active output streams: memory streams (if
// any is open, they exclusively capture text per the standard), otherwise
// the screen and/or transcript.
func (vm *VM) output(text string) {
	if n := len(vm.streams.Memory); n > 0 {
		top := &vm.streams.Memory[n-1]
		for _, r := range text {
			_ = vm.Core.WriteByteAt(top.ptr, uint8(r))
			top.ptr = top.ptr.Add(1)
		}
		return
	}
	if vm.streams.Screen {
		vm.Host.Print(text)
	}
	if vm.streams.Transcript {
		vm.Host.Transcript(text)
	}
}

// Restart reloads the VM from the pristine story image captured at New,
// discarding the call stack, undo history, and any dynamic-memory writes.
// Per the standard, the transcript/fixed-font header bits survive a
// restart; everything else is as if the story had just been loaded.
func (vm *VM) Restart() error {
	current, err := vm.Core.WordAt(0x10)
	if err != nil {
		return err
	}
	fresh, err := New(vm.originalImage, vm.Host, optionsFor(vm)...)
	if err != nil {
		return err
	}
	flags2 := fresh.Core.Flags2&^0b11 | current&0b11
	if err := fresh.Core.WriteWordAt(0x10, flags2); err != nil {
		return err
	}
	fresh.Core.Flags2 = flags2
	*vm = *fresh
	return nil
}

func optionsFor(vm *VM) []Option {
	if vm.objectCountOverride == 0 {
		return nil
	}
	return []Option{WithObjectCount(vm.objectCountOverride)}
}

// scanTableFieldLen decodes scan_table's form operand: bit 7 set selects
// 2-byte fields, clear selects 1-byte fields. The low seven bits (the entry
// length) are not consulted, so each entry is one field long.
func scanTableFieldLen(form uint16) int {
	if form&0x80 != 0 {
		return 2
	}
	return 1
}
