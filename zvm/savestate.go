package zvm

import (
	"github.com/kestrelgames/zfic/zaddr"
)

// savedState is a full snapshot of a running instance: dynamic memory plus
// the call stack. It backs both save/restore (persisted through Host) and
// save_undo/restore_undo (kept in vm.undo), grounded on the teacher's
// savestates.go SaveState/serialize format ("GOZM"-prefixed).
type savedState struct {
	staticMemoryBase uint16
	dynamicMemory    []uint8
	frames           []*Frame
}

func (vm *VM) captureState() savedState {
	dynamicMemory, _ := vm.Core.Slice(0, uint32(vm.Core.StaticMemoryBase))
	cp := make([]uint8, len(dynamicMemory))
	copy(cp, dynamicMemory)

	frames := make([]*Frame, len(vm.frames))
	for i, f := range vm.frames {
		frames[i] = cloneFrame(f)
	}

	return savedState{
		staticMemoryBase: uint16(vm.Core.StaticMemoryBase),
		dynamicMemory:    cp,
		frames:           frames,
	}
}

func (vm *VM) applyState(state savedState) bool {
	if state.staticMemoryBase != uint16(vm.Core.StaticMemoryBase) {
		return false
	}
	for i, b := range state.dynamicMemory {
		if err := vm.Core.WriteByteAt(zaddr.ByteAddr(i), b); err != nil {
			return false
		}
	}
	frames := make([]*Frame, len(state.frames))
	for i, f := range state.frames {
		frames[i] = cloneFrame(f)
	}
	vm.frames = frames
	return true
}

func (vm *VM) saveUndo() {
	vm.undo = append(vm.undo, vm.captureState())
}

// restoreUndo returns 2 on success (the value restore_undo stores) or 0 if
// there is no saved state or it didn't apply.
func (vm *VM) restoreUndo() uint16 {
	if len(vm.undo) == 0 {
		return 0
	}
	state := vm.undo[len(vm.undo)-1]
	vm.undo = vm.undo[:len(vm.undo)-1]
	if !vm.applyState(state) {
		return 0
	}
	return 2
}

// saveGame serializes the instance and hands it to the Host to persist.
// It reports the standard's save-succeeded boolean, consumed by the
// branch (V1-V3) or store (V4+) the caller uses.
func (vm *VM) saveGame() (bool, error) {
	data := serializeSavedState(vm.captureState())
	return vm.Host.Save(data)
}

// restoreGame retrieves a save from the Host and applies it. A successful
// restore never returns to its own caller in the usual sense - execution
// resumes wherever the save was taken - so the driver continues from the
// restored frame stack, not the instruction after this one.
func (vm *VM) restoreGame() (bool, error) {
	data, ok, err := vm.Host.Restore()
	if err != nil || !ok {
		return false, err
	}
	state, ok := deserializeSavedState(data)
	if !ok {
		return false, nil
	}
	return vm.applyState(state), nil
}

// "GOZM" magic + staticBase(2) + dynamicMem + frameCount(2) + frames.
func serializeSavedState(s savedState) []byte {
	frameData := serializeFrames(s.frames)
	data := make([]byte, 4+2+len(s.dynamicMemory)+2+len(frameData))
	offset := 0

	copy(data[offset:], []byte("GOZM"))
	offset += 4

	data[offset] = byte(s.staticMemoryBase >> 8)
	data[offset+1] = byte(s.staticMemoryBase & 0xff)
	offset += 2

	copy(data[offset:], s.dynamicMemory)
	offset += len(s.dynamicMemory)

	data[offset] = byte(len(s.frames) >> 8)
	data[offset+1] = byte(len(s.frames))
	offset += 2

	copy(data[offset:], frameData)
	return data
}

func deserializeSavedState(data []byte) (savedState, bool) {
	if len(data) < 8 || string(data[0:4]) != "GOZM" {
		return savedState{}, false
	}
	offset := 4
	staticBase := uint16(data[offset])<<8 | uint16(data[offset+1])
	offset += 2

	if len(data) < offset+int(staticBase)+2 {
		return savedState{}, false
	}
	dynamicMem := make([]uint8, staticBase)
	copy(dynamicMem, data[offset:offset+int(staticBase)])
	offset += int(staticBase)

	frameCount := int(data[offset])<<8 | int(data[offset+1])
	offset += 2

	frames, ok := deserializeFrames(data[offset:], frameCount)
	if !ok {
		return savedState{}, false
	}

	return savedState{staticMemoryBase: staticBase, dynamicMemory: dynamicMem, frames: frames}, true
}

// Frame format: pc(4) + kind(1) + hasReturnVar(1) + returnVar(1) +
// argsSupplied(2) + localsCount(2) + locals + stackSize(2) + stack.
func serializeFrames(frames []*Frame) []byte {
	var out []byte
	for _, f := range frames {
		size := 4 + 1 + 1 + 1 + 2 + 2 + len(f.Locals)*2 + 2 + len(f.Stack)*2
		data := make([]byte, size)
		offset := 0

		pc := uint32(f.PC)
		data[offset] = byte(pc >> 24)
		data[offset+1] = byte(pc >> 16)
		data[offset+2] = byte(pc >> 8)
		data[offset+3] = byte(pc)
		offset += 4

		data[offset] = byte(f.Kind)
		offset++

		if f.HasReturnVar {
			data[offset] = 1
		}
		offset++
		data[offset] = f.ReturnVar
		offset++

		data[offset] = byte(f.ArgsSupplied >> 8)
		data[offset+1] = byte(f.ArgsSupplied)
		offset += 2

		data[offset] = byte(len(f.Locals) >> 8)
		data[offset+1] = byte(len(f.Locals))
		offset += 2
		for _, local := range f.Locals {
			data[offset] = byte(local >> 8)
			data[offset+1] = byte(local)
			offset += 2
		}

		data[offset] = byte(len(f.Stack) >> 8)
		data[offset+1] = byte(len(f.Stack))
		offset += 2
		for _, v := range f.Stack {
			data[offset] = byte(v >> 8)
			data[offset+1] = byte(v)
			offset += 2
		}

		out = append(out, data...)
	}
	return out
}

func deserializeFrames(data []byte, frameCount int) ([]*Frame, bool) {
	frames := make([]*Frame, 0, frameCount)
	offset := 0

	for i := 0; i < frameCount; i++ {
		if offset+9 > len(data) {
			return nil, false
		}
		f := &Frame{}
		f.PC = zaddr.ByteAddr(uint32(data[offset])<<24 | uint32(data[offset+1])<<16 |
			uint32(data[offset+2])<<8 | uint32(data[offset+3]))
		offset += 4

		f.Kind = RoutineKind(data[offset])
		offset++
		f.HasReturnVar = data[offset] != 0
		offset++
		f.ReturnVar = data[offset]
		offset++

		f.ArgsSupplied = int(data[offset])<<8 | int(data[offset+1])
		offset += 2

		if offset+2 > len(data) {
			return nil, false
		}
		localCount := int(data[offset])<<8 | int(data[offset+1])
		offset += 2
		if offset+localCount*2 > len(data) {
			return nil, false
		}
		f.Locals = make([]uint16, localCount)
		for j := 0; j < localCount; j++ {
			f.Locals[j] = uint16(data[offset])<<8 | uint16(data[offset+1])
			offset += 2
		}

		if offset+2 > len(data) {
			return nil, false
		}
		stackSize := int(data[offset])<<8 | int(data[offset+1])
		offset += 2
		if offset+stackSize*2 > len(data) {
			return nil, false
		}
		f.Stack = make([]uint16, stackSize)
		for j := 0; j < stackSize; j++ {
			f.Stack[j] = uint16(data[offset])<<8 | uint16(data[offset+1])
			offset += 2
		}

		frames = append(frames, f)
	}

	return frames, true
}
