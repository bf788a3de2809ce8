package zvm

import (
	"encoding/binary"
	"testing"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zhost"
)

// Layout of the minimal V3 story image used across this package's tests.
// Every structure lives well inside dynamic memory (staticMemoryBase is
// past everything below) so test code can freely write to it.
const (
	fixtureDictionaryBase = 0x40
	fixtureObjectBase     = 0x50
	fixtureObject1Props   = 0xA0
	fixtureObject2Props   = 0xB0
	fixtureGlobalsBase    = 0x100
	fixtureCodeBase       = 0x200
	fixtureStaticBase     = 0x300
	fixtureImageLen       = 0x400
)

// newFixtureImage builds a tiny but well-formed V3 story: a dictionary
// header with one separator and no words, a two-object tree (object 1 is the
// parent of object 2), and an otherwise blank dynamic memory region
// starting at fixtureCodeBase for tests to write instructions into.
func newFixtureImage() []uint8 {
	img := make([]uint8, fixtureImageLen)

	img[0x00] = 3 // version
	binary.BigEndian.PutUint16(img[0x06:], fixtureCodeBase)       // initial PC
	binary.BigEndian.PutUint16(img[0x08:], fixtureDictionaryBase) // dictionary
	binary.BigEndian.PutUint16(img[0x0a:], fixtureObjectBase)     // object table
	binary.BigEndian.PutUint16(img[0x0c:], fixtureGlobalsBase)    // globals
	binary.BigEndian.PutUint16(img[0x0e:], fixtureStaticBase)     // static memory base

	// Dictionary: one separator ('.'), entry size 4, zero entries.
	img[fixtureDictionaryBase+0] = 1
	img[fixtureDictionaryBase+1] = '.'
	img[fixtureDictionaryBase+2] = 4
	binary.BigEndian.PutUint16(img[fixtureDictionaryBase+3:], 0)

	// Object table: 31 property-default words, then two 9-byte entries.
	objectsBase := fixtureObjectBase + 31*2 // 0x8e
	obj1 := objectsBase
	obj2 := objectsBase + 9

	img[obj1+0] = 0x04 // attribute 5 set
	img[obj1+4] = 0     // parent
	img[obj1+5] = 0     // sibling
	img[obj1+6] = 2     // child = object 2
	binary.BigEndian.PutUint16(img[obj1+7:], fixtureObject1Props)

	img[obj2+4] = 1 // parent = object 1
	img[obj2+5] = 0 // sibling
	img[obj2+6] = 0 // child
	binary.BigEndian.PutUint16(img[obj2+7:], fixtureObject2Props)

	// Object 1's property table: no name, property 6 (len 1, value 5),
	// property 3 (len 2, value 0x1234), descending order, then terminator.
	p := fixtureObject1Props
	img[p] = 0 // name length (words)
	p++
	img[p] = ((1 - 1) << 5) | 6
	img[p+1] = 0x05
	p += 2
	img[p] = ((2 - 1) << 5) | 3
	binary.BigEndian.PutUint16(img[p+1:], 0x1234)
	p += 3
	img[p] = 0 // terminator

	// Object 2's property table: no name, no properties.
	img[fixtureObject2Props] = 0
	img[fixtureObject2Props+1] = 0

	return img
}

// newFixtureVM loads the fixture image with a fresh MemoryHost.
func newFixtureVM(t *testing.T) (*VM, *zhost.MemoryHost) {
	t.Helper()
	host := zhost.NewMemoryHost()
	vm, err := New(newFixtureImage(), host)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return vm, host
}

// writeCode copies bytes into the image at fixtureCodeBase and points the
// current frame's PC there, for tests that decode-and-step real bytecode.
func (vm *VM) writeCode(t *testing.T, bytes []uint8) zaddr.ByteAddr {
	t.Helper()
	for i, b := range bytes {
		if err := vm.Core.WriteByteAt(zaddr.ByteAddr(fixtureCodeBase+i), b); err != nil {
			t.Fatalf("writeCode: %v", err)
		}
	}
	vm.currentFrame().PC = zaddr.ByteAddr(fixtureCodeBase)
	return zaddr.ByteAddr(fixtureCodeBase)
}
