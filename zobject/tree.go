// Package zobject implements the object tree: attributes, the
// parent/sibling/child hierarchy, and property tables.
package zobject

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zcore"
	"github.com/kestrelgames/zfic/zstring"
)

// layout bundles the version-dependent sizes that differ between V1-3 and
// V4+ object tables.
type layout struct {
	entrySize        uint32
	attributeCount   int
	propertyDefaults uint32
	parentOffset     uint32
	siblingOffset    uint32
	childOffset      uint32
	propTableOffset  uint32
	linksAreWords    bool
}

func layoutFor(version zaddr.Version) layout {
	if version <= zaddr.V3 {
		return layout{
			entrySize:        9,
			attributeCount:   32,
			propertyDefaults: 31,
			parentOffset:     4,
			siblingOffset:    5,
			childOffset:      6,
			propTableOffset:  7,
			linksAreWords:    false,
		}
	}
	return layout{
		entrySize:        14,
		attributeCount:   48,
		propertyDefaults: 63,
		parentOffset:     6,
		siblingOffset:    8,
		childOffset:      10,
		propTableOffset:  12,
		linksAreWords:    true,
	}
}

// Option configures Load.
type Option func(*Tree)

// WithObjectCount overrides the heuristic object count Load would otherwise
// compute from the gap between the object table and the first property
// table. Use this for stories whose layout defeats the heuristic (spec.md
// notes object count is accepted convention, not a stored field).
func WithObjectCount(count uint16) Option {
	return func(t *Tree) { t.count = count }
}

// Tree is the object table of a loaded story.
type Tree struct {
	core           *zcore.Core
	version        zaddr.Version
	tableBase      zaddr.ByteAddr
	objectsBase    zaddr.ByteAddr
	abbrevBase     zaddr.ByteAddr
	alphabetTables zstring.Alphabets
	unicodeTable   zstring.UnicodeTable
	layout         layout
	count          uint16
}

// Load parses the object table header and computes the object count. The
// alphabets, unicode table and abbreviation table base are needed only to
// decode object short names on demand.
func Load(core *zcore.Core, version zaddr.Version, tableBase zaddr.ByteAddr, alphabets zstring.Alphabets, unicode zstring.UnicodeTable, abbrevBase zaddr.ByteAddr, opts ...Option) (*Tree, error) {
	l := layoutFor(version)
	objectsBase := tableBase.Add(l.propertyDefaults * 2)

	t := &Tree{
		core:           core,
		version:        version,
		tableBase:      tableBase,
		objectsBase:    objectsBase,
		abbrevBase:     abbrevBase,
		alphabetTables: alphabets,
		unicodeTable:   unicode,
		layout:         l,
	}

	for _, opt := range opts {
		opt(t)
	}
	if t.count == 0 {
		count, err := t.inferCount()
		if err != nil {
			return nil, err
		}
		t.count = count
	}
	return t, nil
}

// inferCount derives the object count from the distance between the object
// table's start and the first object's property table, the same heuristic
// every Z-machine implementation uses since the format carries no explicit
// object count field.
func (t *Tree) inferCount() (uint16, error) {
	first, err := t.objectUnchecked(1)
	if err != nil {
		return 0, err
	}
	propAddr, err := first.PropertyTableAddr()
	if err != nil {
		return 0, err
	}
	if uint32(propAddr) < uint32(t.objectsBase) {
		return 0, fmt.Errorf("zobject: property table for object 1 precedes the object table")
	}
	gap := uint32(propAddr) - uint32(t.objectsBase)
	return uint16(gap / t.layout.entrySize), nil
}

// Count returns the number of objects this tree holds.
func (t *Tree) Count() uint16 {
	return t.count
}

// DefaultProperty returns the default value for a property ID that no
// object overrides (get_prop falls back to this when an object lacks the
// property entirely).
func (t *Tree) DefaultProperty(propertyID uint8) (uint16, error) {
	if propertyID == 0 || uint32(propertyID) > t.layout.propertyDefaults {
		return 0, fmt.Errorf("zobject: property id %d has no default slot: %w", propertyID, ErrNoSuchObject)
	}
	addr := t.tableBase.Add(uint32(propertyID-1) * 2)
	return t.core.WordAt(addr)
}

func (t *Tree) baseAddr(id uint16) zaddr.ByteAddr {
	return t.objectsBase.Add(uint32(id-1) * t.layout.entrySize)
}

// Object returns the object with the given 1-based ID.
func (t *Tree) Object(id uint16) (*Object, error) {
	if id == 0 || id > t.count {
		return nil, fmt.Errorf("zobject: id %d: %w", id, ErrNoSuchObject)
	}
	return t.objectUnchecked(id)
}

func (t *Tree) objectUnchecked(id uint16) (*Object, error) {
	return &Object{tree: t, id: id, base: t.baseAddr(id)}, nil
}

// AttributeCount is 32 for V1-3, 48 for V4+.
func (t *Tree) AttributeCount() int {
	return t.layout.attributeCount
}

func (t *Tree) alphabets() zstring.Alphabets {
	return t.alphabetTables
}

func (t *Tree) unicode() zstring.UnicodeTable {
	return t.unicodeTable
}
