package zobject

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
	"github.com/kestrelgames/zfic/zstring"
)

// Object is a single entry in a Tree's object table.
type Object struct {
	tree *Tree
	id   uint16
	base zaddr.ByteAddr
}

// ID returns this object's 1-based identifier.
func (o *Object) ID() uint16 {
	return o.id
}

// Attribute reports whether attribute bit id is set. Attributes are
// numbered MSB-first starting at the object entry's first byte.
func (o *Object) Attribute(id int) (bool, error) {
	if id < 0 || id >= o.tree.layout.attributeCount {
		return false, fmt.Errorf("zobject: attribute %d out of range for this version", id)
	}
	bit := o.base.ToBit() + zaddr.BitAddr(id)
	return o.tree.core.BitAt(bit)
}

// SetAttribute sets attribute bit id.
func (o *Object) SetAttribute(id int) error {
	return o.writeAttribute(id, true)
}

// ClearAttribute clears attribute bit id.
func (o *Object) ClearAttribute(id int) error {
	return o.writeAttribute(id, false)
}

func (o *Object) writeAttribute(id int, value bool) error {
	if id < 0 || id >= o.tree.layout.attributeCount {
		return fmt.Errorf("zobject: attribute %d out of range for this version", id)
	}
	bit := o.base.ToBit() + zaddr.BitAddr(id)
	return o.tree.core.WriteBitAt(bit, value)
}

// Parent, Sibling and Child return 0 when the object has none in that
// position - object ID 0 is never a valid object, so it doubles as "none".
func (o *Object) Parent() (uint16, error) {
	return o.readLink(o.tree.layout.parentOffset)
}

func (o *Object) Sibling() (uint16, error) {
	return o.readLink(o.tree.layout.siblingOffset)
}

func (o *Object) Child() (uint16, error) {
	return o.readLink(o.tree.layout.childOffset)
}

func (o *Object) readLink(offset uint32) (uint16, error) {
	addr := o.base.Add(offset)
	if o.tree.layout.linksAreWords {
		return o.tree.core.WordAt(addr)
	}
	b, err := o.tree.core.ByteAt(addr)
	return uint16(b), err
}

func (o *Object) SetParent(id uint16) error  { return o.writeLink(o.tree.layout.parentOffset, id) }
func (o *Object) SetSibling(id uint16) error { return o.writeLink(o.tree.layout.siblingOffset, id) }
func (o *Object) SetChild(id uint16) error   { return o.writeLink(o.tree.layout.childOffset, id) }

func (o *Object) writeLink(offset uint32, id uint16) error {
	addr := o.base.Add(offset)
	if o.tree.layout.linksAreWords {
		return o.tree.core.WriteWordAt(addr, id)
	}
	return o.tree.core.WriteByteAt(addr, uint8(id))
}

// PropertyTableAddr returns the address of this object's property table
// (its short name length byte).
func (o *Object) PropertyTableAddr() (zaddr.ByteAddr, error) {
	addr := o.base.Add(o.tree.layout.propTableOffset)
	w, err := o.tree.core.WordAt(addr)
	return zaddr.ByteAddr(w), err
}

// Name decodes the object's short name, the z-string stored just before its
// property list.
func (o *Object) Name() (string, error) {
	propTableAddr, err := o.PropertyTableAddr()
	if err != nil {
		return "", err
	}
	name, _, err := zstring.Decode(o.tree.core, o.tree.version, o.tree.alphabets(), o.tree.unicode(), o.tree.abbrevBase, propTableAddr.Add(1))
	return name, err
}

// propertiesStart returns the address of the first property-size byte,
// just past the name.
func (o *Object) propertiesStart() (zaddr.ByteAddr, error) {
	propTableAddr, err := o.PropertyTableAddr()
	if err != nil {
		return 0, err
	}
	nameWords, err := o.tree.core.ByteAt(propTableAddr)
	if err != nil {
		return 0, err
	}
	return propTableAddr.Add(1 + uint32(nameWords)*2), nil
}

// Unlink removes o from its parent's child chain, the first half of the
// move/remove_obj opcode pair. It is a no-op if o has no parent.
func (o *Object) Unlink() error {
	parentID, err := o.Parent()
	if err != nil || parentID == 0 {
		return err
	}
	parent, err := o.tree.Object(parentID)
	if err != nil {
		return err
	}
	sibling, err := o.Sibling()
	if err != nil {
		return err
	}

	firstChild, err := parent.Child()
	if err != nil {
		return err
	}
	if firstChild == o.id {
		if err := parent.SetChild(sibling); err != nil {
			return err
		}
	} else {
		prev, err := o.tree.Object(firstChild)
		if err != nil {
			return err
		}
		seen := map[uint16]bool{}
		for {
			if seen[prev.id] {
				return ErrCycle
			}
			seen[prev.id] = true
			next, err := prev.Sibling()
			if err != nil {
				return err
			}
			if next == o.id {
				if err := prev.SetSibling(sibling); err != nil {
					return err
				}
				break
			}
			if next == 0 {
				break
			}
			prev, err = o.tree.Object(next)
			if err != nil {
				return err
			}
		}
	}

	if err := o.SetParent(0); err != nil {
		return err
	}
	return o.SetSibling(0)
}

// MoveTo unlinks o from wherever it is and makes it the first child of
// newParent, the semantics of the insert_obj opcode.
func (o *Object) MoveTo(newParent *Object) error {
	if err := o.Unlink(); err != nil {
		return err
	}
	oldFirstChild, err := newParent.Child()
	if err != nil {
		return err
	}
	if err := o.SetSibling(oldFirstChild); err != nil {
		return err
	}
	if err := o.SetParent(newParent.id); err != nil {
		return err
	}
	return newParent.SetChild(o.id)
}
