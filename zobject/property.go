package zobject

import (
	"fmt"

	"github.com/kestrelgames/zfic/zaddr"
)

// Property is one entry from an object's property table.
type Property struct {
	ID          uint8
	Address     zaddr.ByteAddr // address of the size byte(s)
	DataAddress zaddr.ByteAddr
	Length      int
}

// Property returns the property with the given ID, or ok=false if the
// object doesn't override it.
func (o *Object) Property(id uint8) (Property, bool, error) {
	addr, err := o.propertiesStart()
	if err != nil {
		return Property{}, false, err
	}
	for {
		prop, next, err := o.readPropertyHeader(addr)
		if err != nil {
			return Property{}, false, err
		}
		if prop.ID == 0 {
			return Property{}, false, nil
		}
		if prop.ID == id {
			return prop, true, nil
		}
		if prop.ID < id {
			// Properties are stored in descending ID order; once we pass
			// below the target it cannot appear later.
			return Property{}, false, nil
		}
		addr = next
	}
}

// PropertyValue returns a property's value widened to a word, the behaviour
// get_prop needs: 1-byte properties read as a sign-extended byte, 2-byte
// properties as a big-endian word, and any other length as the first word
// of the property data; a caller that needs get_prop's "length must be 1
// or 2" check has to reject those lengths itself.
func (o *Object) PropertyValue(id uint8) (uint16, error) {
	prop, ok, err := o.Property(id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return o.tree.DefaultProperty(id)
	}
	switch prop.Length {
	case 1:
		b, err := o.tree.core.ByteAt(prop.DataAddress)
		return uint16(int16(int8(b))), err
	default:
		return o.tree.core.WordAt(prop.DataAddress)
	}
}

// SetPropertyValue implements put_prop: the property must already exist on
// the object (put_prop never creates or extends one) and must be 1 or 2
// bytes long.
func (o *Object) SetPropertyValue(id uint8, value uint16) error {
	prop, ok, err := o.Property(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("zobject: object %d has no property %d to set", o.id, id)
	}
	switch prop.Length {
	case 1:
		return o.tree.core.WriteByteAt(prop.DataAddress, uint8(value))
	case 2:
		return o.tree.core.WriteWordAt(prop.DataAddress, value)
	default:
		return fmt.Errorf("zobject: property %d on object %d has length %d, put_prop requires 1 or 2", id, o.id, prop.Length)
	}
}

// PropertyLengthAt implements get_prop_len: given the address of a
// property's data (as returned by get_prop_addr), it works backwards to
// the preceding size byte(s) to recover the property's length. Address 0
// is defined to mean length 0, the value some story files rely on.
func (t *Tree) PropertyLengthAt(addr zaddr.ByteAddr) (int, error) {
	if addr == 0 {
		return 0, nil
	}
	prevByte, err := t.core.ByteAt(addr.Add(^uint32(0)))
	if err != nil {
		return 0, err
	}
	if !t.layout.linksAreWords {
		return int(prevByte>>5) + 1, nil
	}
	if prevByte&0x80 != 0 {
		length := int(prevByte & 0x3f)
		if length == 0 {
			length = 64
		}
		return length, nil
	}
	return int((prevByte>>6)&1) + 1, nil
}

// NextProperty implements get_next_prop: given a property ID (0 meaning
// "the first property"), it returns the ID of the property stored after
// it, or 0 if there is none.
func (o *Object) NextProperty(after uint8) (uint8, error) {
	addr, err := o.propertiesStart()
	if err != nil {
		return 0, err
	}
	for {
		prop, next, err := o.readPropertyHeader(addr)
		if err != nil {
			return 0, err
		}
		if prop.ID == 0 {
			if after == 0 {
				return 0, nil
			}
			return 0, fmt.Errorf("zobject: object %d has no property %d to follow", o.id, after)
		}
		if after == 0 {
			return prop.ID, nil
		}
		if prop.ID == after {
			nextProp, _, err := o.readPropertyHeader(next)
			if err != nil {
				return 0, err
			}
			return nextProp.ID, nil
		}
		addr = next
	}
}

// readPropertyHeader decodes the size byte(s) at addr and returns the
// property they describe along with the address the following property's
// header starts at. An ID of 0 signals the end of the table.
func (o *Object) readPropertyHeader(addr zaddr.ByteAddr) (Property, zaddr.ByteAddr, error) {
	sizeByte, err := o.tree.core.ByteAt(addr)
	if err != nil {
		return Property{}, 0, err
	}
	if sizeByte == 0 {
		return Property{ID: 0, Address: addr}, addr.Add(1), nil
	}

	if !o.tree.layout.linksAreWords {
		id := sizeByte & 0x1f
		length := int(sizeByte>>5) + 1
		dataAddr := addr.Add(1)
		return Property{ID: id, Address: addr, DataAddress: dataAddr, Length: length}, dataAddr.Add(uint32(length)), nil
	}

	id := sizeByte & 0x3f
	if sizeByte&0x80 == 0 {
		length := 1
		if sizeByte&0x40 != 0 {
			length = 2
		}
		dataAddr := addr.Add(1)
		return Property{ID: id, Address: addr, DataAddress: dataAddr, Length: length}, dataAddr.Add(uint32(length)), nil
	}

	lengthByte, err := o.tree.core.ByteAt(addr.Add(1))
	if err != nil {
		return Property{}, 0, err
	}
	length := int(lengthByte & 0x3f)
	if length == 0 {
		length = 64
	}
	dataAddr := addr.Add(2)
	return Property{ID: id, Address: addr, DataAddress: dataAddr, Length: length}, dataAddr.Add(uint32(length)), nil
}
