package lazytiff

import (
	"encoding/binary"
	"fmt"
)

type fieldState uint8

const (
	// stateLocal: the value fit in the 4 inline bytes and was decoded at
	// parse time; no I/O will ever be needed.
	stateLocal fieldState = iota
	// stateNotLoaded: the value lives at an offset in the file and has not
	// been read yet.
	stateNotLoaded
	// stateLoaded: an out-of-line value that has been read and decoded; the
	// offset is kept so the value can be unloaded and fetched again.
	stateLoaded
	// stateUnknown: the type code is outside the TIFF 6.0 set; the inline
	// bytes are kept verbatim and never decoded.
	stateUnknown
)

// Field is one tagged entry of a subfile. Its value is either decoded
// already (inline values), pending (out-of-line values) or opaque (unknown
// type codes); Load and Unload move between the pending and decoded states.
//
// A Field must not be used concurrently with itself. Distinct fields may
// load and unload concurrently; the shared source serializes their I/O.
type Field struct {
	src       *source
	byteOrder binary.ByteOrder

	state   fieldState
	typ     FieldType // zero when the type code is unknown
	typCode uint16
	count   uint32
	offset  uint32     // value offset for stateNotLoaded/stateLoaded
	value   FieldValue // decoded value for stateLocal/stateLoaded
	inline  [4]byte    // verbatim inline bytes for stateUnknown
}

// newField applies the state rules to the parsed pieces of one 12-byte
// directory entry: an unknown type code wins first, then an inline decode
// if the value fits the 4 bytes, otherwise the inline bytes hold the offset
// of the value and loading is deferred.
func newField(src *source, byteOrder binary.ByteOrder, typeCode uint16, count uint32, inline [4]byte) (*Field, error) {
	f := &Field{
		src:       src,
		byteOrder: byteOrder,
		typCode:   typeCode,
		count:     count,
	}

	typ, known := typeFromCode(typeCode)
	if !known {
		f.state = stateUnknown
		f.inline = inline
		return f, nil
	}
	f.typ = typ

	size, ok := bufferSize(typ, count)
	if !ok {
		return nil, newInvalidFormatErrorf("%s field with count %d exceeds addressable size", typ, count)
	}

	if size <= 4 {
		value, err := decodeValue(typ, count, inline[:size], byteOrder)
		if err != nil {
			return nil, err
		}
		f.state = stateLocal
		f.value = value
		return f, nil
	}

	f.state = stateNotLoaded
	f.offset = byteOrder.Uint32(inline[:])
	return f, nil
}

// Type returns the resolved field type. ok is false for entries whose type
// code is outside the TIFF 6.0 set.
func (f *Field) Type() (FieldType, bool) {
	if f.state == stateUnknown {
		return 0, false
	}
	return f.typ, true
}

// TypeCode returns the raw type code from the directory entry.
func (f *Field) TypeCode() uint16 {
	return f.typCode
}

// Count returns the declared number of values, available without I/O in
// every state.
func (f *Field) Count() uint32 {
	return f.count
}

// RawValue returns the verbatim inline bytes of a field whose type code is
// not part of TIFF 6.0. Such fields are never decoded; ok is false for
// recognized types.
func (f *Field) RawValue() ([4]byte, bool) {
	if f.state != stateUnknown {
		return [4]byte{}, false
	}
	return f.inline, true
}

// ValueIfLocal returns the decoded value only when it was stored inline in
// the directory entry. It never touches the byte source; callers that need
// the value regardless should use Value.
func (f *Field) ValueIfLocal() FieldValue {
	if f.state != stateLocal {
		return nil
	}
	return f.value
}

// Load fetches and decodes an out-of-line value. It is a no-op for values
// already in memory and for unknown fields.
func (f *Field) Load() error {
	if f.state != stateNotLoaded {
		return nil
	}

	// Construction already rejected overflowing sizes, checked all the same.
	size, ok := bufferSize(f.typ, f.count)
	if !ok {
		return newInvalidFormatErrorf("%s field with count %d exceeds addressable size", f.typ, f.count)
	}

	buf, err := f.src.readAt(int64(f.offset), size)
	if err != nil {
		return fmt.Errorf("loading %s value: %w", f.typ, err)
	}

	value, err := decodeValue(f.typ, f.count, buf, f.byteOrder)
	if err != nil {
		return err
	}

	f.state = stateLoaded
	f.value = value
	return nil
}

// Unload drops a loaded out-of-line value, keeping its offset so a later
// Load reproduces it byte for byte. Local and unknown fields are untouched.
func (f *Field) Unload() {
	if f.state != stateLoaded {
		return
	}
	f.state = stateNotLoaded
	f.value = nil
}

// Value loads the field if necessary and returns the decoded value.
// Unknown fields return nil with no error.
func (f *Field) Value() (FieldValue, error) {
	if err := f.Load(); err != nil {
		return nil, err
	}
	switch f.state {
	case stateLocal, stateLoaded:
		return f.value, nil
	default:
		return nil, nil
	}
}
