package lazytiff

import "math"

// FieldType is one of the twelve field data types defined by the TIFF 6.0
// specification. Type codes outside this set are carried opaquely, see
// Field.TypeCode.
type FieldType uint16

const (
	TypeByte      FieldType = 1
	TypeASCII     FieldType = 2
	TypeShort     FieldType = 3
	TypeLong      FieldType = 4
	TypeRational  FieldType = 5
	TypeSByte     FieldType = 6
	TypeUndefined FieldType = 7
	TypeSShort    FieldType = 8
	TypeSLong     FieldType = 9
	TypeSRational FieldType = 10
	TypeFloat     FieldType = 11
	TypeDouble    FieldType = 12
)

// Size in bytes of a single value of each type.
var fieldTypeSizes = map[FieldType]uint32{
	TypeByte:      1,
	TypeASCII:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeSByte:     1,
	TypeUndefined: 1,
	TypeSShort:    2,
	TypeSLong:     4,
	TypeSRational: 8,
	TypeFloat:     4,
	TypeDouble:    8,
}

var fieldTypeNames = map[FieldType]string{
	TypeByte:      "Byte",
	TypeASCII:     "ASCII",
	TypeShort:     "Short",
	TypeLong:      "Long",
	TypeRational:  "Rational",
	TypeSByte:     "SByte",
	TypeUndefined: "Undefined",
	TypeSShort:    "SShort",
	TypeSLong:     "SLong",
	TypeSRational: "SRational",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
}

// typeFromCode resolves a raw type code from a directory entry.
// An unrecognized code is not an error; the caller keeps the entry as an
// unknown field.
func typeFromCode(code uint16) (FieldType, bool) {
	t := FieldType(code)
	_, ok := fieldTypeSizes[t]
	return t, ok
}

// Size returns the byte width of a single value of t, or 0 for types not in
// the TIFF 6.0 set.
func (t FieldType) Size() uint32 {
	return fieldTypeSizes[t]
}

func (t FieldType) String() string {
	if name, found := fieldTypeNames[t]; found {
		return name
	}
	return "Unknown"
}

// bufferSize returns the number of bytes needed to hold count values of
// type t. The second return value is false if the product does not fit in
// an int; callers must treat that as a parse error for the field, the
// multiplication never wraps.
func bufferSize(t FieldType, count uint32) (int, bool) {
	size := uint64(t.Size()) * uint64(count)
	if size > uint64(math.MaxInt) {
		return 0, false
	}
	return int(size), true
}
