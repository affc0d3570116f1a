package lazytiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// FieldValue holds the decoded values of one field. It is a closed union:
// the concrete type is one of the twelve *Value slices below, picked by the
// field's type code.
type FieldValue interface {
	// Type returns the field type the values were decoded as.
	Type() FieldType
	// Count returns the number of values, which always matches the count
	// declared in the originating directory entry.
	Count() int
}

type (
	ByteValue      []uint8
	ASCIIValue     []byte
	ShortValue     []uint16
	LongValue      []uint32
	RationalValue  []Rational
	SByteValue     []int8
	UndefinedValue []byte
	SShortValue    []int16
	SLongValue     []int32
	SRationalValue []SRational
	FloatValue     []float32
	DoubleValue    []float64
)

func (v ByteValue) Type() FieldType      { return TypeByte }
func (v ASCIIValue) Type() FieldType     { return TypeASCII }
func (v ShortValue) Type() FieldType     { return TypeShort }
func (v LongValue) Type() FieldType      { return TypeLong }
func (v RationalValue) Type() FieldType  { return TypeRational }
func (v SByteValue) Type() FieldType     { return TypeSByte }
func (v UndefinedValue) Type() FieldType { return TypeUndefined }
func (v SShortValue) Type() FieldType    { return TypeSShort }
func (v SLongValue) Type() FieldType     { return TypeSLong }
func (v SRationalValue) Type() FieldType { return TypeSRational }
func (v FloatValue) Type() FieldType     { return TypeFloat }
func (v DoubleValue) Type() FieldType    { return TypeDouble }

func (v ByteValue) Count() int      { return len(v) }
func (v ASCIIValue) Count() int     { return len(v) }
func (v ShortValue) Count() int     { return len(v) }
func (v LongValue) Count() int      { return len(v) }
func (v RationalValue) Count() int  { return len(v) }
func (v SByteValue) Count() int     { return len(v) }
func (v UndefinedValue) Count() int { return len(v) }
func (v SShortValue) Count() int    { return len(v) }
func (v SLongValue) Count() int     { return len(v) }
func (v SRationalValue) Count() int { return len(v) }
func (v FloatValue) Count() int     { return len(v) }
func (v DoubleValue) Count() int    { return len(v) }

// Text returns the ASCII value as a string with trailing NUL bytes removed.
// Writers routinely store Latin-1 text in ASCII fields; bytes that are not
// valid UTF-8 are decoded as ISO 8859-1.
func (v ASCIIValue) Text() string {
	b := bytes.TrimRight(v, "\x00")
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// Rational is an unsigned rational number exactly as stored in the file:
// numerator then denominator, never reduced. A zero denominator is kept
// as-is so the value round-trips.
type Rational struct {
	Num uint32
	Den uint32
}

func (r Rational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// SRational is the signed counterpart of Rational.
type SRational struct {
	Num int32
	Den int32
}

func (r SRational) Float64() float64 {
	return float64(r.Num) / float64(r.Den)
}

func (r SRational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// decodeValue decodes count values of type t from buf. buf must hold
// exactly bufferSize(t, count) bytes; any mismatch is an error, the buffer
// is never truncated or padded. Values keep their position in buf.
func decodeValue(t FieldType, count uint32, buf []byte, byteOrder binary.ByteOrder) (FieldValue, error) {
	want, ok := bufferSize(t, count)
	if !ok {
		return nil, newInvalidFormatErrorf("%s value with count %d exceeds addressable size", t, count)
	}
	if len(buf) != want {
		return nil, newInvalidFormatErrorf("%s value buffer holds %d bytes, need %d", t, len(buf), want)
	}

	n := int(count)
	switch t {
	case TypeByte:
		return ByteValue(append([]uint8(nil), buf...)), nil
	case TypeASCII:
		return ASCIIValue(append([]byte(nil), buf...)), nil
	case TypeShort:
		v := make(ShortValue, n)
		for i := range v {
			v[i] = byteOrder.Uint16(buf[2*i:])
		}
		return v, nil
	case TypeLong:
		v := make(LongValue, n)
		for i := range v {
			v[i] = byteOrder.Uint32(buf[4*i:])
		}
		return v, nil
	case TypeRational:
		v := make(RationalValue, n)
		for i := range v {
			v[i] = Rational{
				Num: byteOrder.Uint32(buf[8*i:]),
				Den: byteOrder.Uint32(buf[8*i+4:]),
			}
		}
		return v, nil
	case TypeSByte:
		v := make(SByteValue, n)
		for i := range v {
			v[i] = int8(buf[i])
		}
		return v, nil
	case TypeUndefined:
		return UndefinedValue(append([]byte(nil), buf...)), nil
	case TypeSShort:
		v := make(SShortValue, n)
		for i := range v {
			v[i] = int16(byteOrder.Uint16(buf[2*i:]))
		}
		return v, nil
	case TypeSLong:
		v := make(SLongValue, n)
		for i := range v {
			v[i] = int32(byteOrder.Uint32(buf[4*i:]))
		}
		return v, nil
	case TypeSRational:
		v := make(SRationalValue, n)
		for i := range v {
			v[i] = SRational{
				Num: int32(byteOrder.Uint32(buf[8*i:])),
				Den: int32(byteOrder.Uint32(buf[8*i+4:])),
			}
		}
		return v, nil
	case TypeFloat:
		v := make(FloatValue, n)
		for i := range v {
			v[i] = math.Float32frombits(byteOrder.Uint32(buf[4*i:]))
		}
		return v, nil
	case TypeDouble:
		v := make(DoubleValue, n)
		for i := range v {
			v[i] = math.Float64frombits(byteOrder.Uint64(buf[8*i:]))
		}
		return v, nil
	default:
		return nil, newInvalidFormatErrorf("cannot decode field type %d", uint16(t))
	}
}
