package lazytiff

import (
	"bytes"
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestParseSubfile(t *testing.T) {
	c := qt.New(t)

	data := bytes.Join([][]byte{
		[]byte("II\x2A\x00\x0D\x00\x00\x00"), // header, first directory at offset 13
		[]byte("\x00\x00\x00\x00\x00"),       // arbitrary spacing
		[]byte("\x01\x00"),                   // number of entries (1)
		[]byte("\x39\x05"),                   // tag (1337)
		[]byte("\x01\x00"),                   // type (1 = Byte)
		[]byte("\x03\x00\x00\x00"),           // count (3)
		[]byte("\xCA\xFE\xBE\xEF"),           // values (3 bytes + 1 unused)
		[]byte("\x00\x00\x00\x00"),           // offset of next directory (none)
	}, nil)

	s, err := parseSubfile(newSource(bytes.NewReader(data)), 13, binary.LittleEndian)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Tags(), qt.DeepEquals, []uint16{1337})
	c.Assert(s.ValueIfLocal(1337), qt.DeepEquals, FieldValue(ByteValue{202, 254, 190}))

	_, ok := s.NextOffset()
	c.Assert(ok, qt.IsFalse)
}

func TestParseSubfileAbsentTag(t *testing.T) {
	c := qt.New(t)

	data := bytes.Join([][]byte{
		[]byte("\x00\x00"),         // no entries
		[]byte("\x40\x00\x00\x00"), // next directory at offset 64
	}, nil)

	s, err := parseSubfile(newSource(bytes.NewReader(data)), 0, binary.LittleEndian)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Field(256), qt.IsNil)
	c.Assert(s.ValueIfLocal(256), qt.IsNil)
	c.Assert(s.LoadField(256), qt.IsNil)
	s.UnloadField(256)

	next, ok := s.NextOffset()
	c.Assert(ok, qt.IsTrue)
	c.Assert(next, qt.Equals, uint32(64))
}

func TestParseSubfileDuplicateTagLastWins(t *testing.T) {
	c := qt.New(t)

	data := bytes.Join([][]byte{
		[]byte("\x02\x00"), // two entries with the same tag
		[]byte("\x00\x01\x03\x00\x01\x00\x00\x00\x01\x00\x00\x00"),
		[]byte("\x00\x01\x03\x00\x01\x00\x00\x00\x02\x00\x00\x00"),
		[]byte("\x00\x00\x00\x00"),
	}, nil)

	s, err := parseSubfile(newSource(bytes.NewReader(data)), 0, binary.LittleEndian)
	c.Assert(err, qt.IsNil)
	c.Assert(s.Tags(), qt.DeepEquals, []uint16{256})
	c.Assert(s.ValueIfLocal(256), qt.DeepEquals, FieldValue(ShortValue{2}))
}

func TestParseSubfileTruncated(t *testing.T) {
	c := qt.New(t)

	// The entry count promises two entries but the data ends early.
	data := []byte("\x02\x00\x39\x05\x01\x00")
	_, err := parseSubfile(newSource(bytes.NewReader(data)), 0, binary.LittleEndian)
	c.Assert(err, qt.ErrorIs, errShortRead)
}

func TestParseSubfileOverflowingEntry(t *testing.T) {
	c := qt.New(t)

	if size, ok := bufferSize(TypeDouble, 0xFFFFFFFF); ok {
		// 64-bit host, the size fits and the entry parses as not loaded.
		c.Assert(size > 4, qt.IsTrue)
		return
	}

	data := bytes.Join([][]byte{
		[]byte("\x01\x00"),
		[]byte("\x00\x01"),         // tag 256
		[]byte("\x0C\x00"),         // type 12 = Double
		[]byte("\xFF\xFF\xFF\xFF"), // count that overflows a 32-bit size
		[]byte("\x00\x00\x00\x00"),
		[]byte("\x00\x00\x00\x00"),
	}, nil)

	_, err := parseSubfile(newSource(bytes.NewReader(data)), 0, binary.LittleEndian)
	c.Assert(err, qt.ErrorIs, errInvalidFormat)
}

func TestSubfileLoadAllAggregatesFailures(t *testing.T) {
	c := qt.New(t)

	// Two out-of-line Short x3 fields: tag 258 at a valid offset, tag 259
	// pointing past the end of the stream.
	data := bytes.Join([][]byte{
		[]byte("\x02\x00"),
		[]byte("\x02\x01\x03\x00\x03\x00\x00\x00\x1E\x00\x00\x00"), // tag 258, offset 30
		[]byte("\x03\x01\x03\x00\x03\x00\x00\x00\xE8\x03\x00\x00"), // tag 259, offset 1000
		[]byte("\x00\x00\x00\x00"),
		[]byte("\x08\x00\x08\x00\x08\x00"), // tag 258's values at offset 30
	}, nil)

	s, err := parseSubfile(newSource(bytes.NewReader(data)), 0, binary.LittleEndian)
	c.Assert(err, qt.IsNil)

	err = s.LoadAll()
	c.Assert(err, qt.ErrorMatches, `(?s).*tag 259.*`)
	c.Assert(err, qt.ErrorIs, errShortRead)

	// The loadable field still loaded.
	c.Assert(s.Field(258).state, qt.Equals, stateLoaded)
	v, verr := s.Field(258).Value()
	c.Assert(verr, qt.IsNil)
	c.Assert(v, qt.DeepEquals, FieldValue(ShortValue{8, 8, 8}))
	c.Assert(s.Field(259).state, qt.Equals, stateNotLoaded)
}

func TestSubfileLoadAllUnloadAll(t *testing.T) {
	c := qt.New(t)

	data := bytes.Join([][]byte{
		[]byte("\x01\x00"),
		[]byte("\x02\x01\x03\x00\x03\x00\x00\x00\x12\x00\x00\x00"), // tag 258, offset 18
		[]byte("\x00\x00\x00\x00"),
		[]byte("\x01\x00\x02\x00\x03\x00"), // values at offset 18
	}, nil)

	s, err := parseSubfile(newSource(bytes.NewReader(data)), 0, binary.LittleEndian)
	c.Assert(err, qt.IsNil)

	c.Assert(s.LoadAll(), qt.IsNil)
	c.Assert(s.Field(258).state, qt.Equals, stateLoaded)

	s.UnloadAll()
	c.Assert(s.Field(258).state, qt.Equals, stateNotLoaded)

	c.Assert(s.LoadField(258), qt.IsNil)
	v, err := s.Field(258).Value()
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, FieldValue(ShortValue{1, 2, 3}))
}
