package lazytiff

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// ifdEntryLen is the fixed length of one directory entry: 2-byte tag,
// 2-byte type code, 4-byte count and 4 bytes holding the value or its
// offset.
const ifdEntryLen = 12

// Subfile is one parsed image file directory: a tag-ordered table of fields
// plus the offset of the next directory in the chain.
type Subfile struct {
	src        *source
	byteOrder  binary.ByteOrder
	fields     map[uint16]*Field
	tags       []uint16 // ascending
	nextOffset uint32   // 0 when this is the last subfile
}

// parseSubfile reads the directory at offset: first the 2-byte entry count,
// then all entries and the trailing next-IFD offset in one chunk. Duplicate
// tags are not rejected; the last entry in file order wins.
func parseSubfile(src *source, offset uint32, byteOrder binary.ByteOrder) (*Subfile, error) {
	countBytes, err := src.readAt(int64(offset), 2)
	if err != nil {
		return nil, fmt.Errorf("reading directory entry count: %w", err)
	}
	entryCount := int(byteOrder.Uint16(countBytes))

	buf, err := src.readAt(int64(offset)+2, ifdEntryLen*entryCount+4)
	if err != nil {
		return nil, fmt.Errorf("reading directory with %d entries: %w", entryCount, err)
	}

	s := &Subfile{
		src:       src,
		byteOrder: byteOrder,
		fields:    make(map[uint16]*Field, entryCount),
	}

	for i := 0; i < entryCount; i++ {
		entry := buf[ifdEntryLen*i : ifdEntryLen*(i+1)]
		tag := byteOrder.Uint16(entry[0:2])
		typeCode := byteOrder.Uint16(entry[2:4])
		count := byteOrder.Uint32(entry[4:8])
		var inline [4]byte
		copy(inline[:], entry[8:12])

		field, err := newField(src, byteOrder, typeCode, count, inline)
		if err != nil {
			return nil, fmt.Errorf("parsing entry for tag %d: %w", tag, err)
		}
		s.fields[tag] = field
	}

	s.nextOffset = byteOrder.Uint32(buf[ifdEntryLen*entryCount:])

	s.tags = make([]uint16, 0, len(s.fields))
	for tag := range s.fields {
		s.tags = append(s.tags, tag)
	}
	sort.Slice(s.tags, func(i, j int) bool { return s.tags[i] < s.tags[j] })

	return s, nil
}

// Tags returns the tags present in this subfile in ascending order.
func (s *Subfile) Tags() []uint16 {
	tags := make([]uint16, len(s.tags))
	copy(tags, s.tags)
	return tags
}

// Field returns the field for tag, or nil when the tag is absent.
func (s *Subfile) Field(tag uint16) *Field {
	return s.fields[tag]
}

// ValueIfLocal returns the inline-decoded value for tag without I/O, or nil
// when the tag is absent or its value is not local.
func (s *Subfile) ValueIfLocal(tag uint16) FieldValue {
	if f := s.fields[tag]; f != nil {
		return f.ValueIfLocal()
	}
	return nil
}

// LoadField loads the value for tag. An absent tag is not an error.
func (s *Subfile) LoadField(tag uint16) error {
	if f := s.fields[tag]; f != nil {
		return f.Load()
	}
	return nil
}

// UnloadField evicts the loaded value for tag, if any.
func (s *Subfile) UnloadField(tag uint16) {
	if f := s.fields[tag]; f != nil {
		f.Unload()
	}
}

// LoadAll loads every pending field value. A failing field does not stop
// the others from loading; the returned error aggregates every field that
// could not load.
func (s *Subfile) LoadAll() error {
	var result *multierror.Error
	for _, tag := range s.tags {
		if err := s.fields[tag].Load(); err != nil {
			result = multierror.Append(result, fmt.Errorf("tag %d: %w", tag, err))
		}
	}
	return result.ErrorOrNil()
}

// UnloadAll evicts every loaded out-of-line value.
func (s *Subfile) UnloadAll() {
	for _, f := range s.fields {
		f.Unload()
	}
}

// NextOffset returns the file offset of the next subfile in the chain. ok
// is false for the last subfile.
func (s *Subfile) NextOffset() (uint32, bool) {
	if s.nextOffset == 0 {
		return 0, false
	}
	return s.nextOffset, true
}
