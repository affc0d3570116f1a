// Package lazytiff reads the directory structure of TIFF 6.0 files without
// materializing field values that do not fit inline: each subfile's tag
// table is parsed eagerly, while out-of-line values stay on disk until a
// caller asks for them.
package lazytiff

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	leHeader = "II\x2A\x00" // Header for little-endian files.
	beHeader = "MM\x00\x2A" // Header for big-endian files.

	headerLen = 8

	// maxSubfiles caps the next-IFD chain walk. Well-formed files have a
	// handful of subfiles; anything approaching this is corrupt or hostile.
	maxSubfiles = 10000
)

// Reader walks the chain of subfiles of one TIFF file. All subfiles and
// fields it produces read from the same underlying stream; their seek+read
// pairs are serialized internally.
type Reader struct {
	src         *source
	byteOrder   binary.ByteOrder
	firstOffset uint32
	subfiles    []*Subfile
}

// NewReader reads the 8-byte header from r and fails on unrecognized magic
// bytes or a first-IFD offset pointing inside the header. r must stay open
// for as long as the Reader or any Subfile or Field derived from it is in
// use.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	src := newSource(r)

	p, err := src.readAt(0, headerLen)
	if err != nil {
		if isInvalidFormatErrorCandidate(err) {
			err = newInvalidFormatError(err)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var byteOrder binary.ByteOrder
	switch string(p[0:4]) {
	case leHeader:
		byteOrder = binary.LittleEndian
	case beHeader:
		byteOrder = binary.BigEndian
	default:
		return nil, newInvalidFormatErrorf("malformed header")
	}

	// The TIFF 6.0 spec requires at least one IFD, placed after the header.
	firstOffset := byteOrder.Uint32(p[4:8])
	if firstOffset < headerLen {
		return nil, newInvalidFormatErrorf("first subfile offset %d points inside the header", firstOffset)
	}

	return &Reader{
		src:         src,
		byteOrder:   byteOrder,
		firstOffset: firstOffset,
	}, nil
}

// ByteOrder returns the byte order declared by the header.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.byteOrder
}

// FirstOffset returns the offset of the first subfile as declared by the
// header.
func (r *Reader) FirstOffset() uint32 {
	return r.firstOffset
}

// ReadAllSubfiles follows the chain of subfile offsets from the header
// until a zero next-offset, parsing each directory and appending it in
// file order. A chain that revisits an offset, points back into the header
// or exceeds maxSubfiles is rejected instead of followed forever.
func (r *Reader) ReadAllSubfiles() error {
	offset := r.firstOffset
	visited := make(map[uint32]bool)

	for offset != 0 {
		if offset < headerLen {
			return newInvalidFormatErrorf("subfile offset %d points inside the header", offset)
		}
		if visited[offset] {
			return newInvalidFormatErrorf("subfile chain revisits offset %d", offset)
		}
		visited[offset] = true
		if len(r.subfiles) >= maxSubfiles {
			return newInvalidFormatErrorf("more than %d subfiles", maxSubfiles)
		}

		subfile, err := parseSubfile(r.src, offset, r.byteOrder)
		if err != nil {
			if isInvalidFormatErrorCandidate(err) {
				err = newInvalidFormatError(err)
			}
			return fmt.Errorf("parsing subfile at offset %d: %w", offset, err)
		}
		r.subfiles = append(r.subfiles, subfile)
		offset = subfile.nextOffset
	}

	return nil
}

// Subfiles returns the subfiles discovered so far, in file order.
func (r *Reader) Subfiles() []*Subfile {
	return r.subfiles
}
