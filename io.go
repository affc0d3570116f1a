package lazytiff

import (
	"fmt"
	"io"
	"sync"
)

// source is the byte source shared by a Reader and every Subfile and Field
// derived from it. Seek and read form one atomic unit: two fields loading
// concurrently can never interleave a seek from one with a read from the
// other. The lock covers only the seek+read pair, decoding happens outside
// it.
type source struct {
	mu sync.Mutex
	r  io.ReadSeeker
}

func newSource(r io.ReadSeeker) *source {
	return &source{r: r}
}

// readAt seeks to offset and reads exactly length bytes.
func (s *source) readAt(offset int64, length int) ([]byte, error) {
	buf := make([]byte, length)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to offset %d: %w", offset, err)
	}
	n, err := io.ReadFull(s.r, buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("reading %d bytes at offset %d, got %d: %w", length, offset, n, errShortRead)
		}
		return nil, err
	}
	return buf, nil
}
