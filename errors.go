package lazytiff

import (
	"errors"
	"fmt"
	"io"
)

var (
	errInvalidFormat = fmt.Errorf("lazytiff: invalid format")

	errShortRead = errors.New("lazytiff: short read")
)

// InvalidFormatError is returned for files whose structure does not match
// the TIFF 6.0 layout: bad magic bytes, a first-IFD offset inside the
// header, truncated directories or a next-IFD chain that loops.
type InvalidFormatError struct {
	Err error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("%s: %s", errInvalidFormat, e.Err)
}

func (e *InvalidFormatError) Is(target error) bool {
	return target == errInvalidFormat
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

func newInvalidFormatError(err error) error {
	return &InvalidFormatError{Err: err}
}

func newInvalidFormatErrorf(format string, args ...any) error {
	return &InvalidFormatError{Err: fmt.Errorf(format, args...)}
}

func isInvalidFormatErrorCandidate(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, errShortRead)
}
