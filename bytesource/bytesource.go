// Package bytesource adapts the external byte producers the CDC core stays
// agnostic about (files, network streams, in-memory buffers) to the single
// method the core's iterators pull from.
package bytesource

import (
	"bufio"
	"io"
)

// ByteSource is the abstract producer every core iterator pulls from. It
// intentionally has nothing to do with io.Reader: the core's inner loops are
// per-byte and must not force an io.Reader-shaped allocation or error type on
// every implementation (e.g. a plain []byte has neither).
type ByteSource interface {
	// NextByte returns the next byte and true, or ok=false once the source is
	// exhausted. A source that has returned ok=false once must keep doing so.
	NextByte() (b byte, ok bool)
}

// readerSource buffers an io.Reader one byte at a time. Buffering belongs
// here, not in the core.
type readerSource struct {
	r       *bufio.Reader
	lastErr error
}

// FromReader wraps an io.Reader as a ByteSource. The reader is wrapped in a
// bufio.Reader unless it already is one.
func FromReader(r io.Reader) ByteSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &readerSource{r: br}
}

func (s *readerSource) NextByte() (byte, bool) {
	if s.lastErr != nil {
		return 0, false
	}

	b, err := s.r.ReadByte()
	if err != nil {
		s.lastErr = err
		return 0, false
	}

	return b, true
}

// Err returns the first non-EOF error the underlying reader produced, if
// any. io.EOF is not reported here: it is a clean end of stream, not a
// failure.
func (s *readerSource) Err() error {
	if s.lastErr == io.EOF {
		return nil
	}
	return s.lastErr
}

// Err reports the first non-EOF error encountered by a ByteSource built with
// FromReader, or nil. Sources that don't track errors (e.g. FromBytes)
// report nil.
func Err(src ByteSource) error {
	type errSource interface {
		Err() error
	}
	if e, ok := src.(errSource); ok {
		return e.Err()
	}
	return nil
}

// sliceSource wraps an in-memory byte slice. Used extensively by the core
// packages' own tests, where buffering an io.Reader would be pointless.
type sliceSource struct {
	data []byte
	pos  int
}

// FromBytes wraps a byte slice as a ByteSource.
func FromBytes(data []byte) ByteSource {
	return &sliceSource{data: data}
}

func (s *sliceSource) NextByte() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, true
}
