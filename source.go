package mp4

import (
	"errors"
	"fmt"
	"io"

	"github.com/sunfish-shogi/bufseekio"
)

var errShortRead = errors.New("short read")

// Default buffering for NewSeekSource.
const (
	DefaultBufferSize  = 4096
	DefaultHistorySize = 4
)

// Source is a positioned byte source over a single file.
// *bytes.Reader satisfies it directly.
type Source interface {
	io.ReaderAt
	Size() int64
}

// SeekSource adapts an io.ReadSeeker (typically an *os.File) to Source.
//
// Each ReadAt seeks and then reads through a small read-behind buffer, so a
// SeekSource must not be shared between concurrent walks.
type SeekSource struct {
	rs   io.ReadSeeker
	size int64
}

// NewSeekSource measures rs and wraps it in a buffered reader holding
// history buffers of bufSize bytes each. Non-positive values select the
// defaults.
func NewSeekSource(rs io.ReadSeeker, bufSize, history int) (*SeekSource, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if history <= 0 {
		history = DefaultHistorySize
	}
	return &SeekSource{
		rs:   bufseekio.NewReadSeeker(rs, bufSize, history),
		size: size,
	}, nil
}

// Size returns the length of the underlying stream.
func (s *SeekSource) Size() int64 { return s.size }

// ReadAt implements io.ReaderAt.
func (s *SeekSource) ReadAt(p []byte, off int64) (int, error) {
	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(s.rs, p)
}

// readAt fills p from off or fails with ErrIO.
func readAt(src Source, p []byte, off int64) error {
	n, err := src.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w at %d: got %d of %d bytes", ErrIO, errShortRead, off, n, len(p))
	}
	return fmt.Errorf("%w: read at %d: %w", ErrIO, off, err)
}
