// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"io"
)

// Stream is the stream returned when opening a file.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

type accessStream struct {
	Stream
	access FileAccess
	name   string
}

func (s *accessStream) Read(p []byte) (int, error) {
	if !s.access.CanRead() {
		return 0, PathError("read", s.name, ErrAccessDenied)
	}
	return s.Stream.Read(p)
}

func (s *accessStream) Write(p []byte) (int, error) {
	if !s.access.CanWrite() {
		return 0, PathError("write", s.name, ErrAccessDenied)
	}
	return s.Stream.Write(p)
}

// NewStream returns a stream that rejects reads and writes not allowed by access.
func NewStream(s Stream, access FileAccess, name string) Stream {
	return &accessStream{Stream: s, access: access, name: name}
}
