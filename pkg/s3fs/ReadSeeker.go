// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"errors"
	"io"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

var (
	errNegativeOffset = errors.New("negative offset")
	errInvalidWhence  = errors.New("invalid whence")
)

// ReadSeeker reads a fixed size object through a function that fills p starting at offset.
type ReadSeeker struct {
	read   func(offset int64, p []byte) (n int, err error)
	offset int64
	size   int64
}

func (rs *ReadSeeker) Read(p []byte) (int, error) {
	if rs.offset >= rs.size {
		return 0, io.EOF
	}
	if remaining := rs.size - rs.offset; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := rs.read(rs.offset, p)
	if n > 0 {
		rs.offset += int64(n)
	}
	return n, err
}

func (rs *ReadSeeker) Seek(offset int64, whence int) (int64, error) {
	next := rs.offset
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = rs.offset + offset
	case io.SeekEnd:
		next = rs.size + offset
	default:
		return rs.offset, errInvalidWhence
	}
	if next < 0 {
		return rs.offset, errNegativeOffset
	}
	rs.offset = next
	return rs.offset, nil
}

func NewReadSeeker(offset int64, size int64, read func(offset int64, p []byte) (int, error)) *ReadSeeker {
	return &ReadSeeker{read: read, offset: offset, size: size}
}

// readOnlyStream adapts a ReadSeeker to fs.Stream.
type readOnlyStream struct {
	*ReadSeeker
	name string
}

func (s *readOnlyStream) Write(p []byte) (int, error) {
	return 0, fs.PathError("write", s.name, fs.ErrAccessDenied)
}

func (s *readOnlyStream) Close() error {
	return nil
}
