// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"fmt"
	"io"
	iofs "io/fs"

	"github.com/spf13/afero/mem"

	"github.com/deptofdefense/netstorage/pkg/fs"
)

// WriteStream buffers an object in memory and uploads it on Close if it was written to.
type WriteStream struct {
	name   string
	file   *mem.File
	flush  func(data []byte) error
	dirty  bool
	closed bool
}

func (ws *WriteStream) Read(p []byte) (int, error) {
	if ws.closed {
		return 0, fs.PathError("read", ws.name, iofs.ErrClosed)
	}
	return ws.file.Read(p)
}

func (ws *WriteStream) Write(p []byte) (int, error) {
	if ws.closed {
		return 0, fs.PathError("write", ws.name, iofs.ErrClosed)
	}
	ws.dirty = true
	return ws.file.Write(p)
}

func (ws *WriteStream) Seek(offset int64, whence int) (int64, error) {
	if ws.closed {
		return 0, fs.PathError("seek", ws.name, iofs.ErrClosed)
	}
	return ws.file.Seek(offset, whence)
}

func (ws *WriteStream) Close() error {
	if ws.closed {
		return fs.PathError("close", ws.name, iofs.ErrClosed)
	}
	ws.closed = true
	defer func() { _ = ws.file.Close() }()
	if !ws.dirty {
		return nil
	}
	if _, err := ws.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error rewinding buffer for %q: %w", ws.name, err)
	}
	data, err := io.ReadAll(ws.file)
	if err != nil {
		return fmt.Errorf("error reading buffer for %q: %w", ws.name, err)
	}
	return ws.flush(data)
}

// NewWriteStream returns a stream positioned at the start of data.
func NewWriteStream(name string, data []byte, flush func(data []byte) error) (*WriteStream, error) {
	file := mem.NewFileHandle(mem.CreateFile(name))
	if _, err := file.Write(data); err != nil {
		return nil, fmt.Errorf("error buffering %q: %w", name, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error rewinding buffer for %q: %w", name, err)
	}
	return &WriteStream{name: name, file: file, flush: flush}, nil
}
