// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"errors"
	iofs "io/fs"
)

var (
	// ErrInvalidName is returned when a name is empty, is "." or "..", or contains a path separator.
	ErrInvalidName = errors.New("invalid name")
	// ErrAccessDenied is returned when a stream is used in a way its file access does not allow.
	ErrAccessDenied = errors.New("access denied")
	// ErrRootFolder is returned when deleting a root storage folder.
	ErrRootFolder = errors.New("cannot delete root storage folder")
	// ErrUnsupported is returned when no adapter can serve a path.
	ErrUnsupported = errors.New("operation not supported")
)

// PathError wraps err in an *fs.PathError.  Returns nil if err is nil.
func PathError(op string, path string, err error) error {
	if err == nil {
		return nil
	}
	return &iofs.PathError{Op: op, Path: path, Err: err}
}

func IsNotExist(err error) bool {
	return errors.Is(err, iofs.ErrNotExist)
}

func IsExist(err error) bool {
	return errors.Is(err, iofs.ErrExist)
}
