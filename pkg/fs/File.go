// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"context"
)

// File represents a single file and the operations that can be performed on it.
//
// Rename and Move update the values returned by Name and FullPath.
type File interface {
	// Name returns the name of the file.
	Name() string
	// FullPath returns the full path of the file.
	FullPath() string
	// Open opens a stream over the file with the given access.
	// The file must exist and is never truncated.
	Open(ctx context.Context, access FileAccess) (Stream, error)
	// Rename renames the file within its current folder.
	Rename(ctx context.Context, newName string, option NameCollisionOption) error
	// Move moves the file to the given path.
	Move(ctx context.Context, newPath string, option NameCollisionOption) error
	// Delete deletes the file.
	Delete(ctx context.Context) error
	// WriteAllBytes creates or overwrites the file with the given bytes.
	WriteAllBytes(ctx context.Context, data []byte) error
	// WriteAllLines creates or overwrites the file with the given lines, each terminated by a newline.
	WriteAllLines(ctx context.Context, lines []string) error
	// WriteAllText creates or overwrites the file with the given string.
	WriteAllText(ctx context.Context, text string) error
	// ReadAllBytes returns the contents of the file.
	ReadAllBytes(ctx context.Context) ([]byte, error)
	// ReadAllText returns the contents of the file as a string.
	ReadAllText(ctx context.Context) (string, error)
}
