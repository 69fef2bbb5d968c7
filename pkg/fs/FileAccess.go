// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"fmt"
	"strings"
)

type FileAccess int

const (
	Read FileAccess = iota
	ReadWrite
	Write
)

var (
	FileAccessNames = []string{
		"read",
		"readwrite",
		"write",
	}
)

func (a FileAccess) CanRead() bool {
	return a == Read || a == ReadWrite
}

func (a FileAccess) CanWrite() bool {
	return a == Write || a == ReadWrite
}

func (a FileAccess) String() string {
	if a < 0 || int(a) >= len(FileAccessNames) {
		return fmt.Sprintf("FileAccess(%d)", int(a))
	}
	return FileAccessNames[a]
}

// ParseFileAccess returns the file access for the given name.  The name is case-insensitive.
func ParseFileAccess(str string) (FileAccess, error) {
	for i, name := range FileAccessNames {
		if strings.EqualFold(str, name) {
			return FileAccess(i), nil
		}
	}
	return Read, fmt.Errorf("invalid file access %q, expecting one of: %s", str, strings.Join(FileAccessNames, ","))
}
