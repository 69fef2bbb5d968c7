// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"strings"
)

// CheckName returns true if the given name is a single path element.
// The name must not be empty, must not be "." or "..", and must contain no forward or backward slashes.
func CheckName(name string) bool {
	if len(name) == 0 || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// ValidateName returns an *fs.PathError wrapping ErrInvalidName if the name is not a single path element.
func ValidateName(op string, name string) error {
	if !CheckName(name) {
		return PathError(op, name, ErrInvalidName)
	}
	return nil
}
