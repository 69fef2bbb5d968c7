// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"fmt"
	iofs "io/fs"
	"path"
	"strings"
)

const (
	MaxUniqueNameAttempts = 1000
)

// UniqueName returns the first of "name (2).ext", "name (3).ext", ... for which exists returns false.
func UniqueName(name string, exists func(candidate string) (bool, error)) (string, error) {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if len(base) == 0 {
		// dot files such as ".profile" have no extension
		base, ext = name, ""
	}
	for i := 2; i < MaxUniqueNameAttempts+2; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		ok, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("error checking if %q exists: %w", candidate, err)
		}
		if !ok {
			return candidate, nil
		}
	}
	return "", PathError("unique", name, iofs.ErrExist)
}
