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

// NameCollisionOption determines what happens when a rename or move targets the name of an existing item.
type NameCollisionOption int

const (
	// GenerateUniqueName appends a number to the name until it no longer collides.
	GenerateUniqueName NameCollisionOption = iota
	// ReplaceExisting replaces the existing item.
	ReplaceExisting
	// FailIfExists returns an error wrapping fs.ErrExist.
	FailIfExists
)

const (
	DefaultRenameOption = FailIfExists
	DefaultMoveOption   = ReplaceExisting
)

var (
	NameCollisionOptionNames = []string{
		"generate-unique-name",
		"replace-existing",
		"fail-if-exists",
	}
)

func (o NameCollisionOption) String() string {
	if o < 0 || int(o) >= len(NameCollisionOptionNames) {
		return fmt.Sprintf("NameCollisionOption(%d)", int(o))
	}
	return NameCollisionOptionNames[o]
}

func ParseNameCollisionOption(str string) (NameCollisionOption, error) {
	for i, name := range NameCollisionOptionNames {
		if strings.EqualFold(str, name) {
			return NameCollisionOption(i), nil
		}
	}
	return FailIfExists, fmt.Errorf("invalid name collision option %q, expecting one of: %s", str, strings.Join(NameCollisionOptionNames, ","))
}
