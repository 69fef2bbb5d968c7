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

// CreationCollisionOption determines what happens when a created file or folder already exists.
type CreationCollisionOption int

const (
	CreateGenerateUniqueName CreationCollisionOption = iota
	CreateReplaceExisting
	CreateFailIfExists
	// CreateOpenIfExists returns the existing item untouched.
	CreateOpenIfExists
)

var (
	CreationCollisionOptionNames = []string{
		"generate-unique-name",
		"replace-existing",
		"fail-if-exists",
		"open-if-exists",
	}
)

func (o CreationCollisionOption) String() string {
	if o < 0 || int(o) >= len(CreationCollisionOptionNames) {
		return fmt.Sprintf("CreationCollisionOption(%d)", int(o))
	}
	return CreationCollisionOptionNames[o]
}

func ParseCreationCollisionOption(str string) (CreationCollisionOption, error) {
	for i, name := range CreationCollisionOptionNames {
		if strings.EqualFold(str, name) {
			return CreationCollisionOption(i), nil
		}
	}
	return CreateFailIfExists, fmt.Errorf("invalid creation collision option %q, expecting one of: %s", str, strings.Join(CreationCollisionOptionNames, ","))
}
