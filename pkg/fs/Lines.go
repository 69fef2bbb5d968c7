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

// JoinLines returns the lines as bytes with each line terminated by a newline.
func JoinLines(lines []string) []byte {
	sb := &strings.Builder{}
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}
