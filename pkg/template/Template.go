// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package template

import (
	"io"
	"time"
)

type Template interface {
	Execute(w io.Writer, data any) error
}

// Entry is a single file or folder in a listing.
type Entry struct {
	Name string
	Type string
	Path string
}

// Listing is the data passed to folder listing templates.
type Listing struct {
	Path    string
	Folders []Entry
	Files   []Entry
	Time    time.Time
}

// DefaultListing prints folders then files, one per line.
const DefaultListing = `{{ range .Folders }}{{ padRight .Type 6 }} {{ .Name }}/
{{ end }}{{ range .Files }}{{ padRight .Type 6 }} {{ .Name }}
{{ end }}{{ sumIntegers (len .Folders) (len .Files) }} entries in {{ .Path }}
`
