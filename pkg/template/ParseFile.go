// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package template

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/afero"
)

var funcMap = template.FuncMap{
	"sumIntegers": func(x, y int) int {
		return x + y
	},
	"formatTime": func(t time.Time, f string) string {
		return t.Format(f)
	},
	"padRight": func(s string, n int) string {
		if len(s) >= n {
			return s
		}
		return s + strings.Repeat(" ", n-len(s))
	},
}

// Parse parses a text template with the listing functions available.
func Parse(name string, text string) (Template, error) {
	t, err := template.New(name).Funcs(funcMap).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("error parsing template %q: %w", name, err)
	}
	return t, nil
}

func ParseFile(fs afero.Fs, name string, path string) (Template, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading template from %q: %w", path, err)
	}
	t, err := Parse(name, string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing template from %q: %w", path, err)
	}
	return t, nil
}
