// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package template

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultListing(t *testing.T) {
	tmpl, err := Parse("listing", DefaultListing)
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	require.NoError(t, tmpl.Execute(buf, Listing{
		Path:    "/data/local",
		Folders: []Entry{{Name: "sub", Type: "folder", Path: "/data/local/sub"}},
		Files:   []Entry{{Name: "a.txt", Type: "file", Path: "/data/local/a.txt"}},
	}))
	assert.Equal(t, "folder sub/\nfile   a.txt\n2 entries in /data/local\n", buf.String())
}

func TestParseFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/listing.tmpl", []byte(`{{ formatTime .Time "2006-01-02" }} {{ .Path }}`), 0644))
	tmpl, err := ParseFile(fs, "listing", "/listing.tmpl")
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	require.NoError(t, tmpl.Execute(buf, Listing{
		Path: "s3://bucket/data",
		Time: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
	}))
	assert.Equal(t, "2023-03-01 s3://bucket/data", buf.String())

	_, err = ParseFile(fs, "missing", "/missing.tmpl")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.tmpl", []byte(`{{ .Path `), 0644))
	_, err = ParseFile(fs, "bad", "/bad.tmpl")
	assert.Error(t, err)
}
