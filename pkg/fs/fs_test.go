// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package fs

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferStream struct {
	*bytes.Reader
	written bytes.Buffer
}

func (b *bufferStream) Write(p []byte) (int, error) {
	return b.written.Write(p)
}

func (b *bufferStream) Close() error {
	return nil
}

func TestCheckName(t *testing.T) {
	assert.True(t, CheckName("a.txt"))
	assert.True(t, CheckName(".profile"))
	assert.True(t, CheckName("a b (2).txt"))
	assert.False(t, CheckName(""))
	assert.False(t, CheckName("."))
	assert.False(t, CheckName(".."))
	assert.False(t, CheckName("a/b"))
	assert.False(t, CheckName("a\\b"))
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("rename", "b.txt"))
	err := ValidateName("rename", "../b.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidName))
	var pathError *iofs.PathError
	require.True(t, errors.As(err, &pathError))
	assert.Equal(t, "rename", pathError.Op)
}

func TestHasScheme(t *testing.T) {
	assert.True(t, HasScheme("s3://bucket/key"))
	assert.True(t, HasScheme("s3://"))
	assert.True(t, HasScheme("git+ssh://host/repo"))
	assert.False(t, HasScheme("/data/local/b.txt"))
	assert.False(t, HasScheme("a.txt"))
	assert.False(t, HasScheme("://a"))
	assert.False(t, HasScheme("3s://a"))
	assert.False(t, HasScheme("dir/s3://a"))
}

func TestUniqueName(t *testing.T) {
	existing := map[string]bool{
		"report (2).txt": true,
		"report (3).txt": true,
	}
	exists := func(candidate string) (bool, error) {
		return existing[candidate], nil
	}
	name, err := UniqueName("report.txt", exists)
	require.NoError(t, err)
	assert.Equal(t, "report (4).txt", name)

	name, err = UniqueName("notes", exists)
	require.NoError(t, err)
	assert.Equal(t, "notes (2)", name)

	name, err = UniqueName(".profile", exists)
	require.NoError(t, err)
	assert.Equal(t, ".profile (2)", name)
}

func TestUniqueNameExhausted(t *testing.T) {
	_, err := UniqueName("a.txt", func(string) (bool, error) { return true, nil })
	require.Error(t, err)
	assert.True(t, IsExist(err))
}

func TestUniqueNameError(t *testing.T) {
	boom := errors.New("boom")
	_, err := UniqueName("a.txt", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestParseOptions(t *testing.T) {
	access, err := ParseFileAccess("ReadWrite")
	require.NoError(t, err)
	assert.Equal(t, ReadWrite, access)
	assert.True(t, access.CanRead())
	assert.True(t, access.CanWrite())
	assert.False(t, Write.CanRead())
	assert.False(t, Read.CanWrite())
	_, err = ParseFileAccess("append")
	assert.Error(t, err)

	nameOption, err := ParseNameCollisionOption("generate-unique-name")
	require.NoError(t, err)
	assert.Equal(t, GenerateUniqueName, nameOption)
	assert.Equal(t, "fail-if-exists", DefaultRenameOption.String())
	assert.Equal(t, "replace-existing", DefaultMoveOption.String())

	creationOption, err := ParseCreationCollisionOption("OPEN-IF-EXISTS")
	require.NoError(t, err)
	assert.Equal(t, CreateOpenIfExists, creationOption)
	_, err = ParseCreationCollisionOption("overwrite")
	assert.Error(t, err)
}

func TestJoinLines(t *testing.T) {
	assert.Equal(t, "a\nb\n", string(JoinLines([]string{"a", "b"})))
	assert.Empty(t, JoinLines(nil))
}

func TestStreamAccess(t *testing.T) {
	inner := &bufferStream{Reader: bytes.NewReader([]byte("hello"))}

	readOnly := NewStream(inner, Read, "a.txt")
	data, err := io.ReadAll(readOnly)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	_, err = readOnly.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrAccessDenied)

	writeOnly := NewStream(inner, Write, "a.txt")
	_, err = writeOnly.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrAccessDenied)
	n, err := writeOnly.Write([]byte("xyz"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "xyz", inner.written.String())
}
