// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReadSeeker(data string) *ReadSeeker {
	return NewReadSeeker(0, int64(len(data)), func(offset int64, p []byte) (int, error) {
		return copy(p, data[offset:]), nil
	})
}

func TestReadSeeker(t *testing.T) {
	rs := newTestReadSeeker("hello world")

	p := make([]byte, 5)
	n, err := rs.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(p[:n]))

	offset, err := rs.Seek(1, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(6), offset)

	// reads are clamped to the end of the object
	p = make([]byte, 100)
	n, err = rs.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "world", string(p[:n]))

	_, err = rs.Read(p)
	assert.ErrorIs(t, err, io.EOF)

	offset, err = rs.Seek(-5, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(6), offset)

	_, err = rs.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, errNegativeOffset)
	_, err = rs.Seek(0, 42)
	assert.ErrorIs(t, err, errInvalidWhence)

	offset, err = rs.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)
	data, err := io.ReadAll(rs)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestWriteStream(t *testing.T) {
	var flushed []byte
	flushes := 0
	ws, err := NewWriteStream("s3://bucket/a.txt", []byte("hello"), func(data []byte) error {
		flushes++
		flushed = data
		return nil
	})
	require.NoError(t, err)

	data, err := io.ReadAll(ws)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = ws.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = ws.Write([]byte("J"))
	require.NoError(t, err)
	require.NoError(t, ws.Close())
	assert.Equal(t, 1, flushes)
	assert.Equal(t, "Jello", string(flushed))

	assert.Error(t, ws.Close())

	clean, err := NewWriteStream("s3://bucket/b.txt", []byte("b"), func(data []byte) error {
		flushes++
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, clean.Close())
	assert.Equal(t, 1, flushes, "unmodified streams are not uploaded")
}
