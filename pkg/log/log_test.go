// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *SimpleLogger {
	logger := NewSimpleLogger(buf)
	logger.now = func() time.Time {
		return time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	}
	return logger
}

func TestSimpleLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := newTestLogger(buf)
	require.NoError(t, logger.Log("Wrote file", map[string]interface{}{
		"path":  "/data/a.txt",
		"bytes": 5,
		"error": errors.New("boom"),
		"msg":   "ignored",
	}))
	require.NoError(t, logger.Log("Second", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	m := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, map[string]interface{}{
		"msg":   "Wrote file",
		"ts":    "2023-03-01T12:00:00Z",
		"path":  "/data/a.txt",
		"bytes": float64(5),
		"error": "boom",
	}, m)
}

func TestWrapStandardLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := WrapStandardLogger(newTestLogger(buf))
	logger.Printf("hello %s", "world")
	assert.Equal(t, "{\"msg\":\"hello world\",\"ts\":\"2023-03-01T12:00:00Z\"}\n", buf.String())
}
