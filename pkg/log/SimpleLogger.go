// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// SimpleLogger writes one JSON object per line.
type SimpleLogger struct {
	mu     sync.Mutex
	writer io.Writer
	// returns the current time, overridden in tests
	now func() time.Time
}

// Log writes the message and fields as a single line of JSON.
// The "msg" and "ts" keys are reserved and overwrite any fields with the same name.
func (s *SimpleLogger) Log(msg string, fields map[string]interface{}) error {
	m := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		m[k] = v
	}
	m["msg"] = msg
	m["ts"] = s.now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("error marshaling log message %q: %w", msg, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(append(b, '\n'))
	if err != nil {
		return fmt.Errorf("error writing log message %q: %w", msg, err)
	}
	return nil
}

func NewSimpleLogger(w io.Writer) *SimpleLogger {
	return &SimpleLogger{
		writer: w,
		now:    time.Now,
	}
}
