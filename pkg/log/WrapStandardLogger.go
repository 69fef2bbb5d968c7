// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

import (
	stdlog "log"
	"strings"
)

type standardWriter struct {
	logger *SimpleLogger
}

func (w *standardWriter) Write(p []byte) (int, error) {
	if err := w.logger.Log(strings.TrimSpace(string(p)), map[string]interface{}{}); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WrapStandardLogger returns a standard library logger that writes each line through the simple logger.
func WrapStandardLogger(logger *SimpleLogger) *stdlog.Logger {
	return stdlog.New(&standardWriter{logger: logger}, "", 0)
}
