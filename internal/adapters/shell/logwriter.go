package shell

import (
	"bytes"
	"sync"

	"go.trai.ch/porcelain/internal/core/ports"
)

// logWriter forwards complete lines to the logger, prefixed with the command name.
// Partial lines are buffered until the next newline or Flush.
type logWriter struct {
	logger ports.Logger
	prefix string

	mu  sync.Mutex
	buf bytes.Buffer
}

func newLogWriter(logger ports.Logger, prefix string) *logWriter {
	return &logWriter{logger: logger, prefix: prefix}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Incomplete line: keep it for the next write.
			w.buf.Reset()
			w.buf.Write(line)
			break
		}
		w.emit(line[:len(line)-1])
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.Bytes())
		w.buf.Reset()
	}
}

func (w *logWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	w.logger.Info(w.prefix + string(line))
}
