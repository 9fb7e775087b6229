package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sjawhar/screen-snark/internal/commentary"
)

// LogWriter appends one line per commentary to a plain-text log file.
type LogWriter struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewLogWriter(path string) *LogWriter {
	return &LogWriter{path: path, now: time.Now}
}

func (w *LogWriter) Name() string { return "log" }

func (w *LogWriter) Deliver(_ context.Context, c commentary.Commentary) error {
	return w.Append(w.now(), c)
}

// Append writes c stamped with ts. Existing content is never rewritten.
func (w *LogWriter) Append(ts time.Time, c commentary.Commentary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", w.path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, commentary.FormatLogLine(ts, c)); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}

	return nil
}

func (w *LogWriter) Path() string {
	return w.path
}
