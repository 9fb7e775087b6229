package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sjawhar/screen-snark/internal/commentary"
)

var logLinePattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[[^\]]+\] .+$`)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestLogWriterAppendFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.txt")
	w := NewLogWriter(path)

	ts := time.Date(2026, 2, 26, 10, 30, 5, 0, time.Local)
	if err := w.Append(ts, commentary.Commentary{Tone: "sarcastic", Text: "Ten tabs of the same doc."}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	want := "[2026-02-26 10:30:05] [SARCASTIC] Ten tabs of the same doc."
	if lines[0] != want {
		t.Fatalf("expected %q, got %q", want, lines[0])
	}
}

func TestLogWriterAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte("existing line\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	w := NewLogWriter(path)
	base := time.Date(2026, 2, 26, 10, 0, 0, 0, time.Local)
	const n = 5
	for i := 0; i < n; i++ {
		c := commentary.Commentary{Tone: "roast", Text: fmt.Sprintf("remark %d\nwith a break", i)}
		if err := w.Append(base.Add(time.Duration(i)*time.Minute), c); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}

	lines := readLines(t, path)
	if len(lines) != n+1 {
		t.Fatalf("expected %d lines, got %d", n+1, len(lines))
	}
	if lines[0] != "existing line" {
		t.Fatalf("expected existing content preserved, got %q", lines[0])
	}
	for i, line := range lines[1:] {
		if !logLinePattern.MatchString(line) {
			t.Fatalf("line %d does not match format: %q", i, line)
		}
		if !strings.Contains(line, fmt.Sprintf("[ROAST] remark %d with a break", i)) {
			t.Fatalf("line %d out of order: %q", i, line)
		}
	}
}

func TestLogWriterDeliverUsesClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	w := NewLogWriter(path)
	w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local) }

	if err := w.Deliver(context.Background(), commentary.Commentary{Tone: "teasing", Text: "hi"}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	lines := readLines(t, path)
	if lines[0] != "[2026-01-02 03:04:05] [TEASING] hi" {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if w.Name() != "log" {
		t.Fatalf("unexpected sink name %q", w.Name())
	}
}

func TestLogWriterUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}

	w := NewLogWriter(filepath.Join(blocker, "log.txt"))
	if err := w.Append(time.Now(), commentary.Commentary{Tone: "x", Text: "y"}); err == nil {
		t.Fatal("expected error writing under a regular file")
	}
}
