package commentary

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseValid(t *testing.T) {
	got, err := Parse(`{"mode": "sarcastic", "content": "Another tab? Bold strategy."}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Tone != "sarcastic" || got.Text != "Another tab? Bold strategy." {
		t.Fatalf("unexpected commentary: %#v", got)
	}
}

func TestParseStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"mode\": \"roast\", \"content\": \"Nice spreadsheet.\"}\n```"
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Tone != "roast" || got.Text != "Nice spreadsheet." {
		t.Fatalf("unexpected commentary: %#v", got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "not json", raw: "you are doing great"},
		{name: "missing content", raw: `{"mode": "teasing"}`},
		{name: "missing mode", raw: `{"content": "hello"}`},
		{name: "wrong type", raw: `{"mode": "teasing", "content": 42}`},
		{name: "blank content", raw: `{"mode": "teasing", "content": "   "}`},
		{name: "blank mode", raw: `{"mode": "", "content": "hello"}`},
		{name: "array", raw: `[{"mode": "teasing", "content": "hello"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if err == nil {
				t.Fatalf("expected error for %q", tt.raw)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestFormatLogLine(t *testing.T) {
	ts := time.Date(2026, 3, 4, 9, 5, 7, 0, time.Local)
	got := FormatLogLine(ts, Commentary{Tone: "sarcastic", Text: "Still on email."})
	want := "[2026-03-04 09:05:07] [SARCASTIC] Still on email."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatLogLineFoldsNewlines(t *testing.T) {
	ts := time.Date(2026, 3, 4, 9, 5, 7, 0, time.Local)
	got := FormatLogLine(ts, Commentary{Tone: "roast", Text: "line one\nline two\r\nline three"})
	if strings.ContainsAny(got, "\r\n") {
		t.Fatalf("expected single line, got %q", got)
	}
	if !strings.HasSuffix(got, "line one line two line three") {
		t.Fatalf("unexpected folded text: %q", got)
	}
}

func TestSchemaJSONMentionsFields(t *testing.T) {
	s := SchemaJSON()
	for _, field := range []string{`"mode"`, `"content"`, `"required"`} {
		if !strings.Contains(s, field) {
			t.Fatalf("expected schema to contain %s, got %s", field, s)
		}
	}
}
