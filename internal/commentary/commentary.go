package commentary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// LogTimeLayout is the wall-clock stamp used in log lines.
const LogTimeLayout = "2006-01-02 15:04:05"

// ErrInvalid is returned when a model reply does not match the commentary schema.
var ErrInvalid = errors.New("invalid commentary")

// Commentary is one remark produced for a batch of frames.
type Commentary struct {
	Tone string `json:"tone"`
	Text string `json:"text"`
}

// wire is the JSON contract the model must answer with.
type wire struct {
	Mode    string `json:"mode"`
	Content string `json:"content"`
}

// Schema constrains model output to {"mode": ..., "content": ...}.
var Schema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"mode": {
			Type:        jsonschema.String,
			Description: "tone of the remark, e.g. 'sarcastic', 'roast', 'teasing', 'mocking'",
		},
		"content": {
			Type:        jsonschema.String,
			Description: "the witty remark itself, at most a couple of lines",
		},
	},
	Required:             []string{"mode", "content"},
	AdditionalProperties: false,
}

// SchemaName identifies the schema to providers that want a name.
const SchemaName = "commentary"

// SchemaJSON renders Schema for inclusion in prompts.
func SchemaJSON() string {
	data, err := json.MarshalIndent(&Schema, "", "  ")
	if err != nil {
		return `{"mode": "<tone>", "content": "<text>"}`
	}
	return string(data)
}

// Parse validates raw model output against Schema and returns the commentary.
// Both fields must be present, strings, and non-blank.
func Parse(raw string) (Commentary, error) {
	body := stripCodeFence(strings.TrimSpace(raw))
	if body == "" {
		return Commentary{}, fmt.Errorf("%w: empty reply", ErrInvalid)
	}

	var w wire
	if err := jsonschema.VerifySchemaAndUnmarshal(Schema, []byte(body), &w); err != nil {
		return Commentary{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	c := Commentary{Tone: strings.TrimSpace(w.Mode), Text: strings.TrimSpace(w.Content)}
	if c.Tone == "" || c.Text == "" {
		return Commentary{}, fmt.Errorf("%w: blank mode or content", ErrInvalid)
	}
	return c, nil
}

// FormatLogLine renders "[YYYY-MM-DD HH:MM:SS] [TONE] text". Line breaks in the
// text are folded so one commentary is always one line.
func FormatLogLine(ts time.Time, c Commentary) string {
	return fmt.Sprintf("[%s] [%s] %s", ts.Format(LogTimeLayout), strings.ToUpper(c.Tone), singleLine(c.Text))
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)), " ")
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
