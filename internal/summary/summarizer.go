package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sjawhar/screen-snark/internal/capture"
	"github.com/sjawhar/screen-snark/internal/commentary"
	"github.com/sjawhar/screen-snark/internal/config"
	"github.com/sjawhar/screen-snark/internal/llm"
)

// ErrNoFrames is returned when Summarize is called with nothing to look at.
var ErrNoFrames = errors.New("no frames to summarize")

type ClientFactory func(provider, model string) (llm.Client, error)

// Summarizer turns a batch of screen frames into one commentary using the
// configured persona preset.
type Summarizer struct {
	cfg     config.Summarization
	factory ClientFactory
	encode  func(capture.Frame) ([]byte, error)
}

func New(cfg config.Summarization, factory ClientFactory) *Summarizer {
	return &Summarizer{
		cfg:     cfg,
		factory: factory,
		encode:  capture.EncodePNG,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, frames []capture.Frame, window time.Duration) (commentary.Commentary, error) {
	if len(frames) == 0 {
		return commentary.Commentary{}, ErrNoFrames
	}

	preset, ok := s.cfg.Presets[s.cfg.Preset]
	if !ok {
		return commentary.Commentary{}, fmt.Errorf("unknown preset %q", s.cfg.Preset)
	}

	modelStr := preset.Model
	if modelStr == "" {
		modelStr = s.cfg.Model
	}
	provider, model, err := llm.ParseModel(modelStr)
	if err != nil {
		return commentary.Commentary{}, err
	}

	images := make([]llm.Image, 0, len(frames))
	for i, f := range frames {
		data, err := s.encode(f)
		if err != nil {
			slog.Warn("skipping frame", "index", i, "error", err)
			continue
		}
		images = append(images, llm.Image{MIMEType: capture.PNGMIMEType, Data: data})
	}
	if len(images) == 0 {
		return commentary.Commentary{}, fmt.Errorf("encode frames: %w", ErrNoFrames)
	}

	client, err := s.factory(provider, model)
	if err != nil {
		return commentary.Commentary{}, fmt.Errorf("create llm client: %w", err)
	}

	minutes := formatMinutes(window)
	system := strings.ReplaceAll(preset.SystemPrompt, "{{duration}}", minutes)
	system = strings.ReplaceAll(system, "{{schema}}", commentary.SchemaJSON())

	raw, err := client.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{
				Role:    "user",
				Content: fmt.Sprintf("Here are %d screenshots from the last %s minutes, oldest first.", len(images), minutes),
				Images:  images,
			},
		},
		Schema:     &commentary.Schema,
		SchemaName: commentary.SchemaName,
		MaxTokens:  s.cfg.MaxOutputTokens,
	})
	if err != nil {
		return commentary.Commentary{}, fmt.Errorf("generate commentary: %w", err)
	}

	c, err := commentary.Parse(raw)
	if err != nil {
		return commentary.Commentary{}, fmt.Errorf("parse commentary: %w", err)
	}
	return c, nil
}

// formatMinutes renders d in minutes without trailing zeros: 10m is "10", 90s is "1.5".
func formatMinutes(d time.Duration) string {
	return strconv.FormatFloat(d.Minutes(), 'f', -1, 64)
}
