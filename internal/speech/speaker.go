package speech

import (
	"context"
	"fmt"
	"os"

	"github.com/sjawhar/screen-snark/internal/commentary"
)

// Synthesizer renders text to an audio file at path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, path string) error
}

type Player interface {
	Play(ctx context.Context, path string) error
}

// Speaker reads each commentary aloud. The temporary audio file is removed
// before Deliver returns, whether synthesis or playback failed or not.
type Speaker struct {
	synth   Synthesizer
	player  Player
	tempDir string
}

func NewSpeaker(synth Synthesizer, player Player) *Speaker {
	return &Speaker{synth: synth, player: player}
}

func (s *Speaker) Name() string { return "speech" }

func (s *Speaker) Deliver(ctx context.Context, c commentary.Commentary) error {
	f, err := os.CreateTemp(s.tempDir, "screen-snark-*.mp3")
	if err != nil {
		return fmt.Errorf("create temp audio file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp audio file: %w", err)
	}

	if err := s.synth.Synthesize(ctx, c.Text, path); err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	if err := s.player.Play(ctx, path); err != nil {
		return fmt.Errorf("play speech: %w", err)
	}
	return nil
}
