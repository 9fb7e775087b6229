package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
)

// ErrNoPlayer is returned when none of the playback utilities is installed.
var ErrNoPlayer = errors.New("no audio player found (tried afplay, ffplay, mpg123)")

type command struct {
	name string
	args []string
}

var defaultChain = []command{
	{name: "afplay"},
	{name: "ffplay", args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{name: "mpg123", args: []string{"-q"}},
}

// Player plays an audio file to completion with the first local utility
// that works.
type Player struct {
	chain    []command
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

func NewPlayer() *Player {
	return &Player{
		chain:    defaultChain,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

// Play blocks until playback finishes or ctx ends.
func (p *Player) Play(ctx context.Context, path string) error {
	var errs []error
	for _, c := range p.chain {
		bin, err := p.lookPath(c.name)
		if err != nil {
			continue
		}

		args := append(append([]string(nil), c.args...), path)
		if err := p.run(ctx, bin, args...); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		return nil
	}

	if len(errs) == 0 {
		return ErrNoPlayer
	}
	return fmt.Errorf("play %s: %w", filepath.Base(path), errors.Join(errs...))
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
