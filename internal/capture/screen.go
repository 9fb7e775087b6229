package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"
)

// AllDisplays captures the bounding rectangle of every active display.
const AllDisplays = -1

// ErrNoDisplay is returned when no active display can be captured.
var ErrNoDisplay = errors.New("no active display")

// Screen captures full-screen frames from the local desktop.
type Screen struct {
	display int

	numDisplays   func() int
	displayBounds func(int) image.Rectangle
	captureRect   func(image.Rectangle) (*image.RGBA, error)
	now           func() time.Time
}

func NewScreen(display int) *Screen {
	return &Screen{
		display:       display,
		numDisplays:   screenshot.NumActiveDisplays,
		displayBounds: screenshot.GetDisplayBounds,
		captureRect:   screenshot.CaptureRect,
		now:           time.Now,
	}
}

// Capture grabs one frame. The capture itself is not interruptible; ctx is
// only checked before starting.
func (s *Screen) Capture(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	bounds, err := s.bounds()
	if err != nil {
		return Frame{}, err
	}

	img, err := s.captureRect(bounds)
	if err != nil {
		return Frame{}, fmt.Errorf("capture display %d: %w", s.display, err)
	}
	return Frame{Image: img, CapturedAt: s.now()}, nil
}

func (s *Screen) bounds() (image.Rectangle, error) {
	n := s.numDisplays()
	if n <= 0 {
		return image.Rectangle{}, ErrNoDisplay
	}

	if s.display == AllDisplays {
		var union image.Rectangle
		for i := 0; i < n; i++ {
			union = union.Union(s.displayBounds(i))
		}
		return union, nil
	}

	if s.display < 0 || s.display >= n {
		return image.Rectangle{}, fmt.Errorf("display %d out of range (%d active): %w", s.display, n, ErrNoDisplay)
	}
	return s.displayBounds(s.display), nil
}
