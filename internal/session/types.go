package session

import (
	"context"
	"time"

	"github.com/sjawhar/screen-snark/internal/capture"
	"github.com/sjawhar/screen-snark/internal/commentary"
)

type Source interface {
	Capture(ctx context.Context) (capture.Frame, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, frames []capture.Frame, window time.Duration) (commentary.Commentary, error)
}

// Sink delivers a commentary to one channel. Sinks run in order and a failing
// sink never stops the ones after it.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, c commentary.Commentary) error
}

// Observer is told about every dispatch attempt, including failed and skipped ones.
type Observer interface {
	DispatchCompleted(d commentary.Dispatch)
}

// Status is a point-in-time view of the loop, safe to hand to other goroutines.
type Status struct {
	Running          bool      `json:"running"`
	StartedAt        time.Time `json:"started_at"`
	BufferedFrames   int       `json:"buffered_frames"`
	LastDispatch     time.Time `json:"last_dispatch"`
	LastStatus       string    `json:"last_status,omitempty"`
	Delivered        int       `json:"delivered"`
	Failed           int       `json:"failed"`
	Skipped          int       `json:"skipped"`
	CaptureFailures  int       `json:"capture_failures"`
	SampleInterval   string    `json:"sample_interval"`
	DispatchInterval string    `json:"dispatch_interval"`
}
