package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sjawhar/screen-snark/internal/commentary"
)

type Deps struct {
	Source     Source
	Summarizer Summarizer
	Sinks      []Sink
	Observers  []Observer
	Logger     *slog.Logger
}

type Options struct {
	SampleInterval   time.Duration
	DispatchInterval time.Duration
	SummarizeTimeout time.Duration
	DeliverTimeout   time.Duration

	// Now and Sleep default to the wall clock. Sleep must return ctx.Err()
	// once ctx is done.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Loop samples the screen on a fast cadence and, every dispatch interval,
// turns the accumulated frames into one commentary delivered to every sink.
// Sampling, summarizing and delivery all happen on the goroutine calling Run.
type Loop struct {
	deps   Deps
	opts   Options
	logger *slog.Logger

	buffer *FrameBuffer
	clock  *DispatchClock

	mu     sync.Mutex
	status Status
}

func NewLoop(deps Deps, opts Options) *Loop {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = time.Minute
	}
	if opts.DispatchInterval <= 0 {
		opts.DispatchInterval = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{
		deps:   deps,
		opts:   opts,
		logger: logger,
		buffer: NewFrameBuffer(),
		clock:  NewDispatchClock(opts.Now()),
		status: Status{
			SampleInterval:   opts.SampleInterval.String(),
			DispatchInterval: opts.DispatchInterval.String(),
		},
	}
}

// Run blocks until ctx is cancelled and returns the error that ended the
// sleep, normally ctx.Err(). Frames still buffered at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	start := l.opts.Now()
	l.clock.Reset(start)

	l.mu.Lock()
	l.status.Running = true
	l.status.StartedAt = start
	l.status.LastDispatch = start
	l.mu.Unlock()

	l.logger.Info("session loop started",
		"sample_interval", l.opts.SampleInterval,
		"dispatch_interval", l.opts.DispatchInterval)

	for {
		if err := l.opts.Sleep(ctx, l.opts.SampleInterval); err != nil {
			dropped := len(l.buffer.Flush())
			l.mu.Lock()
			l.status.Running = false
			l.status.BufferedFrames = 0
			l.mu.Unlock()
			l.logger.Info("session loop stopped", "dropped_frames", dropped)
			return err
		}
		l.Step(ctx)
	}
}

// Step samples one frame and dispatches if the dispatch interval has elapsed.
func (l *Loop) Step(ctx context.Context) {
	captured := l.sample(ctx)

	now := l.opts.Now()
	if l.clock.Due(now, l.opts.DispatchInterval) {
		l.dispatch(ctx, now)
	}

	l.mu.Lock()
	l.status.BufferedFrames = l.buffer.Len()
	if !captured {
		l.status.CaptureFailures++
	}
	l.mu.Unlock()
}

// Status returns a snapshot of the loop state.
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Loop) sample(ctx context.Context) bool {
	err := guard(func() error {
		f, err := l.deps.Source.Capture(ctx)
		if err != nil {
			return err
		}
		l.buffer.Add(f)
		return nil
	})
	if err != nil {
		l.logger.Warn("screen capture failed", "error", err)
		return false
	}
	return true
}

func (l *Loop) dispatch(ctx context.Context, now time.Time) {
	batch := l.buffer.Flush()
	l.clock.Reset(now)

	d := commentary.Dispatch{
		At:         now,
		FrameCount: len(batch),
		Duration:   l.opts.DispatchInterval,
	}

	if len(batch) == 0 {
		d.Status = commentary.StatusSkipped
		d.Error = ErrEmptyBatch.Error()
		l.logger.Warn("dispatch skipped", "error", ErrEmptyBatch)
		l.complete(d)
		return
	}

	sctx, cancel := withTimeout(ctx, l.opts.SummarizeTimeout)
	var c commentary.Commentary
	err := guard(func() error {
		var err error
		c, err = l.deps.Summarizer.Summarize(sctx, batch, l.opts.DispatchInterval)
		return err
	})
	cancel()
	if err != nil {
		d.Status = commentary.StatusFailed
		d.Error = err.Error()
		l.logger.Error("summarization failed, skipping delivery", "frames", len(batch), "error", err)
		l.complete(d)
		return
	}

	l.logger.Info("commentary ready", "frames", len(batch), "tone", c.Tone)
	d.Commentary = c
	d.Status = commentary.StatusDelivered
	if err := l.deliver(ctx, c); err != nil {
		d.Error = err.Error()
	}
	l.complete(d)
}

// deliver runs every sink in order and returns the joined sink failures.
func (l *Loop) deliver(ctx context.Context, c commentary.Commentary) error {
	var errs []error
	for _, sink := range l.deps.Sinks {
		dctx, cancel := withTimeout(ctx, l.opts.DeliverTimeout)
		err := guard(func() error { return sink.Deliver(dctx, c) })
		cancel()
		if err != nil {
			l.logger.Error("delivery failed", "sink", sink.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (l *Loop) complete(d commentary.Dispatch) {
	l.mu.Lock()
	l.status.LastDispatch = d.At
	l.status.LastStatus = d.Status
	switch d.Status {
	case commentary.StatusDelivered:
		l.status.Delivered++
	case commentary.StatusFailed:
		l.status.Failed++
	case commentary.StatusSkipped:
		l.status.Skipped++
	}
	l.mu.Unlock()

	for _, o := range l.deps.Observers {
		if err := guard(func() error { o.DispatchCompleted(d); return nil }); err != nil {
			l.logger.Error("dispatch observer failed", "error", err)
		}
	}
}

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
