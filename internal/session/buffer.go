package session

import "github.com/sjawhar/screen-snark/internal/capture"

// FrameBuffer accumulates frames between dispatches in capture order.
// It is owned by the loop goroutine and is not safe for concurrent use.
type FrameBuffer struct {
	frames []capture.Frame
}

// NewFrameBuffer creates an empty frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Add appends a frame to the buffer.
func (b *FrameBuffer) Add(f capture.Frame) {
	b.frames = append(b.frames, f)
}

// Flush returns all buffered frames oldest-first and empties the buffer.
// Returns nil if the buffer is empty.
func (b *FrameBuffer) Flush() []capture.Frame {
	if len(b.frames) == 0 {
		return nil
	}
	out := b.frames
	b.frames = nil
	return out
}

// Len returns the number of frames currently buffered.
func (b *FrameBuffer) Len() int {
	return len(b.frames)
}
