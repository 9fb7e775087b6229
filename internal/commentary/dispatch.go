package commentary

import "time"

const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Dispatch records the outcome of one dispatch attempt.
type Dispatch struct {
	ID         int64         `json:"id"`
	At         time.Time     `json:"at"`
	FrameCount int           `json:"frame_count"`
	Duration   time.Duration `json:"duration_ns"`
	Status     string        `json:"status"`
	Commentary Commentary    `json:"commentary"`
	Error      string        `json:"error,omitempty"`
}
