package server

import (
	"time"

	"github.com/sjawhar/screen-snark/internal/commentary"
)

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

type DispatchCompletedEvent struct {
	Event
	Status     string  `json:"status"`
	FrameCount int     `json:"frame_count"`
	Duration   float64 `json:"duration"`
	Tone       string  `json:"tone,omitempty"`
	Text       string  `json:"text,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}

func dispatchEvent(d commentary.Dispatch) DispatchCompletedEvent {
	return DispatchCompletedEvent{
		Event:      newEvent("dispatch_completed", d.At),
		Status:     d.Status,
		FrameCount: d.FrameCount,
		Duration:   d.Duration.Seconds(),
		Tone:       d.Commentary.Tone,
		Text:       d.Commentary.Text,
		Error:      d.Error,
	}
}
