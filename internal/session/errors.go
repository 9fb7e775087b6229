package session

import "errors"

// ErrEmptyBatch marks a dispatch that had no frames to summarize.
var ErrEmptyBatch = errors.New("no frames captured since last dispatch")
