package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrQueueFull   = errors.New("result queue full")
	ErrQueueClosed = errors.New("result queue closed")
)
