package service

import "errors"

// Sentinel kinds for recorder errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("result recorder is saturated")
	ErrStoreClosed  = errors.New("standings store already closed")
)
