package app

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	ErrUnknownMatch = errors.New("unknown match")
	ErrNotStarted   = errors.New("service not started")
)
