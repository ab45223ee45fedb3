package matchmaking

import "errors"

// Sentinel kinds for matchmaking errors.
var (
	ErrAlreadyQueued = errors.New("player already queued")
	ErrNotQueued     = errors.New("player not queued")
	ErrUnknownMode   = errors.New("unknown mode")
)
