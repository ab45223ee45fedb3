package repository

import "errors"

// Sentinel kinds for ranking table errors.
var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidPage  = errors.New("invalid page parameters")
)
