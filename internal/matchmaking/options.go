// Package matchmaking implements the per-mode waiting pools and the
// periodic scan that assembles rating-balanced matches.
package matchmaking

import (
	"time"

	"github.com/okian/arena/pkg/logger"
)

// Option applies a configuration option to the Queue.
type Option func(*Queue)

// WithBaseTolerance sets the base rating tolerance before wait widening.
func WithBaseTolerance(tolerance float64) Option {
	return func(q *Queue) {
		if tolerance > 0 {
			q.baseTolerance = tolerance
		}
	}
}

// WithMaxWait sets the wait time at which the effective tolerance reaches
// double the base.
func WithMaxWait(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.maxWait = d
		}
	}
}

// WithFoundBuffer sets the capacity of the found-match channel.
func WithFoundBuffer(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.foundBuffer = n
		}
	}
}

// WithClock overrides the queue clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithLogger sets a custom logger for the queue.
func WithLogger(l logger.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}
