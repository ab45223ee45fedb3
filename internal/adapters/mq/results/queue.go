// Package results carries terminal match results from live matches to the
// orchestrator's single settlement consumer. A bounded channel with one
// consumer gives each result exactly one handling.
package results

import (
	"context"
	"sync"

	"github.com/okian/arena/internal/domain/match"
	"github.com/okian/arena/pkg/metrics"
)

const defaultCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics
// for finished matches.
type Queue interface {
	// Enqueue adds a result. Returns false if the queue is closed or full.
	Enqueue(ctx context.Context, r match.Result) bool

	// Dequeue returns the channel results arrive on. The channel closes
	// when the queue closes.
	Dequeue() <-chan match.Result

	// Len returns the number of buffered results.
	Len() int

	// Close stops the queue; no new results can be enqueued.
	Close() error
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	results chan match.Result
	mu      sync.RWMutex
	closed  bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*options)

type options struct {
	capacity int
}

// WithCapacity bounds the number of buffered results.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// NewInMemoryQueue creates the results queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	o := options{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &InMemoryQueue{results: make(chan match.Result, o.capacity)}
}

// Enqueue adds a result without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r match.Result) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}
	select {
	case q.results <- r:
		metrics.UpdateResultsQueueSize(len(q.results))
		return true
	case <-ctx.Done():
		return false
	default:
		metrics.RecordResultsQueueDropped()
		return false
	}
}

// Dequeue returns the consumption channel.
func (q *InMemoryQueue) Dequeue() <-chan match.Result {
	return q.results
}

// Len returns the number of buffered results.
func (q *InMemoryQueue) Len() int {
	return len(q.results)
}

// Close stops the queue. Closing twice is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.results)
	q.closed = true
	return nil
}
