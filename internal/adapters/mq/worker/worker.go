// Package worker runs the settlement consumer: the single goroutine that
// drains the results queue and applies each finished match exactly once.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/arena/internal/domain/match"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// Queue defines how the worker receives finished matches.
type Queue interface {
	Dequeue() <-chan match.Result
}

// Settler applies one finished match: rating deltas, ranking upserts, and
// collaborator notifications.
type Settler interface {
	Settle(ctx context.Context, r match.Result) error
}

// Worker consumes results until stopped. Running exactly one Worker per
// orchestrator is what keeps settlement single-writer.
type Worker struct {
	queue   Queue
	settler Settler

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a settlement worker.
func New(queue Queue, settler Settler, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		settler:  settler,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("settlement"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes results until ctx is canceled, Shutdown is called, or the
// queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case result, ok := <-w.queue.Dequeue():
			if !ok {
				return
			}
			w.process(ctx, result)
		}
	}
}

// Shutdown stops the worker and waits for the in-flight result to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "settlement shutdown timed out")
		return fmt.Errorf("settlement shutdown: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, result match.Result) {
	start := time.Now()
	err := w.settler.Settle(ctx, result)
	metrics.RecordSettlementLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSettlementError()
		w.logger.Error(ctx, "settlement failed",
			logger.String("matchID", result.MatchID),
			logger.Error(err),
		)
	}
}
