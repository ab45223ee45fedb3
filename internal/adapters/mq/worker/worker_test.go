package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/arena/internal/adapters/mq/results"
	"github.com/okian/arena/internal/adapters/mq/worker"
	"github.com/okian/arena/internal/domain/match"
	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingSettler struct {
	mu      sync.Mutex
	settled []string
}

func (s *recordingSettler) Settle(_ context.Context, r match.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settled = append(s.settled, r.MatchID)
	return nil
}

func (s *recordingSettler) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.settled...)
}

func TestWorkerSettlesEachResultOnce(t *testing.T) {
	Convey("Given a running settlement worker", t, func() {
		q := results.NewInMemoryQueue(results.WithCapacity(8))
		settler := &recordingSettler{}
		w := worker.New(q, settler)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When three results are enqueued", func() {
			for _, id := range []string{"m-1", "m-2", "m-3"} {
				So(q.Enqueue(ctx, match.Result{MatchID: id, Mode: mode.Duel}), ShouldBeTrue)
			}

			Convey("Then each is settled exactly once, in order", func() {
				So(func() []string {
					deadline := time.Now().Add(2 * time.Second)
					for time.Now().Before(deadline) {
						if got := settler.ids(); len(got) == 3 {
							return got
						}
						time.Sleep(5 * time.Millisecond)
					}
					return settler.ids()
				}(), ShouldResemble, []string{"m-1", "m-2", "m-3"})
			})
		})

		Convey("When the queue closes", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then the worker drains and stops", func() {
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Second)
				defer cancelShutdown()
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}
