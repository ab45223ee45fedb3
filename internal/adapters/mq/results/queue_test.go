package results_test

import (
	"context"
	"testing"

	"github.com/okian/arena/internal/adapters/mq/results"
	"github.com/okian/arena/internal/domain/match"
	"github.com/okian/arena/internal/domain/mode"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a results queue with capacity two", t, func() {
		q := results.NewInMemoryQueue(results.WithCapacity(2))

		Convey("When results are enqueued", func() {
			ok := q.Enqueue(ctx, match.Result{MatchID: "m-1", Mode: mode.Duel})
			So(ok, ShouldBeTrue)
			So(q.Len(), ShouldEqual, 1)

			Convey("Then they arrive on the dequeue channel in order", func() {
				So(q.Enqueue(ctx, match.Result{MatchID: "m-2", Mode: mode.Duel}), ShouldBeTrue)

				first := <-q.Dequeue()
				second := <-q.Dequeue()
				So(first.MatchID, ShouldEqual, "m-1")
				So(second.MatchID, ShouldEqual, "m-2")
			})

			Convey("And a full queue rejects without blocking", func() {
				So(q.Enqueue(ctx, match.Result{MatchID: "m-2"}), ShouldBeTrue)
				So(q.Enqueue(ctx, match.Result{MatchID: "m-3"}), ShouldBeFalse)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue is refused and the channel drains closed", func() {
				So(q.Enqueue(ctx, match.Result{MatchID: "m-9"}), ShouldBeFalse)
				_, open := <-q.Dequeue()
				So(open, ShouldBeFalse)
			})

			Convey("And closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
