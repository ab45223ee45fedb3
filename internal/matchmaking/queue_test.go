package matchmaking_test

import (
	"testing"
	"time"

	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/internal/matchmaking"
	"github.com/okian/arena/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestQueueMembership(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		clock := newFakeClock()
		q := matchmaking.New(matchmaking.WithClock(clock.Now))

		Convey("When a player joins a 1v1 pool", func() {
			pos, err := q.Join("p1", "Player One", mode.Duel, 1200)
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 1)
			So(q.Count(mode.Duel), ShouldEqual, 1)

			Convey("Then a second join in any mode is rejected", func() {
				_, err := q.Join("p1", "Player One", mode.Squads, 1200)
				So(err, ShouldWrap, matchmaking.ErrAlreadyQueued)
			})

			Convey("And Position reports the wait so far", func() {
				clock.Advance(12 * time.Second)
				entry, pos, wait, err := q.Position("p1")
				So(err, ShouldBeNil)
				So(entry.Mode, ShouldEqual, mode.Duel)
				So(pos, ShouldEqual, 1)
				So(wait, ShouldEqual, 12*time.Second)
			})

			Convey("And Leave frees the player to join again", func() {
				So(q.Leave("p1"), ShouldBeTrue)
				So(q.Count(mode.Duel), ShouldEqual, 0)

				_, err := q.Join("p1", "Player One", mode.Squads, 1200)
				So(err, ShouldBeNil)
			})
		})

		Convey("When leaving without being queued", func() {
			Convey("Then it is reported but not fatal", func() {
				So(q.Leave("ghost"), ShouldBeFalse)
			})

			Convey("And Position returns not-queued", func() {
				_, _, _, err := q.Position("ghost")
				So(err, ShouldWrap, matchmaking.ErrNotQueued)
			})
		})

		Convey("When joining an unknown mode", func() {
			_, err := q.Join("p1", "Player One", mode.Mode("4v4"), 1200)
			So(err, ShouldWrap, matchmaking.ErrUnknownMode)
		})
	})
}

func TestToleranceWidening(t *testing.T) {
	Convey("Given a queue with base tolerance 200 and max wait 60s", t, func() {
		q := matchmaking.New(
			matchmaking.WithBaseTolerance(200),
			matchmaking.WithMaxWait(60*time.Second),
		)

		Convey("Then a fresh candidate has the base tolerance", func() {
			So(q.Tolerance(0), ShouldEqual, 200)
		})

		Convey("Then a candidate at max wait has exactly double", func() {
			So(q.Tolerance(60*time.Second), ShouldEqual, 400)
		})

		Convey("Then widening is linear in between", func() {
			So(q.Tolerance(30*time.Second), ShouldEqual, 300)
		})
	})
}

func TestScan(t *testing.T) {
	Convey("Given two close-rated players in a 1v1 pool", t, func() {
		clock := newFakeClock()
		q := matchmaking.New(
			matchmaking.WithClock(clock.Now),
			matchmaking.WithBaseTolerance(200),
			matchmaking.WithMaxWait(60*time.Second),
		)
		_, err := q.Join("low", "Low", mode.Duel, 1200)
		So(err, ShouldBeNil)
		clock.Advance(3 * time.Second)
		_, err = q.Join("high", "High", mode.Duel, 1205)
		So(err, ShouldBeNil)

		Convey("When a scan runs", func() {
			found := q.Scan()

			Convey("Then one balanced match is assembled", func() {
				So(len(found), ShouldEqual, 1)
				So(found[0].Mode, ShouldEqual, mode.Duel)
				So(len(found[0].Team1), ShouldEqual, 1)
				So(len(found[0].Team2), ShouldEqual, 1)
				So(found[0].Team1[0].PlayerID, ShouldEqual, "low")
				So(found[0].Team2[0].PlayerID, ShouldEqual, "high")
			})

			Convey("And the pool is drained", func() {
				So(q.Count(mode.Duel), ShouldEqual, 0)
			})

			Convey("And the match is emitted on the found channel", func() {
				select {
				case fm := <-q.Found():
					So(fm.Mode, ShouldEqual, mode.Duel)
				default:
					t.Fatal("expected a found match on the channel")
				}
			})

			Convey("And the matched players may queue again", func() {
				_, err := q.Join("low", "Low", mode.Duel, 1210)
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given players too far apart for the base tolerance", t, func() {
		clock := newFakeClock()
		q := matchmaking.New(
			matchmaking.WithClock(clock.Now),
			matchmaking.WithBaseTolerance(100),
			matchmaking.WithMaxWait(60*time.Second),
		)
		_, _ = q.Join("low", "Low", mode.Duel, 1000)
		_, _ = q.Join("high", "High", mode.Duel, 1150)

		Convey("When a scan runs immediately", func() {
			found := q.Scan()

			Convey("Then no match is produced and both stay queued", func() {
				So(found, ShouldBeEmpty)
				So(q.Count(mode.Duel), ShouldEqual, 2)
			})
		})

		Convey("When the candidates have waited long enough", func() {
			clock.Advance(45 * time.Second)
			found := q.Scan()

			Convey("Then the widened tolerance admits the pair", func() {
				// 150 gap vs 100 * (1 + 45/60) = 175 effective tolerance.
				So(len(found), ShouldEqual, 1)
			})
		})
	})

	Convey("Given six players in a 3v3 pool", t, func() {
		clock := newFakeClock()
		q := matchmaking.New(matchmaking.WithClock(clock.Now))
		ratings := map[string]int{
			"a": 1210, "b": 1190, "c": 1230, "d": 1180, "e": 1250, "f": 1205,
		}
		for id, r := range ratings {
			_, err := q.Join(id, id, mode.Trios, r)
			So(err, ShouldBeNil)
		}

		Convey("When a scan runs", func() {
			found := q.Scan()
			So(len(found), ShouldEqual, 1)
			fm := found[0]

			Convey("Then teams have equal size", func() {
				So(len(fm.Team1), ShouldEqual, 3)
				So(len(fm.Team2), ShouldEqual, 3)
			})

			Convey("Then parity assignment is deterministic on the sorted set", func() {
				// ascending: d(1180) b(1190) f(1205) a(1210) c(1230) e(1250)
				So(fm.Team1[0].PlayerID, ShouldEqual, "d")
				So(fm.Team2[0].PlayerID, ShouldEqual, "b")
				So(fm.Team1[1].PlayerID, ShouldEqual, "f")
				So(fm.Team2[1].PlayerID, ShouldEqual, "a")
				So(fm.Team1[2].PlayerID, ShouldEqual, "c")
				So(fm.Team2[2].PlayerID, ShouldEqual, "e")
			})
		})
	})

	Convey("Given an outlier inside a wider pool", t, func() {
		clock := newFakeClock()
		q := matchmaking.New(
			matchmaking.WithClock(clock.Now),
			matchmaking.WithBaseTolerance(200),
		)
		_, _ = q.Join("p1", "P1", mode.Duel, 1200)
		_, _ = q.Join("smurf", "Smurf", mode.Duel, 2400)
		_, _ = q.Join("p2", "P2", mode.Duel, 1210)

		Convey("When a scan runs", func() {
			found := q.Scan()

			Convey("Then the outlier is skipped, not matched", func() {
				So(len(found), ShouldEqual, 1)
				ids := []string{found[0].Team1[0].PlayerID, found[0].Team2[0].PlayerID}
				So(ids, ShouldNotContain, "smurf")
				So(q.Count(mode.Duel), ShouldEqual, 1)
			})
		})
	})
}
