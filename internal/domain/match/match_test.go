package match_test

import (
	"testing"
	"time"

	"github.com/okian/arena/internal/domain/match"
	"github.com/okian/arena/internal/domain/mode"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeClock lets tests drive the match clock deterministically.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMatchLifecycle(t *testing.T) {
	Convey("Given a fresh 1v1 match", t, func() {
		clock := newFakeClock()
		var results []match.Result
		m := match.New("m-1", mode.Duel, []string{"alice"}, []string{"bob"},
			match.WithClock(clock.Now),
			match.WithEndHook(func(r match.Result) { results = append(results, r) }),
		)

		Convey("Then it starts in Waiting", func() {
			So(m.State(), ShouldEqual, match.Waiting)
		})

		Convey("When a kill arrives before Start", func() {
			applied := m.RecordKill("alice", "bob")

			Convey("Then it is dropped silently", func() {
				So(applied, ShouldBeFalse)
				So(m.View().Team1Kills, ShouldEqual, 0)
			})
		})

		Convey("When the match starts", func() {
			m.Start(5 * time.Minute)
			So(m.State(), ShouldEqual, match.InProgress)

			Convey("Then a duplicate Start is a no-op", func() {
				clock.Advance(time.Minute)
				m.Start(5 * time.Minute)
				So(m.TimeRemaining(), ShouldEqual, 4*time.Minute)
			})

			Convey("And ten kills for team1 end the match with winner 1", func() {
				for i := 0; i < 10; i++ {
					clock.Advance(10 * time.Second)
					So(m.RecordKill("alice", "bob"), ShouldBeTrue)
				}

				So(m.State(), ShouldEqual, match.Ended)
				So(len(results), ShouldEqual, 1)
				So(results[0].Winner, ShouldEqual, match.Team1)
				So(results[0].Team1Kills, ShouldEqual, 10)
				So(results[0].Stats["alice"].Kills, ShouldEqual, 10)
				So(results[0].Stats["bob"].Deaths, ShouldEqual, 10)

				Convey("And a repeat End leaves state unchanged and emits nothing", func() {
					m.End(match.Team2)
					So(m.State(), ShouldEqual, match.Ended)
					So(len(results), ShouldEqual, 1)
				})

				Convey("And late kills after the end are dropped", func() {
					So(m.RecordKill("bob", "alice"), ShouldBeFalse)
					So(results[0].Team2Kills, ShouldEqual, 0)
				})
			})
		})
	})
}

func TestMatchScoring(t *testing.T) {
	Convey("Given a started 2v2 match", t, func() {
		clock := newFakeClock()
		m := match.New("m-2", mode.Doubles, []string{"a1", "a2"}, []string{"b1", "b2"},
			match.WithClock(clock.Now),
		)
		m.Start(8 * time.Minute)

		Convey("When the first kill of the match lands", func() {
			m.RecordKill("a1", "b1")

			Convey("Then it scores base plus the first-blood bonus", func() {
				So(m.View().Team1Score, ShouldEqual, 250)
			})
		})

		Convey("When the same killer scores twice within five seconds", func() {
			m.RecordKill("a1", "b1")
			clock.Advance(3 * time.Second)
			m.RecordKill("a1", "b2")

			Convey("Then the second kill carries the multi-kill bonus", func() {
				// 250 first blood + (100 base + 50 multi-kill)
				So(m.View().Team1Score, ShouldEqual, 400)
			})
		})

		Convey("When a killer reaches three cumulative kills", func() {
			m.RecordKill("a1", "b1")
			clock.Advance(time.Minute)
			m.RecordKill("a1", "b2")
			clock.Advance(time.Minute)
			m.RecordKill("a1", "b1")

			Convey("Then the spree bonus pays 50 per kill beyond two", func() {
				// 250 + 100 + (100 + 50)
				So(m.View().Team1Score, ShouldEqual, 500)
			})

			Convey("And the spree survives the killer dying", func() {
				clock.Advance(time.Minute)
				m.RecordKill("b1", "a1")
				clock.Advance(time.Minute)
				m.RecordKill("a1", "b2")

				// fourth kill still pays spree: 100 + 50*(4-2)
				So(m.View().Team1Score, ShouldEqual, 700)
			})
		})

		Convey("When a kill names a player outside the match", func() {
			applied := m.RecordKill("a1", "stranger")

			Convey("Then it is dropped", func() {
				So(applied, ShouldBeFalse)
				So(m.View().Team1Kills, ShouldEqual, 0)
			})
		})

		Convey("Then the win condition counts raw kills, not points", func() {
			view := m.View()
			So(view.KillsToWin, ShouldEqual, 20)
		})
	})
}

func TestMatchTimeLimit(t *testing.T) {
	Convey("Given a started match near its deadline", t, func() {
		clock := newFakeClock()
		var results []match.Result
		m := match.New("m-3", mode.Duel, []string{"alice"}, []string{"bob"},
			match.WithClock(clock.Now),
			match.WithEndHook(func(r match.Result) { results = append(results, r) }),
		)
		m.Start(5 * time.Minute)

		Convey("When a tick fires before the deadline", func() {
			clock.Advance(4 * time.Minute)
			m.Tick()

			Convey("Then the match keeps running", func() {
				So(m.State(), ShouldEqual, match.InProgress)
				So(m.TimeRemaining(), ShouldEqual, time.Minute)
			})
		})

		Convey("When the clock expires with team2 ahead on score", func() {
			m.RecordKill("bob", "alice")
			clock.Advance(5 * time.Minute)
			m.Tick()

			Convey("Then team2 wins on points", func() {
				So(m.State(), ShouldEqual, match.Ended)
				So(results[0].Winner, ShouldEqual, match.Team2)
			})
		})

		Convey("When the clock expires with scores tied", func() {
			clock.Advance(5 * time.Minute)
			m.Tick()

			Convey("Then the match is a draw with team id 0", func() {
				So(results[0].Winner, ShouldEqual, match.TeamNone)
			})
		})
	})
}

func TestMatchInvariants(t *testing.T) {
	Convey("Given a matchmaker defect producing bad rosters", t, func() {
		Convey("Then mismatched team sizes panic", func() {
			So(func() {
				match.New("bad", mode.Doubles, []string{"a1"}, []string{"b1", "b2"})
			}, ShouldPanic)
		})

		Convey("Then a player on both teams panics", func() {
			So(func() {
				match.New("bad", mode.Duel, []string{"a1"}, []string{"a1"})
			}, ShouldPanic)
		})
	})
}
