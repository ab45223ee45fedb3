package mode_test

import (
	"testing"

	"github.com/okian/arena/internal/domain/mode"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	Convey("Given the mode catalog", t, func() {
		Convey("Then every listed mode should be valid", func() {
			for _, m := range mode.All() {
				So(mode.Valid(m), ShouldBeTrue)
			}
		})

		Convey("Then team sizes should follow the fixed lookup", func() {
			So(mode.PlayersPerTeam(mode.Duel), ShouldEqual, 1)
			So(mode.PlayersPerTeam(mode.Doubles), ShouldEqual, 2)
			So(mode.PlayersPerTeam(mode.Trios), ShouldEqual, 3)
			So(mode.PlayersPerTeam(mode.Squads), ShouldEqual, 5)
			So(mode.PlayersPerTeam(mode.FreeForAll), ShouldEqual, 1)
		})

		Convey("Then kills-to-win should be mode dependent", func() {
			So(mode.RulesFor(mode.Duel).KillsToWin, ShouldEqual, 10)
			So(mode.RulesFor(mode.Doubles).KillsToWin, ShouldEqual, 20)
			So(mode.RulesFor(mode.Trios).KillsToWin, ShouldEqual, 20)
			So(mode.RulesFor(mode.Squads).KillsToWin, ShouldEqual, 50)
		})

		Convey("Then match size should be twice the team size", func() {
			So(mode.MatchSize(mode.Squads), ShouldEqual, 10)
			So(mode.MatchSize(mode.FreeForAll), ShouldEqual, 2)
		})

		Convey("When asked about an unknown mode", func() {
			So(mode.Valid(mode.Mode("4v4")), ShouldBeFalse)

			Convey("Then RulesFor should fall back to the default mode", func() {
				So(mode.RulesFor(mode.Mode("4v4")), ShouldResemble, mode.RulesFor(mode.DefaultMode))
			})
		})
	})
}
