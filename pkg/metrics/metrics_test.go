package metrics_test

import (
	"testing"

	"github.com/okian/arena/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(registry))

		Convey("Then it registers without panicking", func() {
			So(m, ShouldNotBeNil)
		})

		Convey("Then the registry can be gathered", func() {
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the helpers record without panicking", func() {
			So(func() {
				metrics.UpdateQueueDepth("1v1", 4)
				metrics.RecordQueueJoin("1v1")
				metrics.RecordQueueLeave("1v1")
				metrics.RecordQueueWait("1v1", 12.5)
				metrics.RecordMatchFound("1v1")
				metrics.RecordScanDuration(0.4)
				metrics.RecordMatchStarted()
				metrics.RecordMatchEnded("team1")
				metrics.UpdateLiveMatches(2)
				metrics.RecordKillApplied()
				metrics.RecordKillDropped()
				metrics.RecordKillDuplicate()
				metrics.RecordRatingDelta(-20)
				metrics.UpdateRankingSize("1v1", 10)
				metrics.RecordRankingUpdateLatency(1.2)
				metrics.UpdateTrackedPlayers(10)
				metrics.UpdateResultsQueueSize(1)
				metrics.RecordResultsQueueDropped()
				metrics.RecordSettlementLatency(3.1)
				metrics.RecordSettlementError()
				metrics.RecordHTTPRequest("leaderboard", "GET", "200")
				metrics.RecordHTTPRequestDuration("leaderboard", "GET", "200", 5.0)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(8)
				metrics.RecordSystemGCPauseTime(0.1)
			}, ShouldNotPanic)
		})

		Convey("Then the scrape registry is available", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
