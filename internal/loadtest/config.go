// Package loadtest drives a running arena service end to end: it queues
// simulated players, plays out their matches with kill events, and checks
// the resulting leaderboard.
package loadtest

import "time"

// Config holds configuration for one load test run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Players  int           // Number of simulated players
	Mode     string        // Mode to queue into
	Workers  int           // Number of concurrent match drivers
	Timeout  time.Duration // HTTP request timeout
	Duration time.Duration // How long to keep driving matches
	Verbose  bool          // Enable verbose logging
}

// Stats accumulates counters over a run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	PlayersQueued   int64
	MatchesDriven   int64
	KillsSubmitted  int64
	KillsApplied    int64
	KillsDuplicate  int64
	RequestFailures int64
}
