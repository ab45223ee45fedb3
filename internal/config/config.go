// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults come from New; file and env layers override them in Load.
// - External errors are wrapped via this package's sentinel kinds.
package config

import "time"

// Config contains process configuration for the arena service.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SchedulerTickMS is the interval of the single scheduler tick that
	// drives queue scans and match timeout checks.
	SchedulerTickMS int `koanf:"scheduler_tick_ms"`

	// BaseTolerance is the rating gap allowed between a candidate and the
	// running set average before wait widening.
	BaseTolerance float64 `koanf:"base_tolerance"`

	// MaxWaitSeconds is the wait at which the effective tolerance doubles.
	MaxWaitSeconds int `koanf:"max_wait_seconds"`

	// ResultsQueueSize bounds the settlement queue for finished matches.
	ResultsQueueSize int `koanf:"results_queue_size"`

	// FoundBuffer bounds the matchmaking found-match channel.
	FoundBuffer int `koanf:"found_buffer"`

	// DedupeSize bounds the kill-event idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New returns the defaults prior to file and env layering.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		SchedulerTickMS:     1000,
		BaseTolerance:       200,
		MaxWaitSeconds:      60,
		ResultsQueueSize:    1024,
		FoundBuffer:         256,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
	}
}

// SchedulerTick returns the tick interval as a duration.
func (c *Config) SchedulerTick() time.Duration {
	return time.Duration(c.SchedulerTickMS) * time.Millisecond
}

// MaxWait returns the tolerance-doubling wait as a duration.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSeconds) * time.Second
}
