// Package mode defines the arena game-mode catalog.
package mode

import "time"

// Mode identifies an arena game mode.
type Mode string

// Supported arena modes.
const (
	Duel        Mode = "1v1"
	Doubles     Mode = "2v2"
	Trios       Mode = "3v3"
	Squads      Mode = "5v5"
	FreeForAll  Mode = "ffa"
	DefaultMode      = Duel
)

// Rules bundles the fixed parameters of a mode.
type Rules struct {
	PlayersPerTeam int
	KillsToWin     int
	TimeLimit      time.Duration
}

// catalog holds the fixed per-mode rule set. FFA runs as a single-entrant
// bracket through the same two-slot pipeline as 1v1.
var catalog = map[Mode]Rules{
	Duel:       {PlayersPerTeam: 1, KillsToWin: 10, TimeLimit: 5 * time.Minute},
	Doubles:    {PlayersPerTeam: 2, KillsToWin: 20, TimeLimit: 8 * time.Minute},
	Trios:      {PlayersPerTeam: 3, KillsToWin: 20, TimeLimit: 8 * time.Minute},
	Squads:     {PlayersPerTeam: 5, KillsToWin: 50, TimeLimit: 12 * time.Minute},
	FreeForAll: {PlayersPerTeam: 1, KillsToWin: 10, TimeLimit: 5 * time.Minute},
}

// Valid reports whether m names a known mode.
func Valid(m Mode) bool {
	_, ok := catalog[m]
	return ok
}

// RulesFor returns the rule set for m. Unknown modes fall back to the
// default mode's rules; callers are expected to validate first.
func RulesFor(m Mode) Rules {
	if r, ok := catalog[m]; ok {
		return r
	}
	return catalog[DefaultMode]
}

// PlayersPerTeam returns the team size for m.
func PlayersPerTeam(m Mode) int {
	return RulesFor(m).PlayersPerTeam
}

// MatchSize returns the total number of entrants a match of mode m needs.
func MatchSize(m Mode) int {
	return PlayersPerTeam(m) * 2
}

// All returns every known mode in a fixed order.
func All() []Mode {
	return []Mode{Duel, Doubles, Trios, Squads, FreeForAll}
}
