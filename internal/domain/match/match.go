// Package match implements the arena contest state machine: team rosters,
// kill scoring with bonuses, win-condition evaluation, and the terminal
// result emitted when a contest ends.
package match

import (
	"fmt"
	"sync"
	"time"

	"github.com/okian/arena/internal/domain/mode"
)

// Team identifies a side of a match. TeamNone marks a draw.
type Team int

// Team indicators carried by results.
const (
	TeamNone Team = 0
	Team1    Team = 1
	Team2    Team = 2
)

// State is the lifecycle phase of a match.
type State int

// Lifecycle states. Transitions only move forward.
const (
	Waiting State = iota
	InProgress
	Ended
)

// String returns the lowercase state name for logs and API payloads.
func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case InProgress:
		return "in_progress"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Kill scoring parameters. The point bonuses affect the displayed team
// score only; the win condition runs on raw kill counts.
const (
	baseKillScore   = 100
	firstBloodBonus = 150
	spreeThreshold  = 3
	spreeBonusStep  = 50
	multiKillBonus  = 50
	multiKillWindow = 5 * time.Second
)

// PlayerStats tallies one participant's kills and deaths within a match.
type PlayerStats struct {
	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`
}

// Result is the terminal notification emitted exactly once per match.
type Result struct {
	MatchID    string
	Mode       mode.Mode
	Winner     Team
	Team1      []string
	Team2      []string
	Team1Score int
	Team2Score int
	Team1Kills int
	Team2Kills int
	Stats      map[string]PlayerStats
	Duration   time.Duration
}

// Match is a single contest. All methods are safe for concurrent use;
// state is guarded by one mutex per match.
type Match struct {
	mu sync.Mutex

	id    string
	mode  mode.Mode
	rules mode.Rules

	team1 []string
	team2 []string
	side  map[string]Team

	state     State
	startTime time.Time
	deadline  time.Time

	team1Score int
	team2Score int
	team1Kills int
	team2Kills int
	stats      map[string]*PlayerStats

	lastKiller   string
	lastKillTime time.Time

	now     func() time.Time
	endHook func(Result)
}

// Option applies a configuration option to a Match.
type Option func(*Match)

// WithClock overrides the match clock, used by the scheduler tests.
func WithClock(now func() time.Time) Option {
	return func(m *Match) {
		if now != nil {
			m.now = now
		}
	}
}

// WithEndHook registers the function invoked exactly once when the match
// reaches Ended. The hook runs outside the match lock.
func WithEndHook(hook func(Result)) Option {
	return func(m *Match) {
		m.endHook = hook
	}
}

// New constructs a match in the Waiting state. Team sizes must both equal
// the mode's players-per-team; a mismatch is a programming defect in the
// matchmaker and panics rather than producing a lopsided contest.
func New(id string, m mode.Mode, team1, team2 []string, opts ...Option) *Match {
	rules := mode.RulesFor(m)
	if len(team1) != rules.PlayersPerTeam || len(team2) != rules.PlayersPerTeam {
		panic(fmt.Sprintf("match %s: team sizes %d/%d do not fit mode %s", id, len(team1), len(team2), m))
	}

	mt := &Match{
		id:    id,
		mode:  m,
		rules: rules,
		team1: append([]string(nil), team1...),
		team2: append([]string(nil), team2...),
		side:  make(map[string]Team, len(team1)+len(team2)),
		stats: make(map[string]*PlayerStats, len(team1)+len(team2)),
		now:   time.Now,
	}
	for _, p := range mt.team1 {
		mt.side[p] = Team1
		mt.stats[p] = &PlayerStats{}
	}
	for _, p := range mt.team2 {
		if _, dup := mt.side[p]; dup {
			panic(fmt.Sprintf("match %s: player %s on both teams", id, p))
		}
		mt.side[p] = Team2
		mt.stats[p] = &PlayerStats{}
	}
	for _, opt := range opts {
		opt(mt)
	}
	return mt
}

// ID returns the match identifier.
func (m *Match) ID() string { return m.id }

// Mode returns the match's game mode.
func (m *Match) Mode() mode.Mode { return m.mode }

// Start moves the match to InProgress and arms the deadline. Calling Start
// on an already started match is a benign no-op.
func (m *Match) Start(timeLimit time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Waiting {
		return
	}
	if timeLimit <= 0 {
		timeLimit = m.rules.TimeLimit
	}
	m.state = InProgress
	m.startTime = m.now()
	m.deadline = m.startTime.Add(timeLimit)
}

// RecordKill applies one kill event. Events outside InProgress, or naming
// players not in the match, are dropped silently: late deliveries around
// match boundaries are expected, not errors. Returns true if the event was
// applied.
func (m *Match) RecordKill(killer, victim string) bool {
	m.mu.Lock()

	if m.state != InProgress {
		m.mu.Unlock()
		return false
	}
	killerTeam, ok := m.side[killer]
	victimTeam, vok := m.side[victim]
	if !ok || !vok || killerTeam == victimTeam {
		m.mu.Unlock()
		return false
	}

	now := m.now()
	firstBlood := m.team1Kills == 0 && m.team2Kills == 0

	ks := m.stats[killer]
	ks.Kills++
	m.stats[victim].Deaths++

	points := baseKillScore
	if firstBlood {
		points += firstBloodBonus
	}
	// Spree pays on the cumulative kill total for the whole match; dying
	// does not reset it.
	if ks.Kills >= spreeThreshold {
		points += spreeBonusStep * (ks.Kills - 2)
	}
	if m.lastKiller == killer && now.Sub(m.lastKillTime) <= multiKillWindow {
		points += multiKillBonus
	}
	m.lastKiller = killer
	m.lastKillTime = now

	if killerTeam == Team1 {
		m.team1Score += points
		m.team1Kills++
	} else {
		m.team2Score += points
		m.team2Kills++
	}

	if winner, done := m.killWinLocked(); done {
		result := m.endLocked(winner)
		m.mu.Unlock()
		m.fireEndHook(result)
		return true
	}
	m.mu.Unlock()
	return true
}

// Tick checks the time-limit win condition. The scheduler is the only
// clock authority; matches own no timers of their own.
func (m *Match) Tick() {
	m.mu.Lock()

	if m.state != InProgress || m.now().Before(m.deadline) {
		m.mu.Unlock()
		return
	}
	result := m.endLocked(m.timeLimitWinnerLocked())
	m.mu.Unlock()
	m.fireEndHook(result)
}

// End forces the match into Ended with the given winner. Repeat calls
// leave the state unchanged and emit nothing.
func (m *Match) End(winner Team) {
	m.mu.Lock()
	if m.state == Ended {
		m.mu.Unlock()
		return
	}
	result := m.endLocked(winner)
	m.mu.Unlock()
	m.fireEndHook(result)
}

// State returns the current lifecycle state.
func (m *Match) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TimeRemaining returns the time left on the match clock. It is zero for
// matches that have not started or have ended.
func (m *Match) TimeRemaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != InProgress {
		return 0
	}
	remaining := m.deadline.Sub(m.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot is a point-in-time read of a match for queries.
type Snapshot struct {
	MatchID       string
	Mode          mode.Mode
	State         State
	Team1         []string
	Team2         []string
	Team1Score    int
	Team2Score    int
	Team1Kills    int
	Team2Kills    int
	KillsToWin    int
	Stats         map[string]PlayerStats
	TimeRemaining time.Duration
}

// View returns a snapshot of the match.
func (m *Match) View() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make(map[string]PlayerStats, len(m.stats))
	for p, st := range m.stats {
		stats[p] = *st
	}
	remaining := time.Duration(0)
	if m.state == InProgress {
		if r := m.deadline.Sub(m.now()); r > 0 {
			remaining = r
		}
	}
	return Snapshot{
		MatchID:       m.id,
		Mode:          m.mode,
		State:         m.state,
		Team1:         append([]string(nil), m.team1...),
		Team2:         append([]string(nil), m.team2...),
		Team1Score:    m.team1Score,
		Team2Score:    m.team2Score,
		Team1Kills:    m.team1Kills,
		Team2Kills:    m.team2Kills,
		KillsToWin:    m.rules.KillsToWin,
		Stats:         stats,
		TimeRemaining: remaining,
	}
}

// killWinLocked evaluates the kill-count win condition.
func (m *Match) killWinLocked() (Team, bool) {
	switch {
	case m.team1Kills >= m.rules.KillsToWin:
		return Team1, true
	case m.team2Kills >= m.rules.KillsToWin:
		return Team2, true
	default:
		return TeamNone, false
	}
}

// timeLimitWinnerLocked resolves the winner at the time limit: higher
// score wins, tied scores draw.
func (m *Match) timeLimitWinnerLocked() Team {
	switch {
	case m.team1Score > m.team2Score:
		return Team1
	case m.team2Score > m.team1Score:
		return Team2
	default:
		return TeamNone
	}
}

// endLocked freezes scoring and builds the terminal result. Callers must
// hold the lock and guarantee state != Ended.
func (m *Match) endLocked(winner Team) Result {
	m.state = Ended

	stats := make(map[string]PlayerStats, len(m.stats))
	for p, st := range m.stats {
		stats[p] = *st
	}
	duration := time.Duration(0)
	if !m.startTime.IsZero() {
		duration = m.now().Sub(m.startTime)
	}
	return Result{
		MatchID:    m.id,
		Mode:       m.mode,
		Winner:     winner,
		Team1:      append([]string(nil), m.team1...),
		Team2:      append([]string(nil), m.team2...),
		Team1Score: m.team1Score,
		Team2Score: m.team2Score,
		Team1Kills: m.team1Kills,
		Team2Kills: m.team2Kills,
		Stats:      stats,
		Duration:   duration,
	}
}

func (m *Match) fireEndHook(r Result) {
	if m.endHook != nil {
		m.endHook(r)
	}
}
