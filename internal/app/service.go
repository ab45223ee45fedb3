// Package app provides the orchestrator: it owns the matchmaking queue,
// the rating store, the ranking table, and the set of live matches, and
// implements the dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/arena/internal/adapters/mq/results"
	"github.com/okian/arena/internal/adapters/mq/worker"
	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/dedupe"
	"github.com/okian/arena/internal/domain/match"
	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/internal/domain/rating"
	"github.com/okian/arena/internal/matchmaking"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// RewardNotifier receives per-player results of finished matches. The
// reward system grants currency; the orchestrator only forwards outcomes.
type RewardNotifier interface {
	GrantMatchReward(ctx context.Context, playerID string, won bool, kills, deaths int)
}

// TitleNotifier receives cumulative career counters after each finished
// match so the achievement system can evaluate unlock conditions.
type TitleNotifier interface {
	UpdateProgress(ctx context.Context, playerID string, totalKills, arenaWins int, highestTier rating.Tier)
}

type noopRewards struct{}

func (noopRewards) GrantMatchReward(context.Context, string, bool, int, int) {}

type noopTitles struct{}

func (noopTitles) UpdateProgress(context.Context, string, int, int, rating.Tier) {}

// liveMatch pairs a running match with the display names captured at
// enqueue time, so settlement can upsert rankings without an identity
// lookup.
type liveMatch struct {
	m     *match.Match
	names map[string]string
}

// Service is the orchestrator instance. Construct one per server process
// and pass it to callers; there is no ambient global lookup.
type Service struct {
	mu sync.RWMutex

	// Core components
	queue        *matchmaking.Queue
	ratings      *rating.Store
	rankings     repository.Store
	resultsQueue *results.InMemoryQueue
	settlement   *worker.Worker
	deduper      dedupe.Deduper
	live         map[string]*liveMatch

	// Configuration
	schedulerTick    time.Duration
	baseTolerance    float64
	maxWait          time.Duration
	foundBuffer      int
	resultsQueueSize int
	dedupeSize       int
	rewards          RewardNotifier
	titles           TitleNotifier
	now              func() time.Time

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSchedulerTick sets the interval of the single scheduler tick that
// drives queue scans and match timeout checks.
func WithSchedulerTick(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.schedulerTick = d
		}
	}
}

// WithBaseTolerance sets the matchmaking base rating tolerance.
func WithBaseTolerance(tolerance float64) Option {
	return func(s *Service) {
		if tolerance > 0 {
			s.baseTolerance = tolerance
		}
	}
}

// WithMaxWait sets the wait at which the matchmaking tolerance doubles.
func WithMaxWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.maxWait = d
		}
	}
}

// WithFoundBuffer sets the capacity of the found-match channel.
func WithFoundBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.foundBuffer = n
		}
	}
}

// WithResultsQueueSize bounds the settlement queue.
func WithResultsQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.resultsQueueSize = n
		}
	}
}

// WithDedupeSize bounds the kill-event idempotency cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithRewardNotifier sets the reward collaborator.
func WithRewardNotifier(r RewardNotifier) Option {
	return func(s *Service) {
		if r != nil {
			s.rewards = r
		}
	}
}

// WithTitleNotifier sets the title/achievement collaborator.
func WithTitleNotifier(t TitleNotifier) Option {
	return func(s *Service) {
		if t != nil {
			s.titles = t
		}
	}
}

// WithClock overrides the service clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		live:             make(map[string]*liveMatch),
		schedulerTick:    time.Second,
		baseTolerance:    200,
		maxWait:          60 * time.Second,
		foundBuffer:      256,
		resultsQueueSize: 1024,
		dedupeSize:       50_000,
		rewards:          noopRewards{},
		titles:           noopTitles{},
		now:              time.Now,
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the components and launches the scheduler, the
// found-match consumer, and the settlement worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("arena")
	}

	s.ratings = rating.NewStore()
	s.rankings = repository.NewRankStore()
	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = matchmaking.New(
		matchmaking.WithBaseTolerance(s.baseTolerance),
		matchmaking.WithMaxWait(s.maxWait),
		matchmaking.WithFoundBuffer(s.foundBuffer),
		matchmaking.WithClock(s.now),
		matchmaking.WithLogger(s.logger.Named("matchmaking")),
	)
	s.resultsQueue = results.NewInMemoryQueue(results.WithCapacity(s.resultsQueueSize))
	s.settlement = worker.New(s.resultsQueue, s, worker.WithLogger(s.logger.Named("settlement")))

	s.wg.Add(2)
	go s.runScheduler(ctx)
	go s.consumeFound(ctx)
	go s.settlement.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "arena service started",
		logger.Duration("schedulerTick", s.schedulerTick),
		logger.Float64("baseTolerance", s.baseTolerance),
		logger.Duration("maxWait", s.maxWait),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	_ = s.resultsQueue.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.settlement.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(shutdownCtx, "settlement worker did not stop cleanly", logger.Error(err))
	}
	s.logger.Info(context.Background(), "arena service stopped")
}

// runScheduler drives queue scans and match timeout checks from a single
// ticker. It is the only clock authority: matches own no timers.
func (s *Service) runScheduler(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.schedulerTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			start := time.Now()
			s.queue.Scan()
			s.tickMatches()
			metrics.RecordScanDuration(float64(time.Since(start).Milliseconds()))
		}
	}
}

// consumeFound starts a match for every assembled candidate set. It is the
// single consumer of the found channel.
func (s *Service) consumeFound(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case fm := <-s.queue.Found():
			s.startMatch(ctx, fm)
		}
	}
}

// startMatch constructs, registers, and starts the match for a found set.
func (s *Service) startMatch(ctx context.Context, fm matchmaking.FoundMatch) {
	id := uuid.NewString()
	names := make(map[string]string, len(fm.Team1)+len(fm.Team2))
	team1 := make([]string, len(fm.Team1))
	team2 := make([]string, len(fm.Team2))
	for i, e := range fm.Team1 {
		team1[i] = e.PlayerID
		names[e.PlayerID] = e.DisplayName
	}
	for i, e := range fm.Team2 {
		team2[i] = e.PlayerID
		names[e.PlayerID] = e.DisplayName
	}

	m := match.New(id, fm.Mode, team1, team2,
		match.WithClock(s.now),
		match.WithEndHook(s.enqueueResult),
	)

	s.mu.Lock()
	s.live[id] = &liveMatch{m: m, names: names}
	liveCount := len(s.live)
	s.mu.Unlock()

	m.Start(mode.RulesFor(fm.Mode).TimeLimit)

	metrics.RecordMatchStarted()
	metrics.UpdateLiveMatches(liveCount)
	s.logger.Info(ctx, "match started",
		logger.String("matchID", id),
		logger.String("mode", string(fm.Mode)),
		logger.Int("players", len(names)),
	)
}

// enqueueResult hands a finished match to the settlement queue. Fired by
// the match end hook exactly once per match.
func (s *Service) enqueueResult(r match.Result) {
	if !s.resultsQueue.Enqueue(context.Background(), r) {
		s.logger.Error(context.Background(), "results queue refused match; settlement lost",
			logger.String("matchID", r.MatchID),
		)
	}
}

// tickMatches runs the time-limit check on every live match.
func (s *Service) tickMatches() {
	s.mu.RLock()
	live := make([]*match.Match, 0, len(s.live))
	for _, lm := range s.live {
		live = append(live, lm.m)
	}
	s.mu.RUnlock()

	for _, m := range live {
		m.Tick()
	}
}

// Settle applies one finished match: the Elo delta from the team averages,
// ranking upserts, live-set removal, and collaborator notifications. It is
// invoked by the single settlement worker, which bounds rating and ranking
// writes to once per match completion.
func (s *Service) Settle(ctx context.Context, r match.Result) error {
	s.mu.Lock()
	lm, ok := s.live[r.MatchID]
	delete(s.live, r.MatchID)
	liveCount := len(s.live)
	s.mu.Unlock()

	metrics.UpdateLiveMatches(liveCount)
	if !ok {
		return fmt.Errorf("settle %s: %w", r.MatchID, ErrUnknownMatch)
	}

	avg1 := rating.TeamAverage(s.teamValues(r.Team1, r.Mode))
	avg2 := rating.TeamAverage(s.teamValues(r.Team2, r.Mode))

	// One delta from the team averages, applied to every participant.
	var delta int
	var outcome1, outcome2 rating.Outcome
	switch r.Winner {
	case match.Team1:
		delta = rating.TeamDelta(avg1, avg2, rating.ScoreWin)
		outcome1, outcome2 = rating.Win, rating.Loss
	case match.Team2:
		delta = rating.TeamDelta(avg2, avg1, rating.ScoreWin)
		outcome1, outcome2 = rating.Loss, rating.Win
	default:
		delta = rating.TeamDelta(avg1, avg2, rating.ScoreDraw)
		outcome1, outcome2 = rating.Draw, rating.Draw
	}
	metrics.RecordRatingDelta(delta)

	sign1, sign2 := +1, -1
	if r.Winner == match.Team2 {
		sign1, sign2 = -1, +1
	}
	s.settleTeam(ctx, r, lm, r.Team1, outcome1, sign1*delta)
	s.settleTeam(ctx, r, lm, r.Team2, outcome2, sign2*delta)

	metrics.RecordMatchEnded(outcomeLabel(r.Winner))
	metrics.UpdateTrackedPlayers(s.ratings.Count())
	s.logger.Info(ctx, "match settled",
		logger.String("matchID", r.MatchID),
		logger.String("mode", string(r.Mode)),
		logger.Int("winner", int(r.Winner)),
		logger.Int("delta", delta),
	)
	return nil
}

// settleTeam applies one side's outcome to every member.
func (s *Service) settleTeam(ctx context.Context, r match.Result, lm *liveMatch, team []string, outcome rating.Outcome, delta int) {
	won := outcome == rating.Win
	for _, playerID := range team {
		updated := s.ratings.ApplyResult(playerID, r.Mode, outcome, delta)

		stats := r.Stats[playerID]
		career := s.ratings.RecordMatchStats(playerID, r.Mode, stats.Kills, stats.Deaths)

		if err := s.rankings.Upsert(ctx, r.Mode, playerID, lm.names[playerID], updated.Value, updated.Wins, updated.Losses); err != nil {
			s.logger.Error(ctx, "ranking upsert failed",
				logger.String("playerID", playerID),
				logger.Error(err),
			)
		}

		s.rewards.GrantMatchReward(ctx, playerID, won, stats.Kills, stats.Deaths)
		s.titles.UpdateProgress(ctx, playerID, career.TotalKills, updated.Wins, career.HighestTier)
	}
}

func (s *Service) teamValues(team []string, m mode.Mode) []int {
	values := make([]int, len(team))
	for i, playerID := range team {
		values[i] = s.ratings.Get(playerID, m).Value
	}
	return values
}

func outcomeLabel(winner match.Team) string {
	switch winner {
	case match.Team1:
		return "team1"
	case match.Team2:
		return "team2"
	default:
		return "draw"
	}
}

// JoinQueue snapshots the player's current rating and inserts a waiting
// entry. The rating record is created lazily on first join.
func (s *Service) JoinQueue(ctx context.Context, playerID, displayName string, m mode.Mode) (int, error) {
	value := s.ratings.Get(playerID, m).Value
	pos, err := s.queue.Join(playerID, displayName, m, value)
	if err != nil {
		return 0, err
	}
	s.logger.Debug(ctx, "player queued",
		logger.String("playerID", playerID),
		logger.String("mode", string(m)),
		logger.Int("rating", value),
	)
	return pos, nil
}

// LeaveQueue removes the player's waiting entry. Returns false when the
// player was not waiting, which includes the race where a scan already
// matched them; a formed match is not cancellable.
func (s *Service) LeaveQueue(_ context.Context, playerID string) bool {
	return s.queue.Leave(playerID)
}

// QueuePosition reports the player's pool, 1-based position, and wait.
func (s *Service) QueuePosition(_ context.Context, playerID string) (matchmaking.Entry, int, time.Duration, error) {
	return s.queue.Position(playerID)
}

// QueueCount returns the number of players waiting in a mode.
func (s *Service) QueueCount(_ context.Context, m mode.Mode) int {
	return s.queue.Count(m)
}

// RecordKill routes a kill event to its live match. Unknown matches are a
// caller error; events for matches no longer in progress are dropped
// silently as late deliveries.
func (s *Service) RecordKill(_ context.Context, matchID, killerID, victimID string) (bool, error) {
	s.mu.RLock()
	lm, ok := s.live[matchID]
	s.mu.RUnlock()

	if !ok {
		return false, fmt.Errorf("record kill %s: %w", matchID, ErrUnknownMatch)
	}
	applied := lm.m.RecordKill(killerID, victimID)
	if applied {
		metrics.RecordKillApplied()
	} else {
		metrics.RecordKillDropped()
	}
	return applied, nil
}

// MatchView returns a snapshot of a live match.
func (s *Service) MatchView(_ context.Context, matchID string) (match.Snapshot, error) {
	s.mu.RLock()
	lm, ok := s.live[matchID]
	s.mu.RUnlock()

	if !ok {
		return match.Snapshot{}, fmt.Errorf("match %s: %w", matchID, ErrUnknownMatch)
	}
	return lm.m.View(), nil
}

// PlayerRating returns the rating record for a player in a mode, creating
// the default record on first query.
func (s *Service) PlayerRating(_ context.Context, m mode.Mode, playerID string) (rating.Rating, rating.Stats) {
	return s.ratings.Get(playerID, m), s.ratings.GetStats(playerID, m)
}

// Top returns the best n leaderboard entries for a mode.
func (s *Service) Top(ctx context.Context, m mode.Mode, n int) ([]repository.Entry, error) {
	return s.rankings.Top(ctx, m, n)
}

// PageOf returns one leaderboard page for a mode.
func (s *Service) PageOf(ctx context.Context, m mode.Mode, page, size int) ([]repository.Entry, error) {
	return s.rankings.Page(ctx, m, page, size)
}

// EntryOf returns a single player's leaderboard row.
func (s *Service) EntryOf(ctx context.Context, m mode.Mode, playerID string) (repository.Entry, error) {
	return s.rankings.Entry(ctx, m, playerID)
}

// SearchPlayers returns leaderboard rows whose display name contains the
// substring.
func (s *Service) SearchPlayers(ctx context.Context, m mode.Mode, substring string) ([]repository.Entry, error) {
	return s.rankings.SearchByName(ctx, m, substring)
}

// SeenAndRecord atomically checks and records a kill-event id.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordKillDuplicate()
	}
	return seen
}

// Unrecord forgets a kill-event id so the event can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// LiveMatchCount returns the number of matches in progress.
func (s *Service) LiveMatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

// LiveMatchIDs returns the ids of every match currently registered.
func (s *Service) LiveMatchIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}
	return ids
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"liveMatches": len(s.live),
	}
	if s.started {
		stats["trackedPlayers"] = s.ratings.Count()
		stats["resultsBacklog"] = s.resultsQueue.Len()
		queues := make(map[string]int, len(mode.All()))
		for _, m := range mode.All() {
			queues[string(m)] = s.queue.Count(m)
		}
		stats["queueDepth"] = queues
	}
	return stats
}
