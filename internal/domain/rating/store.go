package rating

import (
	"sync"

	"github.com/okian/arena/internal/domain/mode"
)

// Stats carries the cumulative career counters forwarded to the title and
// achievement collaborators. HighestTier is the best tier ever reached,
// not the current one.
type Stats struct {
	TotalKills  int
	TotalDeaths int
	HighestTier Tier
}

type key struct {
	player string
	mode   mode.Mode
}

// Store holds the Rating records per (player, mode) pair. Records are
// created lazily on first query and mutated only through ApplyResult and
// RecordMatchStats, which the orchestrator calls after a match ends.
type Store struct {
	mu      sync.RWMutex
	ratings map[key]*Rating
	stats   map[key]*Stats
}

// NewStore creates an empty rating store.
func NewStore() *Store {
	return &Store{
		ratings: make(map[key]*Rating),
		stats:   make(map[key]*Stats),
	}
}

// Get returns a copy of the rating record for player in m, creating the
// default record on first access.
func (s *Store) Get(player string, m mode.Mode) Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.lookup(player, m)
}

// GetStats returns a copy of the career counters for player in m.
func (s *Store) GetStats(player string, m mode.Mode) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookup(player, m)
	return *s.stats[key{player, m}]
}

// ApplyResult folds a finished match into the player's record and returns
// the updated copy. delta carries the win/loss sign already.
func (s *Store) ApplyResult(player string, m mode.Mode, outcome Outcome, delta int) Rating {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.lookup(player, m)
	r.ApplyResult(outcome, delta)

	st := s.stats[key{player, m}]
	if t := TierFor(r.Value); Better(t, st.HighestTier) {
		st.HighestTier = t
	}
	return *r
}

// RecordMatchStats adds one match's kill and death counts to the player's
// career counters and returns the updated copy.
func (s *Store) RecordMatchStats(player string, m mode.Mode, kills, deaths int) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookup(player, m)
	st := s.stats[key{player, m}]
	st.TotalKills += kills
	st.TotalDeaths += deaths
	return *st
}

// Count returns the number of tracked (player, mode) records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ratings)
}

// lookup returns the live record for the pair, creating defaults as needed.
// Callers must hold the write lock.
func (s *Store) lookup(player string, m mode.Mode) *Rating {
	k := key{player, m}
	r, ok := s.ratings[k]
	if !ok {
		fresh := New()
		r = &fresh
		s.ratings[k] = r
		s.stats[k] = &Stats{HighestTier: TierFor(fresh.Value)}
	}
	return r
}
