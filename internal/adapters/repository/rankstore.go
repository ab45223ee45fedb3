package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/internal/domain/rating"
	"github.com/okian/arena/pkg/metrics"
)

// RankStore is the in-memory Store implementation.
//
// Ordering: rating DESC; ties keep insertion/update order (stable resort).
// The full mode table is resorted on every upsert, which is bounded by
// "once per match participant per match completion" on the write side.
type RankStore struct {
	mu     sync.RWMutex
	tables map[mode.Mode][]*Entry
	index  map[mode.Mode]map[string]*Entry
}

// NewRankStore creates an empty ranking store.
func NewRankStore() *RankStore {
	return &RankStore{
		tables: make(map[mode.Mode][]*Entry),
		index:  make(map[mode.Mode]map[string]*Entry),
	}
}

// Upsert inserts or updates one row and resorts the mode's table.
func (s *RankStore) Upsert(_ context.Context, m mode.Mode, playerID, displayName string, ratingValue, wins, losses int) error {
	start := time.Now()
	defer func() {
		metrics.RecordRankingUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[m]
	if !ok {
		idx = make(map[string]*Entry)
		s.index[m] = idx
	}

	e, exists := idx[playerID]
	if !exists {
		e = &Entry{PlayerID: playerID}
		idx[playerID] = e
		s.tables[m] = append(s.tables[m], e)
	}
	e.DisplayName = displayName
	e.Rating = ratingValue
	e.Wins = wins
	e.Losses = losses
	e.Tier = rating.TierFor(ratingValue)

	s.resortLocked(m)
	metrics.UpdateRankingSize(string(m), len(s.tables[m]))
	return nil
}

// Top returns the best n entries of the mode's table.
func (s *RankStore) Top(_ context.Context, m mode.Mode, n int) ([]Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("top %d: %w", n, ErrInvalidLimit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.tables[m]
	if n > len(table) {
		n = len(table)
	}
	return copyEntries(table[:n]), nil
}

// Page returns the 1-based page of the given size. Pages past the end are
// empty, not an error.
func (s *RankStore) Page(_ context.Context, m mode.Mode, page, size int) ([]Entry, error) {
	if page < 1 || size < 1 {
		return nil, fmt.Errorf("page %d size %d: %w", page, size, ErrInvalidPage)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.tables[m]
	lo := (page - 1) * size
	if lo >= len(table) {
		return []Entry{}, nil
	}
	hi := lo + size
	if hi > len(table) {
		hi = len(table)
	}
	return copyEntries(table[lo:hi]), nil
}

// Entry returns a single player's row.
func (s *RankStore) Entry(_ context.Context, m mode.Mode, playerID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.index[m][playerID]; ok {
		return *e, nil
	}
	return Entry{}, fmt.Errorf("player %s in %s: %w", playerID, m, ErrNotFound)
}

// SearchByName returns rows whose display name contains substring,
// case-insensitively, in rank order.
func (s *RankStore) SearchByName(_ context.Context, m mode.Mode, substring string) ([]Entry, error) {
	needle := strings.ToLower(strings.TrimSpace(substring))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.tables[m] {
		if strings.Contains(strings.ToLower(e.DisplayName), needle) {
			out = append(out, *e)
		}
	}
	return out, nil
}

// Count returns the number of rows in the mode's table.
func (s *RankStore) Count(_ context.Context, m mode.Mode) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[m])
}

// resortLocked re-sorts the mode table and reassigns contiguous 1-based
// ranks. The stable sort is what gives ties their insertion/update order.
func (s *RankStore) resortLocked(m mode.Mode) {
	table := s.tables[m]
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Rating > table[j].Rating
	})
	for i, e := range table {
		e.Rank = i + 1
	}
}

func copyEntries(src []*Entry) []Entry {
	out := make([]Entry, len(src))
	for i, e := range src {
		out[i] = *e
	}
	return out
}
