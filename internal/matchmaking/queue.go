package matchmaking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultBaseTolerance = 200.0
	defaultMaxWait       = 60 * time.Second
	defaultFoundBuffer   = 256
)

// Entry is a waiting player. The rating is a snapshot taken at enqueue
// time; rating changes while waiting do not move the entry.
type Entry struct {
	PlayerID    string
	DisplayName string
	Mode        mode.Mode
	Rating      int
	EnqueuedAt  time.Time
}

// FoundMatch carries an assembled, balanced candidate set. Emission on the
// found channel is the only way a match is created.
type FoundMatch struct {
	Mode  mode.Mode
	Team1 []Entry
	Team2 []Entry
}

// Queue owns the per-mode waiting pools. A single mutex guards all pools
// so Join, Leave, and Scan cannot race; a player is in at most one pool
// across all modes at a time.
type Queue struct {
	mu       sync.Mutex
	pools    map[mode.Mode][]Entry
	byPlayer map[string]mode.Mode

	baseTolerance float64
	maxWait       time.Duration
	foundBuffer   int
	found         chan FoundMatch

	now    func() time.Time
	logger logger.Logger
}

// New creates an empty matchmaking queue with configuration options.
func New(opts ...Option) *Queue {
	q := &Queue{
		pools:         make(map[mode.Mode][]Entry),
		byPlayer:      make(map[string]mode.Mode),
		baseTolerance: defaultBaseTolerance,
		maxWait:       defaultMaxWait,
		foundBuffer:   defaultFoundBuffer,
		now:           time.Now,
		logger:        logger.Get().Named("matchmaking"),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.found = make(chan FoundMatch, q.foundBuffer)
	return q
}

// Found returns the channel on which assembled matches are emitted. It is
// meant to be drained by a single consumer.
func (q *Queue) Found() <-chan FoundMatch {
	return q.found
}

// Join inserts a waiting entry for the player and returns the 1-based
// position in the mode's pool. A player already waiting in any mode is
// rejected with ErrAlreadyQueued.
func (q *Queue) Join(playerID, displayName string, m mode.Mode, ratingValue int) (int, error) {
	if !mode.Valid(m) {
		return 0, fmt.Errorf("join %s: %w", m, ErrUnknownMode)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if held, ok := q.byPlayer[playerID]; ok {
		return 0, fmt.Errorf("player %s waiting in %s: %w", playerID, held, ErrAlreadyQueued)
	}

	entry := Entry{
		PlayerID:    playerID,
		DisplayName: displayName,
		Mode:        m,
		Rating:      ratingValue,
		EnqueuedAt:  q.now(),
	}
	q.pools[m] = append(q.pools[m], entry)
	q.byPlayer[playerID] = m

	metrics.UpdateQueueDepth(string(m), len(q.pools[m]))
	metrics.RecordQueueJoin(string(m))
	return len(q.pools[m]), nil
}

// Leave removes the player's entry from whichever pool holds it. A missing
// entry is reported, not fatal: the scan may already have consumed it to
// build a match, and a formed match is not cancellable by one member.
func (q *Queue) Leave(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, ok := q.byPlayer[playerID]
	if !ok {
		return false
	}
	q.pools[m] = pie.FilterNot(q.pools[m], func(e Entry) bool {
		return e.PlayerID == playerID
	})
	delete(q.byPlayer, playerID)

	metrics.UpdateQueueDepth(string(m), len(q.pools[m]))
	metrics.RecordQueueLeave(string(m))
	return true
}

// Position returns the player's entry, its 1-based pool position, and the
// time waited so far.
func (q *Queue) Position(playerID string) (Entry, int, time.Duration, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	m, ok := q.byPlayer[playerID]
	if !ok {
		return Entry{}, 0, 0, fmt.Errorf("player %s: %w", playerID, ErrNotQueued)
	}
	idx := pie.FindFirstUsing(q.pools[m], func(e Entry) bool {
		return e.PlayerID == playerID
	})
	if idx < 0 {
		// byPlayer and pools disagree; the single lock makes this impossible.
		panic(fmt.Sprintf("queue index out of sync for player %s", playerID))
	}
	e := q.pools[m][idx]
	return e, idx + 1, q.now().Sub(e.EnqueuedAt), nil
}

// Count returns the number of entries waiting in the mode's pool.
func (q *Queue) Count(m mode.Mode) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pools[m])
}

// Tolerance returns the effective rating tolerance for an entry that has
// waited for the given duration. It widens linearly with the wait, per
// candidate, reaching double the base at maxWait.
func (q *Queue) Tolerance(wait time.Duration) float64 {
	return q.baseTolerance * (1 + wait.Seconds()/q.maxWait.Seconds())
}

// Scan attempts to assemble at most one match per mode and emits each
// assembled match on the found channel. It is driven by the orchestrator's
// scheduler tick, never by join events.
func (q *Queue) Scan() []FoundMatch {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var out []FoundMatch
	for _, m := range mode.All() {
		need := mode.MatchSize(m)
		if len(q.pools[m]) < need {
			continue
		}
		candidates := q.selectCandidates(m, need, now)
		if candidates == nil {
			continue
		}
		fm := buildMatch(m, candidates)
		if !q.emitLocked(fm) {
			// Channel full: put the candidates back for the next scan.
			q.requeueLocked(m, candidates)
			continue
		}
		out = append(out, fm)
		metrics.UpdateQueueDepth(string(m), len(q.pools[m]))
		for _, e := range candidates {
			metrics.RecordQueueWait(string(m), now.Sub(e.EnqueuedAt).Seconds())
		}
	}
	return out
}

// selectCandidates walks the mode's pool sorted by rating ascending,
// accumulating a candidate set. The first entry seeds the set; each later
// entry joins only if its rating is within its own effective tolerance of
// the set's running average. On success the selected entries are removed
// from the pool.
func (q *Queue) selectCandidates(m mode.Mode, need int, now time.Time) []Entry {
	sorted := pie.SortUsing(q.pools[m], func(a, b Entry) bool {
		return a.Rating < b.Rating
	})

	picked := make([]Entry, 0, need)
	sum := 0.0
	for _, e := range sorted {
		if len(picked) == 0 {
			picked = append(picked, e)
			sum = float64(e.Rating)
			continue
		}
		avg := sum / float64(len(picked))
		tolerance := q.Tolerance(now.Sub(e.EnqueuedAt))
		if diff := float64(e.Rating) - avg; diff > tolerance || diff < -tolerance {
			continue
		}
		picked = append(picked, e)
		sum += float64(e.Rating)
		if len(picked) == need {
			break
		}
	}
	if len(picked) < need {
		return nil
	}

	selected := make(map[string]struct{}, need)
	for _, e := range picked {
		selected[e.PlayerID] = struct{}{}
		delete(q.byPlayer, e.PlayerID)
	}
	q.pools[m] = pie.FilterNot(q.pools[m], func(e Entry) bool {
		_, ok := selected[e.PlayerID]
		return ok
	})
	return picked
}

// buildMatch balances the selected set: sorted by rating ascending,
// alternate assignment by index parity keeps the team averages close.
func buildMatch(m mode.Mode, picked []Entry) FoundMatch {
	sorted := pie.SortUsing(picked, func(a, b Entry) bool {
		return a.Rating < b.Rating
	})
	fm := FoundMatch{Mode: m}
	for i, e := range sorted {
		if i%2 == 0 {
			fm.Team1 = append(fm.Team1, e)
		} else {
			fm.Team2 = append(fm.Team2, e)
		}
	}
	return fm
}

func (q *Queue) emitLocked(fm FoundMatch) bool {
	select {
	case q.found <- fm:
		metrics.RecordMatchFound(string(fm.Mode))
		return true
	default:
		q.logger.Warn(context.Background(), "found channel full; deferring match",
			logger.String("mode", string(fm.Mode)),
		)
		return false
	}
}

// requeueLocked restores candidates with their original enqueue times so
// their widened tolerances survive a deferred emission.
func (q *Queue) requeueLocked(m mode.Mode, entries []Entry) {
	for _, e := range entries {
		q.pools[m] = append(q.pools[m], e)
		q.byPlayer[e.PlayerID] = m
	}
}
