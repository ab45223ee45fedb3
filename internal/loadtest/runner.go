package loadtest

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/arena/pkg/logger"
)

const (
	pollInterval     = 250 * time.Millisecond
	killInterval     = 50 * time.Millisecond
	leaderboardLimit = 25
)

// Run executes one complete load test against a running service.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.Timeout)
	log := logger.Get().Named("loadtest")

	log.Info(ctx, "starting arena load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.Players),
		logger.String("mode", config.Mode),
		logger.Int("workers", config.Workers),
		logger.Duration("duration", config.Duration),
	)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	players, err := queuePlayers(ctx, client, config, stats)
	if err != nil {
		return fmt.Errorf("queueing players failed: %w", err)
	}

	if err := driveMatches(ctx, client, config, stats); err != nil {
		return fmt.Errorf("driving matches failed: %w", err)
	}

	if err := checkLeaderboard(ctx, client, config, len(players)); err != nil {
		return fmt.Errorf("leaderboard check failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "load test completed",
		logger.Int("playersQueued", int(stats.PlayersQueued)),
		logger.Int("matchesDriven", int(stats.MatchesDriven)),
		logger.Int("killsSubmitted", int(stats.KillsSubmitted)),
		logger.Int("killsApplied", int(stats.KillsApplied)),
		logger.Int("killsDuplicate", int(stats.KillsDuplicate)),
		logger.Int("requestFailures", int(stats.RequestFailures)),
		logger.Duration("duration", stats.Duration),
	)
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient, config *Config) error {
	status, err := client.get(ctx, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", status)
	}
	return nil
}

type joinRequest struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Mode        string `json:"mode"`
}

// queuePlayers enqueues the simulated roster.
func queuePlayers(ctx context.Context, client *httpClient, config *Config, stats *Stats) ([]string, error) {
	players := make([]string, config.Players)
	for i := range players {
		players[i] = fmt.Sprintf("bot-%04d", i)
		req := joinRequest{
			PlayerID:    players[i],
			DisplayName: fmt.Sprintf("Bot %04d", i),
			Mode:        config.Mode,
		}
		status, err := client.post(ctx, config.BaseURL+"/queue/join", req, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("join rejected with status %d for %s", status, players[i])
		}
		atomic.AddInt64(&stats.PlayersQueued, 1)
	}
	return players, nil
}

type matchList struct {
	Matches []string `json:"matches"`
}

type matchView struct {
	MatchID    string   `json:"match_id"`
	State      string   `json:"state"`
	Team1      []string `json:"team1"`
	Team2      []string `json:"team2"`
	KillsToWin int      `json:"kills_to_win"`
}

type killRequest struct {
	EventID  string `json:"event_id"`
	MatchID  string `json:"match_id"`
	KillerID string `json:"killer_id"`
	VictimID string `json:"victim_id"`
}

type killAck struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// driveMatches polls for live matches and plays them out with random kill
// events until the configured duration elapses or no matches remain.
func driveMatches(ctx context.Context, client *httpClient, config *Config, stats *Stats) error {
	deadline := time.Now().Add(config.Duration)
	driven := make(map[string]bool)
	var mu sync.Mutex

	sem := make(chan struct{}, config.Workers)
	var wg sync.WaitGroup

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}
		var list matchList
		if _, err := client.get(ctx, config.BaseURL+"/matches", &list); err != nil {
			atomic.AddInt64(&stats.RequestFailures, 1)
			time.Sleep(pollInterval)
			continue
		}

		for _, id := range list.Matches {
			mu.Lock()
			seen := driven[id]
			driven[id] = true
			mu.Unlock()
			if seen {
				continue
			}

			wg.Add(1)
			sem <- struct{}{}
			go func(matchID string) {
				defer wg.Done()
				defer func() { <-sem }()
				playMatch(ctx, client, config, stats, matchID)
			}(id)
		}
		time.Sleep(pollInterval)
	}

	wg.Wait()
	return nil
}

// playMatch fires random kills into one match until it ends.
func playMatch(ctx context.Context, client *httpClient, config *Config, stats *Stats, matchID string) {
	atomic.AddInt64(&stats.MatchesDriven, 1)
	log := logger.Get().Named("loadtest")

	var view matchView
	status, err := client.get(ctx, config.BaseURL+"/matches/"+matchID, &view)
	if err != nil || status != http.StatusOK {
		atomic.AddInt64(&stats.RequestFailures, 1)
		return
	}

	participants := append(append([]string{}, view.Team1...), view.Team2...)
	for ctx.Err() == nil {
		killer := participants[rand.Intn(len(participants))]
		victim := participants[rand.Intn(len(participants))]
		if killer == victim {
			continue
		}

		req := killRequest{
			EventID:  uuid.NewString(),
			MatchID:  matchID,
			KillerID: killer,
			VictimID: victim,
		}
		var ack killAck
		status, err := client.post(ctx, config.BaseURL+"/events/kill", req, &ack)
		if err != nil {
			atomic.AddInt64(&stats.RequestFailures, 1)
			return
		}
		atomic.AddInt64(&stats.KillsSubmitted, 1)

		switch {
		case status == http.StatusNotFound:
			// Match settled and was removed; stop driving it.
			return
		case ack.Duplicate:
			atomic.AddInt64(&stats.KillsDuplicate, 1)
		case ack.Status == "applied":
			atomic.AddInt64(&stats.KillsApplied, 1)
		}

		if config.Verbose {
			log.Debug(ctx, "kill submitted",
				logger.String("matchID", matchID),
				logger.String("status", ack.Status),
			)
		}
		time.Sleep(killInterval)
	}
}

// checkLeaderboard sanity-checks that settled matches produced rankings.
func checkLeaderboard(ctx context.Context, client *httpClient, config *Config, players int) error {
	limit := leaderboardLimit
	if players < limit {
		limit = players
	}
	url := fmt.Sprintf("%s/leaderboard?mode=%s&limit=%d", config.BaseURL, config.Mode, limit)

	var entries []struct {
		Rank   int    `json:"rank"`
		Player string `json:"player_id"`
		Rating int    `json:"rating"`
	}
	status, err := client.get(ctx, url, &entries)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected leaderboard status %d", status)
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("rank discontinuity at position %d: got %d", i+1, e.Rank)
		}
	}
	logger.Get().Named("loadtest").Info(ctx, "leaderboard verified",
		logger.Int("entries", len(entries)),
	)
	return nil
}
