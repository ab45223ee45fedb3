// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/match"
	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/internal/domain/rating"
	"github.com/okian/arena/internal/matchmaking"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the orchestrator implementation.
type Dependencies interface {
	// Queue operations.
	JoinQueue(ctx context.Context, playerID, displayName string, m mode.Mode) (int, error)
	LeaveQueue(ctx context.Context, playerID string) bool
	QueuePosition(ctx context.Context, playerID string) (matchmaking.Entry, int, time.Duration, error)
	QueueCount(ctx context.Context, m mode.Mode) int

	// Kill-event idempotency and routing.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	RecordKill(ctx context.Context, matchID, killerID, victimID string) (bool, error)

	// Match queries.
	MatchView(ctx context.Context, matchID string) (match.Snapshot, error)
	LiveMatchIDs() []string

	// Leaderboard and rating reads.
	Top(ctx context.Context, m mode.Mode, n int) ([]Entry, error)
	PageOf(ctx context.Context, m mode.Mode, page, size int) ([]Entry, error)
	EntryOf(ctx context.Context, m mode.Mode, playerID string) (Entry, error)
	SearchPlayers(ctx context.Context, m mode.Mode, substring string) ([]Entry, error)
	PlayerRating(ctx context.Context, m mode.Mode, playerID string) (rating.Rating, rating.Stats)
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = repository.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	queueHandler       *QueueHandler
	eventsHandler      *EventsHandler
	matchesHandler     *MatchesHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	ratingHandler      *RatingHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		queueHandler:       NewQueueHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		matchesHandler:     NewMatchesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		ratingHandler:      NewRatingHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/queue/join", MetricsMiddleware(s.queueHandler.HandleJoin, "queue_join"))
	mux.HandleFunc("/queue/leave", MetricsMiddleware(s.queueHandler.HandleLeave, "queue_leave"))
	mux.HandleFunc("/queue/position", MetricsMiddleware(s.queueHandler.HandlePosition, "queue_position"))
	mux.HandleFunc("/queue/count", MetricsMiddleware(s.queueHandler.HandleCount, "queue_count"))
	mux.HandleFunc("/events/kill", MetricsMiddleware(s.eventsHandler.HandlePostKill, "events_kill"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandleList, "matches"))
	mux.HandleFunc("/matches/", MetricsMiddleware(s.matchesHandler.HandleGet, "matches"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/leaderboard/page", MetricsMiddleware(s.leaderboardHandler.HandleGetPage, "leaderboard_page"))
	mux.HandleFunc("/players/search", MetricsMiddleware(s.rankHandler.HandleSearch, "players_search"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/rating/", MetricsMiddleware(s.ratingHandler.HandleGetRating, "rating"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// parseMode resolves the mode query parameter; an empty value selects the
// default mode.
func parseMode(raw string) (mode.Mode, error) {
	if strings.TrimSpace(raw) == "" {
		return mode.DefaultMode, nil
	}
	m := mode.Mode(raw)
	if !mode.Valid(m) {
		return "", ErrUnknownMode
	}
	return m, nil
}

// pathParams splits what follows prefix into its slash-separated parts.
func pathParams(r *http.Request, prefix string, n int) ([]string, bool) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != n {
		return nil, false
	}
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}
	return parts, true
}
