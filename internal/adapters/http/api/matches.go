// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/arena/internal/domain/match"
)

// MatchDependencies defines the interface for match queries.
type MatchDependencies interface {
	MatchView(ctx context.Context, matchID string) (match.Snapshot, error)
	LiveMatchIDs() []string
}

// MatchesHandler handles live-match queries.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

type matchResponse struct {
	MatchID       string                       `json:"match_id"`
	Mode          string                       `json:"mode"`
	State         string                       `json:"state"`
	Team1         []string                     `json:"team1"`
	Team2         []string                     `json:"team2"`
	Team1Score    int                          `json:"team1_score"`
	Team2Score    int                          `json:"team2_score"`
	Team1Kills    int                          `json:"team1_kills"`
	Team2Kills    int                          `json:"team2_kills"`
	KillsToWin    int                          `json:"kills_to_win"`
	Stats         map[string]match.PlayerStats `json:"stats"`
	RemainingSecs float64                      `json:"remaining_seconds"`
}

func toMatchResponse(v match.Snapshot) matchResponse {
	return matchResponse{
		MatchID:       v.MatchID,
		Mode:          string(v.Mode),
		State:         v.State.String(),
		Team1:         v.Team1,
		Team2:         v.Team2,
		Team1Score:    v.Team1Score,
		Team2Score:    v.Team2Score,
		Team1Kills:    v.Team1Kills,
		Team2Kills:    v.Team2Kills,
		KillsToWin:    v.KillsToWin,
		Stats:         v.Stats,
		RemainingSecs: v.TimeRemaining.Seconds(),
	}
}

// HandleGet handles GET /matches/{match_id} requests.
func (h *MatchesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/matches/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	view, err := h.deps.MatchView(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchResponse(view))
}

// HandleList handles GET /matches requests.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ids := h.deps.LiveMatchIDs()
	writeJSON(w, http.StatusOK, map[string]any{"matches": ids, "count": len(ids)})
}
