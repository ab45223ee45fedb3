// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/internal/domain/rating"
)

// RatingDependencies defines the interface for rating reads.
type RatingDependencies interface {
	PlayerRating(ctx context.Context, m mode.Mode, playerID string) (rating.Rating, rating.Stats)
}

// RatingHandler handles per-player rating queries.
type RatingHandler struct {
	deps RatingDependencies
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(deps RatingDependencies) *RatingHandler {
	return &RatingHandler{deps: deps}
}

type ratingResponse struct {
	PlayerID    string `json:"player_id"`
	Mode        string `json:"mode"`
	Rating      int    `json:"rating"`
	Tier        string `json:"tier"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Streak      int    `json:"streak"`
	TotalKills  int    `json:"total_kills"`
	TotalDeaths int    `json:"total_deaths"`
	HighestTier string `json:"highest_tier"`
}

// HandleGetRating handles GET /rating/{mode}/{player_id} requests. Unknown
// players read back the default rating rather than a 404; every player has
// a rating the moment anyone asks.
func (h *RatingHandler) HandleGetRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rating"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts, ok := pathParams(r, "/rating/", 2)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	m, err := parseMode(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode", fmt.Errorf("%s: %w", op, err))
		return
	}
	playerID := parts[1]
	rec, stats := h.deps.PlayerRating(r.Context(), m, playerID)
	writeJSON(w, http.StatusOK, ratingResponse{
		PlayerID:    playerID,
		Mode:        string(m),
		Rating:      rec.Value,
		Tier:        string(rating.TierFor(rec.Value)),
		Wins:        rec.Wins,
		Losses:      rec.Losses,
		Streak:      rec.Streak,
		TotalKills:  stats.TotalKills,
		TotalDeaths: stats.TotalDeaths,
		HighestTier: string(stats.HighestTier),
	})
}
