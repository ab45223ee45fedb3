// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/arena/internal/domain/mode"
)

// RankDependencies defines the interface for rank lookups.
type RankDependencies interface {
	EntryOf(ctx context.Context, m mode.Mode, playerID string) (Entry, error)
	SearchPlayers(ctx context.Context, m mode.Mode, substring string) ([]Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{mode}/{player_id} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	parts, ok := pathParams(r, "/rank/", 2)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	m, err := parseMode(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode", fmt.Errorf("%s: %w", op, err))
		return
	}
	entry, err := h.deps.EntryOf(r.Context(), m, parts[1])
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleSearch handles GET /players/search?mode=M&q=substr requests.
func (h *RankHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search_players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	m, err := parseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode", fmt.Errorf("%s: %w", op, err))
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	entries, err := h.deps.SearchPlayers(r.Context(), m, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
