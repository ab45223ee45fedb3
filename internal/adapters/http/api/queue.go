// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/internal/matchmaking"
)

// QueueDependencies defines the interface for matchmaking queue operations.
type QueueDependencies interface {
	JoinQueue(ctx context.Context, playerID, displayName string, m mode.Mode) (int, error)
	LeaveQueue(ctx context.Context, playerID string) bool
	QueuePosition(ctx context.Context, playerID string) (matchmaking.Entry, int, time.Duration, error)
	QueueCount(ctx context.Context, m mode.Mode) int
}

// QueueHandler handles matchmaking queue requests.
type QueueHandler struct {
	deps QueueDependencies
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(deps QueueDependencies) *QueueHandler {
	return &QueueHandler{deps: deps}
}

type joinRequest struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Mode        string `json:"mode"`
}

func (j joinRequest) validate() error {
	switch {
	case strings.TrimSpace(j.PlayerID) == "":
		return errors.New("missing player_id")
	case strings.TrimSpace(j.DisplayName) == "":
		return errors.New("missing display_name")
	}
	return nil
}

type joinResponse struct {
	Status   string `json:"status"`
	Mode     string `json:"mode"`
	Position int    `json:"position"`
}

// HandleJoin handles POST /queue/join requests.
func (h *QueueHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	const op = "api.queue_join"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	m, err := parseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode", fmt.Errorf("%s: %w", op, err))
		return
	}

	pos, err := h.deps.JoinQueue(r.Context(), req.PlayerID, req.DisplayName, m)
	if err != nil {
		if errors.Is(err, matchmaking.ErrAlreadyQueued) {
			writeError(w, http.StatusConflict, "already_queued", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, joinResponse{Status: "queued", Mode: string(m), Position: pos})
}

type leaveRequest struct {
	PlayerID string `json:"player_id"`
}

// HandleLeave handles POST /queue/leave requests. Leaving is best effort:
// a player already matched by a scan gets a 404, not a cancellation.
func (h *QueueHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	const op = "api.queue_leave"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	if !h.deps.LeaveQueue(r.Context(), req.PlayerID) {
		writeError(w, http.StatusNotFound, "not_queued", matchmaking.ErrNotQueued)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

type positionResponse struct {
	Mode        string  `json:"mode"`
	Position    int     `json:"position"`
	WaitSeconds float64 `json:"wait_seconds"`
}

// HandlePosition handles GET /queue/position?player_id=X requests.
func (h *QueueHandler) HandlePosition(w http.ResponseWriter, r *http.Request) {
	const op = "api.queue_position"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	playerID := r.URL.Query().Get("player_id")
	if strings.TrimSpace(playerID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, ErrBadRequest))
		return
	}
	entry, pos, wait, err := h.deps.QueuePosition(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_queued", err)
		return
	}
	writeJSON(w, http.StatusOK, positionResponse{
		Mode:        string(entry.Mode),
		Position:    pos,
		WaitSeconds: wait.Seconds(),
	})
}

// HandleCount handles GET /queue/count?mode=M requests.
func (h *QueueHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	const op = "api.queue_count"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	m, err := parseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_mode", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":  string(m),
		"count": h.deps.QueueCount(r.Context(), m),
	})
}
