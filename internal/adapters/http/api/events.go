// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// EventDependencies defines the interface for kill-event processing.
type EventDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	RecordKill(ctx context.Context, matchID, killerID, victimID string) (bool, error)
}

// EventsHandler handles kill-event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type killEventRequest struct {
	EventID  string `json:"event_id"`
	MatchID  string `json:"match_id"`
	KillerID string `json:"killer_id"`
	VictimID string `json:"victim_id"`
}

func (e killEventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.MatchID) == "":
		return errors.New("missing match_id")
	case strings.TrimSpace(e.KillerID) == "":
		return errors.New("missing killer_id")
	case strings.TrimSpace(e.VictimID) == "":
		return errors.New("missing victim_id")
	case e.KillerID == e.VictimID:
		return errors.New("killer and victim must differ")
	}
	return nil
}

// HandlePostKill handles POST /events/kill requests. Event ids make
// delivery at-least-once safe: replays of an applied event ack as
// duplicates without rescoring.
func (h *EventsHandler) HandlePostKill(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_kill"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req killEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	// Idempotency check first; duplicates never reach the match.
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	applied, err := h.deps.RecordKill(r.Context(), req.MatchID, req.KillerID, req.VictimID)
	if err != nil {
		// Roll back the seen mark so a corrected retry can land.
		h.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, http.StatusNotFound, "unknown_match", err)
		return
	}
	if !applied {
		// Late or invalid for the match's current state. The event id
		// stays recorded: replays of a dropped event stay dropped.
		writeJSON(w, http.StatusOK, ackResponse{Status: "dropped", Duplicate: false})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "applied", Duplicate: false})
}
