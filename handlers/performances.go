// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/society-live/hub"
	"github.com/danielhkuo/society-live/middleware"
	"github.com/danielhkuo/society-live/models"
)

// maxOptions bounds how many choices one performance may offer
const maxOptions = 10

type PerformanceHandler struct {
	store EventStore
	hub   *hub.Hub
}

func NewPerformanceHandler(store EventStore, h *hub.Hub) *PerformanceHandler {
	return &PerformanceHandler{store: store, hub: h}
}

// CreatePerformance handles POST /events/{id}/performances
func (h *PerformanceHandler) CreatePerformance(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event id is required", CodeInvalidInput)
		return
	}

	var req models.CreatePerformanceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON", CodeInvalidInput)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required", CodeInvalidInput)
		return
	}
	if req.VotingDurationSeconds < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votingDurationSeconds cannot be negative", CodeInvalidInput)
		return
	}

	options, msg := normalizeOptions(req.Options)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg, CodeInvalidInput)
		return
	}

	perf := models.Performance{
		ID:                    uuid.NewString(),
		EventID:               eventID,
		Title:                 title,
		Performer:             strings.TrimSpace(req.Performer),
		Options:               options,
		VotingDurationSeconds: req.VotingDurationSeconds,
		CreatedAt:             time.Now().UTC(),
	}
	if err := h.store.CreatePerformance(r.Context(), perf); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("performance created", "performance_id", perf.ID, "event_id", eventID, "options", len(options))

	middleware.SuccessResponse(w, http.StatusCreated, "Performance created", perf)
}

// GetPerformance handles GET /performances/{id}
func (h *PerformanceHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.store.GetPerformance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Performance retrieved", perf)
}

// UpdatePerformance handles PATCH /performances/{id}
// votingEnabled true opens voting, false closes it and ends live streams
func (h *PerformanceHandler) UpdatePerformance(w http.ResponseWriter, r *http.Request) {
	performanceID := r.PathValue("id")
	if performanceID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "performance id is required", CodeInvalidInput)
		return
	}

	var req models.UpdatePerformanceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON", CodeInvalidInput)
		return
	}
	if req.VotingEnabled == nil && req.VotingDurationSeconds == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nothing to update", CodeInvalidInput)
		return
	}

	if req.VotingDurationSeconds != nil && *req.VotingDurationSeconds < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votingDurationSeconds cannot be negative", CodeInvalidInput)
		return
	}

	var perf models.Performance
	var err error

	// Duration first so opening picks up the new value
	if req.VotingDurationSeconds != nil {
		perf, err = h.hub.SetVotingDuration(r.Context(), performanceID, *req.VotingDurationSeconds)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	if req.VotingEnabled != nil {
		if *req.VotingEnabled {
			perf, err = h.hub.OpenVoting(r.Context(), performanceID)
		} else {
			perf, err = h.hub.CloseVoting(r.Context(), performanceID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	slog.Info("performance updated", "performance_id", performanceID, "voting_enabled", perf.VotingEnabled)

	middleware.SuccessResponse(w, http.StatusOK, "Performance updated", perf)
}

// GetTally handles GET /performances/{id}/tally
func (h *PerformanceHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.hub.Tally(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Tally retrieved", tally)
}

// normalizeOptions trims options, falls back to the yes/no defaults and
// rejects blanks and duplicates. A non-empty message means invalid input.
func normalizeOptions(raw []string) ([]string, string) {
	if len(raw) == 0 {
		return append([]string(nil), models.DefaultOptions...), ""
	}
	if len(raw) < 2 {
		return nil, "at least two options are required"
	}
	if len(raw) > maxOptions {
		return nil, "too many options"
	}

	seen := make(map[string]bool, len(raw))
	options := make([]string, 0, len(raw))
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, "options cannot be blank"
		}
		if seen[o] {
			return nil, "duplicate option: " + o
		}
		seen[o] = true
		options = append(options, o)
	}
	return options, ""
}
