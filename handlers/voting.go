// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/society-live/auth"
	"github.com/danielhkuo/society-live/hub"
	"github.com/danielhkuo/society-live/middleware"
	"github.com/danielhkuo/society-live/models"
)

type VotingHandler struct {
	hub *hub.Hub
}

func NewVotingHandler(h *hub.Hub) *VotingHandler {
	return &VotingHandler{hub: h}
}

// CastVote handles POST /vote
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required", "UNAUTHENTICATED")
		return
	}

	// Parse request
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON", CodeInvalidInput)
		return
	}

	performanceID := strings.TrimSpace(req.PerformanceID)
	if performanceID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "performanceId is required", CodeInvalidInput)
		return
	}
	if req.Value == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "value is required", CodeInvalidInput)
		return
	}

	tally, err := h.hub.RecordVote(r.Context(), id.UserID, performanceID, string(req.Value))
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("vote cast", "performance_id", performanceID, "user_id", id.UserID, "total", tally.Total)

	middleware.SuccessResponse(w, http.StatusCreated, "Vote recorded", tally)
}
