// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/society-live/db"
	"github.com/danielhkuo/society-live/hub"
	"github.com/danielhkuo/society-live/middleware"
	"github.com/danielhkuo/society-live/models"
)

// Error codes returned in the envelope's errors list so clients can tell
// "already voted" from "voting has ended" without parsing messages.
const (
	CodeDuplicateVote = "DUPLICATE_VOTE"
	CodeVotingClosed  = "VOTING_CLOSED"
	CodeInvalidOption = "INVALID_OPTION"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnavailable   = "UNAVAILABLE"
	CodeInternal      = "INTERNAL"
)

// writeError maps domain errors to HTTP responses. Persistence details are
// logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrDuplicateVote):
		middleware.ErrorResponse(w, http.StatusBadRequest, "You have already voted for this performance", CodeDuplicateVote)
	case errors.Is(err, models.ErrVotingClosed):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Voting has ended for this performance", CodeVotingClosed)
	case errors.Is(err, models.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid vote option", CodeInvalidOption)
	case errors.Is(err, models.ErrMissingUser):
		middleware.ErrorResponse(w, http.StatusBadRequest, "User identity is required", CodeInvalidInput)
	case errors.Is(err, models.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Performance not found", CodeNotFound)
	case errors.Is(err, db.ErrEventNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found", CodeNotFound)
	case errors.Is(err, hub.ErrHubClosed):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Server is shutting down", CodeUnavailable)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error", CodeInternal)
	}
}
