// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/society-live/middleware"
	"github.com/danielhkuo/society-live/models"
)

type EventHandler struct {
	store EventStore
}

func NewEventHandler(store EventStore) *EventHandler {
	return &EventHandler{store: store}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON", CodeInvalidInput)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required", CodeInvalidInput)
		return
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartsAt:    req.StartsAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateEvent(r.Context(), event); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("event created", "event_id", event.ID, "title", event.Title)

	middleware.SuccessResponse(w, http.StatusCreated, "Event created", event)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Events retrieved", events)
}

// GetEvent handles GET /events/{id}
// Returns the event with its performances
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event id is required", CodeInvalidInput)
		return
	}

	event, err := h.store.GetEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	performances, err := h.store.ListPerformances(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Event retrieved", models.EventWithPerformances{
		Event:        event,
		Performances: performances,
	})
}
