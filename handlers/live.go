// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/society-live/hub"
	"github.com/danielhkuo/society-live/middleware"
	"github.com/danielhkuo/society-live/sse"
)

type LiveHandler struct {
	hub *hub.Hub
}

func NewLiveHandler(h *hub.Hub) *LiveHandler {
	return &LiveHandler{hub: h}
}

// Stream handles GET /events/{performanceId}/live and GET /performances/{id}/live.
// The first event is the current tally; the stream ends after a "closed"
// event or when the client goes away.
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	performanceID := r.PathValue("performanceId")
	if performanceID == "" {
		performanceID = r.PathValue("id")
	}
	if performanceID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "performance id is required", CodeInvalidInput)
		return
	}

	stream, err := sse.NewStream(w)
	if err != nil {
		slog.Error("live stream unavailable", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported", CodeInternal)
		return
	}

	sub, err := h.hub.Subscribe(r.Context(), performanceID, stream)
	if err != nil {
		writeError(w, r, err)
		return
	}
	connected := time.Now()

	select {
	case <-r.Context().Done():
		h.hub.Unsubscribe(sub)
		// the writer goroutine closes the stream after its last write
		<-stream.Done()
	case <-stream.Done():
	}

	slog.Info("live stream ended",
		"performance_id", performanceID,
		"subscription_id", sub.ID(),
		"connected_for", strings.TrimSpace(humanize.RelTime(connected, time.Now(), "", "")),
	)
}
