// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/society-live/auth"
	"github.com/danielhkuo/society-live/handlers"
	"github.com/danielhkuo/society-live/hub"
	"github.com/danielhkuo/society-live/middleware"
)

func NewRouter(store handlers.EventStore, votes *hub.Hub, verifier *auth.Verifier) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(store)
	performanceHandler := handlers.NewPerformanceHandler(store, votes)
	votingHandler := handlers.NewVotingHandler(votes)
	liveHandler := handlers.NewLiveHandler(votes)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Events
	mux.HandleFunc("POST /events", middleware.WithLogging(middleware.RequireAdmin(verifier, eventHandler.CreateEvent)))
	mux.HandleFunc("GET /events", middleware.WithLogging(eventHandler.ListEvents))
	mux.HandleFunc("GET /events/{id}", middleware.WithLogging(eventHandler.GetEvent))
	mux.HandleFunc("POST /events/{id}/performances", middleware.WithLogging(middleware.RequireAdmin(verifier, performanceHandler.CreatePerformance)))
	mux.HandleFunc("GET /events/{id}/performances", middleware.WithLogging(eventHandler.GetEvent))

	// Performances
	mux.HandleFunc("GET /performances/{id}", middleware.WithLogging(performanceHandler.GetPerformance))
	mux.HandleFunc("PATCH /performances/{id}", middleware.WithLogging(middleware.RequireAdmin(verifier, performanceHandler.UpdatePerformance)))
	mux.HandleFunc("GET /performances/{id}/tally", middleware.WithLogging(performanceHandler.GetTally))

	// Voting and live tallies
	mux.HandleFunc("POST /vote", middleware.WithLogging(middleware.RequireUser(verifier, votingHandler.CastVote)))
	mux.HandleFunc("GET /events/{performanceId}/live", middleware.WithLogging(liveHandler.Stream))
	mux.HandleFunc("GET /performances/{id}/live", middleware.WithLogging(liveHandler.Stream))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("society-live API v1"))
	})

	return mux
}
