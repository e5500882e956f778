// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client IP) and completion (duration_ms).

# Authentication

Identity comes from bearer tokens issued by the identity provider:

	mux.HandleFunc("POST /vote", middleware.RequireUser(verifier, h.CastVote))
	mux.HandleFunc("POST /events", middleware.RequireAdmin(verifier, h.CreateEvent))

Missing or invalid tokens get 401, non-admins on admin routes get 403.
Handlers read the caller with auth.FromContext.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# Envelope

Every JSON body uses the same envelope:

	middleware.SuccessResponse(w, http.StatusOK, "Vote recorded", tally)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Voting has ended", "VOTING_CLOSED")

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP for request logs.
*/
package middleware
