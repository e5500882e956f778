// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the society live API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, votes, verifier)

# Endpoints

Health:

	GET /health

Events:

	POST /events                   - Create event (admin)
	GET  /events                   - List events
	GET  /events/{id}              - Event with its performances
	POST /events/{id}/performances - Add performance (admin)
	GET  /events/{id}/performances - Same as GET /events/{id}

Performances:

	GET   /performances/{id}       - Performance details
	PATCH /performances/{id}       - Open or close voting, set duration (admin)
	GET   /performances/{id}/tally - Current tally

Voting and live tallies:

	POST /vote                          - Cast a vote (member)
	GET  /events/{performanceId}/live   - SSE tally stream
	GET  /performances/{id}/live        - Same stream

Admin and member routes expect "Authorization: Bearer <token>".
*/
package router
