// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the society live API.

# Handler Types

  - VotingHandler: vote casting through the hub
  - LiveHandler: Server-Sent Events tally streams
  - PerformanceHandler: performance details, voting toggle, tally snapshot
  - EventHandler: event creation and listing

Handlers are created via constructor functions:

	votingHandler := handlers.NewVotingHandler(votes)
	perfHandler := handlers.NewPerformanceHandler(store, votes)

# Voting Flow

	POST  /vote                              → CastVote (user token)
	GET   /events/{performanceId}/live       → Stream
	PATCH /performances/{id}                 → UpdatePerformance (admin)

A closed performance answers 400 with error code VOTING_CLOSED, a repeat
vote answers 400 with DUPLICATE_VOTE.

# Live Streams

The first event on a stream is always the current tally. Each recorded
vote pushes a "tally" event; closing voting pushes a "closed" event and
ends the stream. Reconnecting clients simply open a new stream.
*/
package handlers
