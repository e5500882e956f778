// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Event: a society event
  - Performance: a votable act within an event, with its voting options
  - Vote: one user's choice for one performance
  - Tally: per-option counts, always zero-filled for every option
  - TallyUpdate: a message pushed to live stream subscribers

# Envelope

Every JSON response is wrapped:

	{"statusCode": 200, "data": {...}, "message": "...", "success": true}
	{"statusCode": 400, "message": "...", "errors": ["..."], "success": false}

# Errors

Domain failures are sentinel errors matched with errors.Is:

	ErrNotFound, ErrVotingClosed, ErrDuplicateVote,
	ErrInvalidOption, ErrPersistence
*/
package models
