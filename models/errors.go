// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrNotFound      = errors.New("performance not found")
	ErrVotingClosed  = errors.New("voting is closed for this performance")
	ErrDuplicateVote = errors.New("user has already voted for this performance")
	ErrInvalidOption = errors.New("invalid vote option")
	ErrMissingUser   = errors.New("user id is required")
	ErrPersistence   = errors.New("persistence failure")
)
