// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Update types pushed to live subscribers
const (
	UpdateTally  = "tally"
	UpdateClosed = "closed"
)

// Roles carried in identity tokens
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// DefaultOptions are used when a performance is created without options.
var DefaultOptions = []string{"yes", "no"}

// Request types

type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
}

type CreatePerformanceRequest struct {
	Title                 string   `json:"title"`
	Performer             string   `json:"performer"`
	Options               []string `json:"options"`
	VotingDurationSeconds int      `json:"votingDurationSeconds"`
}

// UpdatePerformanceRequest is a partial update; nil fields are left alone.
type UpdatePerformanceRequest struct {
	VotingEnabled         *bool `json:"votingEnabled,omitempty"`
	VotingDurationSeconds *int  `json:"votingDurationSeconds,omitempty"`
}

type CastVoteRequest struct {
	PerformanceID string    `json:"performanceId"`
	Value         VoteValue `json:"value"`
}

// VoteValue accepts either an option string or a JSON boolean.
// true maps to "yes" and false to "no".
type VoteValue string

func (v *VoteValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*v = "yes"
		} else {
			*v = "no"
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("value must be a string or boolean")
	}
	*v = VoteValue(strings.TrimSpace(s))
	return nil
}

// Domain types

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type EventWithPerformances struct {
	Event        Event         `json:"event"`
	Performances []Performance `json:"performances"`
}

type Performance struct {
	ID                    string     `json:"id"`
	EventID               string     `json:"eventId"`
	Title                 string     `json:"title"`
	Performer             string     `json:"performer"`
	Options               []string   `json:"options"`
	VotingEnabled         bool       `json:"votingEnabled"`
	VotingDurationSeconds int        `json:"votingDurationSeconds"`
	VotingOpenedAt        *time.Time `json:"votingOpenedAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// HasOption reports whether value is one of the performance's options.
func (p Performance) HasOption(value string) bool {
	for _, o := range p.Options {
		if o == value {
			return true
		}
	}
	return false
}

// VotingDeadline returns when voting closes automatically, if it does.
func (p Performance) VotingDeadline() (time.Time, bool) {
	if !p.VotingEnabled || p.VotingDurationSeconds <= 0 || p.VotingOpenedAt == nil {
		return time.Time{}, false
	}
	return p.VotingOpenedAt.Add(time.Duration(p.VotingDurationSeconds) * time.Second), true
}

type Vote struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	PerformanceID string    `json:"performanceId"`
	Value         string    `json:"value"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Tally holds per-option vote counts for a performance.
type Tally struct {
	PerformanceID string           `json:"performanceId"`
	Counts        map[string]int64 `json:"counts"`
	Total         int64            `json:"total"`
}

// NewTally returns an empty tally with every option present.
func NewTally(performanceID string, options []string) Tally {
	t := Tally{PerformanceID: performanceID, Counts: make(map[string]int64, len(options))}
	for _, o := range options {
		t.Counts[o] = 0
	}
	return t
}

// Add counts one vote for option.
func (t *Tally) Add(option string) {
	if t.Counts == nil {
		t.Counts = make(map[string]int64)
	}
	t.Counts[option]++
	t.Total++
}

// Clone returns a deep copy safe to hand to another goroutine.
func (t Tally) Clone() Tally {
	c := Tally{PerformanceID: t.PerformanceID, Total: t.Total, Counts: make(map[string]int64, len(t.Counts))}
	for k, v := range t.Counts {
		c.Counts[k] = v
	}
	return c
}

// TallyUpdate is one message on a live stream.
type TallyUpdate struct {
	Type   string    `json:"type"`
	Tally  Tally     `json:"tally"`
	SentAt time.Time `json:"sentAt"`
}

// Response envelope

type SuccessResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Success    bool     `json:"success"`
}
