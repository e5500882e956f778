// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL sticks to types both PostgreSQL and SQLite accept.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Events
CREATE TABLE IF NOT EXISTS event (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    venue TEXT NOT NULL DEFAULT '',
    starts_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Performances
CREATE TABLE IF NOT EXISTS performance (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    performer TEXT NOT NULL DEFAULT '',
    options TEXT NOT NULL DEFAULT '["yes","no"]',
    voting_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    voting_duration_seconds INTEGER NOT NULL DEFAULT 0 CHECK (voting_duration_seconds >= 0),
    voting_opened_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_performance_event_id ON performance(event_id);
CREATE INDEX IF NOT EXISTS idx_performance_voting_enabled ON performance(voting_enabled);

-- Votes (one per user per performance)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    performance_id TEXT NOT NULL REFERENCES performance(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    value TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (performance_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_performance_id ON vote(performance_id);
`
