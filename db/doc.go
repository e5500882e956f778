// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the connection, schema creation and the relational store.

# Connecting

Open accepts "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite):

	conn, err := db.Open(ctx, db.TypeSQLite, "file:society.db")

Queries use $N placeholders, which both drivers understand.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - event: Society events
  - performance: Acts within an event, with their vote options and voting state
  - vote: One vote per user per performance

# Relationships

	event 1──* performance
	performance 1──* vote

All foreign keys use ON DELETE CASCADE.

# Errors

Store methods return models.ErrNotFound, models.ErrVotingClosed,
models.ErrInvalidOption and models.ErrDuplicateVote as-is. Any other
driver error is logged and wrapped with models.ErrPersistence.
*/
package db
