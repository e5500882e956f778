// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the society live voting server.

The server backs a college-society events app: members browse events and
vote on performances, and everyone watching sees the tally change live.

# Starting the Server

	DATABASE_URL=file:dev.db JWT_SECRET=dev go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." -jwt-secret dev

A .env file in the working directory is loaded if present.

# Architecture

  - hub: in-process vote broadcast hub, one critical section per performance
  - sse: Server-Sent Events sink for hub subscribers
  - handlers: HTTP request handlers (votes, live streams, performances, events)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, auth guards, JSON envelope
  - auth: identity token verification
  - models: Request/response and domain types
  - db: Schema creation and the relational store
  - cliparse: Configuration parsing

On SIGINT or SIGTERM the hub ends every live stream before the HTTP server
shuts down.
*/
package main
