// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub implements the live vote broadcast hub.

A Hub keeps, per performance, the cached tally and the set of live
subscribers. It is created at server start and torn down with Shutdown.

# Operations

	h := hub.New(store, hub.WithLogger(logger))
	sub, err := h.Subscribe(ctx, performanceID, sink)
	tally, err := h.RecordVote(ctx, userID, performanceID, "yes")
	perf, err := h.CloseVoting(ctx, performanceID)
	h.Unsubscribe(sub)

# Ordering

Every operation on one performance runs under that performance's lock:
the vote insert, the tally increment and the enqueue to each subscriber.
Each subscriber has its own bounded queue drained by a writer goroutine,
so network writes never happen under the lock and every subscriber sees
updates in commit order. Different performances never share a lock.

# Failures

A store error aborts RecordVote before the cached tally changes. A failed
or timed-out write, or a full queue, removes only that subscriber.

# Sinks

Transports implement Sink (Send, Close) and optionally Pinger for
keep-alive writes. See package sse for the Server-Sent Events sink.
*/
package hub
