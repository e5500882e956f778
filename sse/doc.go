// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sse provides a Server-Sent Events sink for the vote hub.
package sse
