// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (main loads an optional .env file
before calling ParseFlags), then CLI flags override them.

# Settings

	PORT                  -p                     default 3318
	DATABASE_URL          -d                     required
	DATABASE_TYPE         -t                     sqlite | postgres, default sqlite
	JWT_SECRET            -jwt-secret            required
	JWT_ISSUER            -jwt-issuer            optional
	STREAM_BUFFER         -stream-buffer         default 16
	STREAM_WRITE_TIMEOUT  -stream-write-timeout  default 5s
	STREAM_KEEPALIVE      -stream-keepalive      default 15s, 0 disables

# Validation

ParseFlags returns an error if DATABASE_URL or JWT_SECRET is missing, the
port is out of range, the database type is unknown, or a stream setting
is not positive.
*/
package cliparse
