// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Panelboard API server.

Panelboard is an opinion-research service: surveys target panels of
respondents described by demographic attributes (age, gender, region,
salary tier), responses are matched to panels and counted against
per-survey quotas, and results are tabulated per panel.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3428 -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string (postgres only)
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - SURVEY_SLUG_SALT (--slug-salt): Secret for share slug generation
  - PROOF_SALT (--proof-salt): Secret for respondent proof hashing

Optional settings:

  - PORT (-p): Server port (default: 3428)
  - DATABASE_TYPE (-t): "postgres" (default) or "memory"

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (panels, surveys, responses, results, export)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Attributes, questions, answers, and request/response types
  - intake: Response acceptance pipeline (duplicate, panel match, quota, schema)
  - tabulate: Per-panel statistics
  - store: Persistence interface with Postgres and in-memory implementations
  - auth: Key, slug, and proof-hash generation
  - db: Schema creation
  - cliparse: Configuration parsing
  - metrics: Prometheus counters and histograms

See package documentation for each component.
*/
package main
