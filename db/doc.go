// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - panel: Registered panels with target attributes (JSONB)
  - survey: Survey metadata, lifecycle state, and question schema (JSONB)
  - survey_panel: Ordered panel declarations per survey
  - panel_count: Per-survey panel capacity and consumed counter
  - survey_response: One accepted response per (survey, proof)
  - result_snapshot: Immutable tabulation sealed at close time

# Relationships

	survey *──* panel (via survey_panel)
	survey 1──* panel_count
	survey 1──* survey_response
	survey 1──* result_snapshot

All foreign keys use ON DELETE CASCADE.

# Constraints

The quota invariant lives in the schema: panel_count.consumed is CHECKed to
stay within [0, user_count], and survey_response carries a UNIQUE
(survey_id, proof_id) pair so duplicate submissions surface as constraint
violations inside the insert transaction.

# Indexes

Performance indexes on:

  - survey.share_slug (unique)
  - survey.status
  - survey_panel.survey_id
  - survey_response.survey_id
  - survey_response.(survey_id, seq)
*/
package db
