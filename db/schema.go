// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Panels (registry, reusable across surveys)
CREATE TABLE IF NOT EXISTS panel (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    user_count INTEGER NOT NULL CHECK (user_count >= 0),
    attributes JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Surveys
CREATE TABLE IF NOT EXISTS survey (
    id TEXT PRIMARY KEY,
    org_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'ready' CHECK (status IN ('ready', 'in_progress', 'finish')),
    share_slug TEXT UNIQUE,
    questions JSONB NOT NULL DEFAULT '[]',
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_survey_share_slug ON survey(share_slug);
CREATE INDEX IF NOT EXISTS idx_survey_status ON survey(status);

-- Panel selection per survey, ordered. Declaration order is the
-- eligibility tie-break, so position matters.
CREATE TABLE IF NOT EXISTS survey_panel (
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    panel_id TEXT NOT NULL REFERENCES panel(id),
    position INTEGER NOT NULL,
    PRIMARY KEY (survey_id, panel_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_panel_survey ON survey_panel(survey_id);

-- Per-survey panel capacity with the consumed counter. Reservation is a
-- conditional increment against user_count.
CREATE TABLE IF NOT EXISTS panel_count (
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    panel_id TEXT NOT NULL REFERENCES panel(id),
    user_count INTEGER NOT NULL CHECK (user_count >= 0),
    consumed INTEGER NOT NULL DEFAULT 0 CHECK (consumed >= 0 AND consumed <= user_count),
    PRIMARY KEY (survey_id, panel_id)
);

-- Accepted responses. One per (survey_id, proof_id); seq drives stable
-- pagination in creation order.
CREATE TABLE IF NOT EXISTS survey_response (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL,
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    proof_id TEXT NOT NULL,
    panel_id TEXT NOT NULL,
    attributes JSONB NOT NULL DEFAULT '[]',
    answers JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (survey_id, proof_id)
);

CREATE INDEX IF NOT EXISTS idx_survey_response_survey ON survey_response(survey_id, seq);

-- Sealed tabulation written when a survey closes
CREATE TABLE IF NOT EXISTS result_snapshot (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    computed_at TIMESTAMP NOT NULL DEFAULT NOW(),
    response_count INTEGER NOT NULL DEFAULT 0,
    payload JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_result_snapshot_survey ON result_snapshot(survey_id);
`
