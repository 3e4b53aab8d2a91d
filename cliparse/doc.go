// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3428)
  - DatabaseURL: PostgreSQL connection string (required for postgres)
  - DatabaseType: "postgres" or "memory" (default: postgres)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - SurveySlugSalt: Secret for share slug generation (required)
  - ProofSalt: Secret for respondent proof hashing (required)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-admin-salt   Admin key salt
	-slug-salt    Survey slug salt
	-proof-salt   Proof hashing salt

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	ADMIN_KEY_SALT   → -admin-salt
	SURVEY_SLUG_SALT → -slug-salt
	PROOF_SALT       → -proof-salt

CLI flags take precedence over environment variables. main loads a .env file
via godotenv before parsing, so local development can keep everything there.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided when DATABASE_TYPE is postgres
  - ADMIN_KEY_SALT, SURVEY_SLUG_SALT, and PROOF_SALT must be provided
*/
package cliparse
