// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key generation and proof hashing utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(surveyID, salt)
	err := auth.ValidateAdminKey(surveyID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same survey ID and salt always produce the same key. This allows
validation without storing the key in the database.

# Share Slugs

Share slugs create URL-friendly identifiers for published surveys:

	slug := auth.GenerateShareSlug(surveyID, salt)

Slugs are base62 encoded (alphanumeric only) for easy sharing. Like admin
keys, they're deterministic from the survey ID and salt.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Proof Hashing

Respondent identity proofs are stored hashed:

	proofID := auth.HashProof(rawProof, salt)

Returns the first 16 bytes (32 hex chars) of HMAC-SHA256. The hash is what
the response store deduplicates on, so raw identity tokens never persist.
*/
package auth
