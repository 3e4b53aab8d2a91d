// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the persistence collaborator and its two
implementations.

# Interface

Store covers the records the engine needs: panels, surveys (with questions
and per-survey panel capacities), accepted responses, and sealed result
snapshots.

The critical operation is InsertResponse. It must be atomic with respect to
two invariants:

  - at most one response per (survey_id, proof_id)
  - accepted responses matched to a panel never exceed that panel's
    per-survey capacity

A failed insert surfaces ErrDuplicateResponse or ErrQuotaExceeded and leaves
no partial state behind.

# Implementations

NewMemory returns a mutex-guarded in-memory store. Tests run against it, and
it backs the server's "memory" database type for local development.

NewPostgres wraps a database/sql connection. Dedup rides the schema's
UNIQUE (survey_id, proof_id) constraint; quota reservation is a conditional
increment:

	UPDATE panel_count
	SET consumed = consumed + 1
	WHERE survey_id = $1 AND panel_id = $2 AND consumed < user_count

Both run inside one transaction, so concurrent submissions cannot jointly
overrun a panel or double-record a proof.

# Pagination

ListResponses pages in creation order. The bookmark is the sequence number
of the last item returned; pass it back to resume. Accepted responses are
append-only, so the cursor is stable under concurrent submission.
*/
package store
