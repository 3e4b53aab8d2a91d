// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package intake validates and persists survey submissions.

# Pipeline

Submit runs one submission attempt through five ordered stages:

 1. Duplicate check by (survey_id, proof_id) → ErrDuplicateSubmission
 2. Panel eligibility (models.FindEligiblePanel) → ErrNoMatchingPanel
 3. Quota check against the matched panel's per-survey capacity
    → ErrQuotaExceeded
 4. Answer-set validation (models.ValidateAnswerSet) → models.ErrLengthMismatch,
    *models.TypeMismatchError, *models.IndexOutOfRangeError
 5. Persist via store.InsertResponse

Quota is enforced at the panel the respondent actually matches rather than a
survey-wide cap: the survey may over-subscribe in aggregate while each
demographic cell stays protected from skew.

# Concurrency

Stages 1 and 3 are advisory pre-checks that fix which error a losing
submission reports. The store's InsertResponse re-applies both checks
atomically, so concurrent submissions cannot jointly overrun a panel or
record the same proof twice.

The service is status-agnostic: callers gate intake on the survey being
in progress before invoking Submit.
*/
package intake
