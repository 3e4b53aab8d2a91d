// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Panelboard API.

# Handler Types

Each handler is a struct with store and config dependencies:

  - PanelHandler: Panel registry (create, list)
  - SurveyHandler: Survey lifecycle (create, publish, close)
  - ResponseHandler: Response intake, listing, and counts
  - ResultsHandler: Tabulated statistics retrieval
  - ExportHandler: CSV export of raw responses

Handlers are created via constructor functions that accept a store.Store
and Config:

	surveyHandler := handlers.NewSurveyHandler(st, cfg)

# Survey Lifecycle

Surveys progress through three states: ready → in_progress → finish

	POST /surveys              → CreateSurvey (returns admin_key)
	POST /surveys/{id}/publish → PublishSurvey (generates share_slug)
	POST /surveys/{id}/close   → CloseSurvey (seals a result snapshot)

Admin operations require the X-Admin-Key header.

# Response Intake

Respondents interact via the share slug:

	GET  /surveys/{slug}                → GetSurvey (questions and panels)
	POST /surveys/{slug}/responses      → SubmitResponse
	GET  /surveys/{slug}/response-count → GetResponseCount

Submission runs the intake pipeline (duplicate, panel match, quota,
answer schema) and maps its sentinel errors to HTTP status codes; the
responding handler also rejects submissions unless the survey is
in_progress.

# Results

Finished surveys serve the snapshot sealed at close time; in-flight
surveys require the admin key and tabulate on the fly:

	GET /surveys/{id}/results → GetResults
	GET /surveys/{id}/export  → ExportCSV (admin only)
*/
package handlers
