// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Panelboard API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, cfg)

# Endpoints

Health and telemetry:

	GET /health
	GET /metrics

Panel registry:

	POST /panels - Create panel
	GET  /panels - List panels

Survey management (admin, requires X-Admin-Key):

	POST /surveys               - Create survey
	GET  /surveys/{id}/admin    - Get survey details
	POST /surveys/{id}/publish  - Open for responses
	POST /surveys/{id}/close    - Seal results
	GET  /surveys/{id}/responses - List raw responses (paginated)
	GET  /surveys/{id}/results   - Tabulated statistics
	GET  /surveys/{id}/export    - CSV export

Respondent operations (public, uses share slug):

	GET  /surveys/{slug}                - Survey info and questions
	POST /surveys/{slug}/responses      - Submit response
	GET  /surveys/{slug}/response-count - Accepted response count

# Handler Initialization

The router creates handler instances with dependency injection:

	surveyHandler := handlers.NewSurveyHandler(st, cfg)
	responseHandler := handlers.NewResponseHandler(st, cfg)

All handlers receive the backing store and configuration.
*/
package router
