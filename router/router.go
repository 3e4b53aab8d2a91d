// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opensurvey/panelboard/cliparse"
	"github.com/opensurvey/panelboard/handlers"
	"github.com/opensurvey/panelboard/middleware"
	"github.com/opensurvey/panelboard/store"
)

func NewRouter(st store.Store, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	panelHandler := handlers.NewPanelHandler(st, cfg)
	surveyHandler := handlers.NewSurveyHandler(st, cfg)
	responseHandler := handlers.NewResponseHandler(st, cfg)
	resultsHandler := handlers.NewResultsHandler(st, cfg)
	exportHandler := handlers.NewExportHandler(st, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	// Panel registry
	mux.HandleFunc("POST /panels", middleware.WithLogging(panelHandler.CreatePanel))
	mux.HandleFunc("GET /panels", middleware.WithLogging(panelHandler.ListPanels))

	// Survey management (admin operations)
	mux.HandleFunc("POST /surveys", middleware.WithLogging(surveyHandler.CreateSurvey))
	mux.HandleFunc("GET /surveys/{id}/admin", middleware.WithLogging(surveyHandler.GetSurveyAdmin))
	mux.HandleFunc("POST /surveys/{id}/publish", middleware.WithLogging(surveyHandler.PublishSurvey))
	mux.HandleFunc("POST /surveys/{id}/close", middleware.WithLogging(surveyHandler.CloseSurvey))
	mux.HandleFunc("GET /surveys/{id}/responses", middleware.WithLogging(responseHandler.ListResponses))
	mux.HandleFunc("GET /surveys/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /surveys/{id}/export", middleware.WithLogging(exportHandler.ExportCSV))

	// Respondent operations (public, by share slug)
	mux.HandleFunc("GET /surveys/{slug}", middleware.WithLogging(surveyHandler.GetSurvey))
	mux.HandleFunc("POST /surveys/{slug}/responses", middleware.WithLogging(responseHandler.SubmitResponse))
	mux.HandleFunc("GET /surveys/{slug}/response-count", middleware.WithLogging(responseHandler.GetResponseCount))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("panelboard API v1"))
	})

	return mux
}
