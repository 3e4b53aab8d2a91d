// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/opensurvey/panelboard/auth"
	"github.com/opensurvey/panelboard/cliparse"
	"github.com/opensurvey/panelboard/middleware"
	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
	"github.com/opensurvey/panelboard/tabulate"
)

type ResultsHandler struct {
	st  store.Store
	tab *tabulate.Service
	cfg cliparse.Config
}

func NewResultsHandler(st store.Store, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{st: st, tab: tabulate.NewService(st), cfg: cfg}
}

// GetResults handles GET /surveys/:id/results
// Finished surveys serve the sealed snapshot; live surveys require the admin
// key and tabulate on the fly.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	surveyID := r.PathValue("id")
	if surveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "survey_id is required")
		return
	}

	survey, err := h.st.GetSurvey(surveyID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to query survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if survey.Status == models.StatusFinish {
		snapshot, err := h.st.GetSnapshot(surveyID)
		if err == nil {
			middleware.JSONResponse(w, http.StatusOK, snapshot)
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to query snapshot", "error", err, "survey_id", surveyID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		// No sealed snapshot; fall through to a live tabulation.
	} else {
		adminKey := r.Header.Get("X-Admin-Key")
		if err := auth.ValidateAdminKey(surveyID, adminKey, h.cfg.AdminKeySalt); err != nil {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
			return
		}
	}

	questions, responseCount, err := h.tab.Tabulate(survey)
	if err != nil {
		slog.Error("failed to tabulate survey", "error", err, "survey_id", surveyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultSnapshot{
		SurveyID:      surveyID,
		ComputedAt:    time.Now().UTC(),
		ResponseCount: responseCount,
		Questions:     questions,
	})
}
