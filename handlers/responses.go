// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/opensurvey/panelboard/auth"
	"github.com/opensurvey/panelboard/cliparse"
	"github.com/opensurvey/panelboard/intake"
	"github.com/opensurvey/panelboard/metrics"
	"github.com/opensurvey/panelboard/middleware"
	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
)

const (
	defaultPageSize = store.DefaultPageSize
	maxPageSize     = 200
)

type ResponseHandler struct {
	st  store.Store
	svc *intake.Service
	cfg cliparse.Config
}

func NewResponseHandler(st store.Store, cfg cliparse.Config) *ResponseHandler {
	return &ResponseHandler{st: st, svc: intake.NewService(st), cfg: cfg}
}

// SubmitResponse handles POST /surveys/:slug/responses
// The intake pipeline decides duplicate/panel/quota/schema; this handler
// gates on survey status and maps pipeline errors to HTTP codes.
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	survey, err := h.st.GetSurveyBySlug(shareSlug)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to query survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if survey.Status != models.StatusInProgress {
		middleware.ErrorResponse(w, http.StatusConflict, "Survey is not accepting responses")
		return
	}

	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ProofToken == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "proof_token is required")
		return
	}
	if err := req.Attributes.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	proofID := auth.HashProof(req.ProofToken, h.cfg.ProofSalt)

	result, err := h.svc.Submit(survey, proofID, req.Attributes, req.Answers)
	if err != nil {
		h.rejectSubmission(w, survey.ID, err)
		return
	}

	metrics.RecordSubmission(metrics.OutcomeAccepted)
	slog.Info("response accepted",
		"survey_id", survey.ID,
		"response_id", result.Response.ID,
		"panel_id", result.Panel.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponseResponse{
		ResponseID: result.Response.ID,
		PanelID:    result.Panel.ID,
	})
}

func (h *ResponseHandler) rejectSubmission(w http.ResponseWriter, surveyID string, err error) {
	var typeMismatch *models.TypeMismatchError
	var indexRange *models.IndexOutOfRangeError

	switch {
	case errors.Is(err, intake.ErrDuplicateSubmission):
		metrics.RecordSubmission(metrics.OutcomeDuplicate)
		middleware.ErrorResponse(w, http.StatusConflict, "Respondent has already submitted to this survey")
	case errors.Is(err, intake.ErrNoMatchingPanel):
		metrics.RecordSubmission(metrics.OutcomeNoPanel)
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, "No panel matches the respondent's attributes")
	case errors.Is(err, intake.ErrQuotaExceeded):
		metrics.RecordSubmission(metrics.OutcomeQuotaExceeded)
		middleware.ErrorResponse(w, http.StatusConflict, "Panel quota is already filled")
	case errors.Is(err, models.ErrLengthMismatch),
		errors.As(err, &typeMismatch),
		errors.As(err, &indexRange):
		metrics.RecordSubmission(metrics.OutcomeBadAnswers)
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		metrics.RecordSubmission(metrics.OutcomeError)
		slog.Error("failed to submit response", "error", err, "survey_id", surveyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit response")
	}
}

// ListResponses handles GET /surveys/:id/responses
// Admin-only; paginated with an opaque bookmark that stays stable while new
// responses arrive.
func (h *ResponseHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	surveyID := r.PathValue("id")
	if surveyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "survey_id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(surveyID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if _, err := h.st.GetSurvey(surveyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
			return
		}
		slog.Error("failed to query survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	pageSize := defaultPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		pageSize = n
	}

	var bookmark *string
	if raw := r.URL.Query().Get("bookmark"); raw != "" {
		bookmark = &raw
	}

	page, err := h.st.ListResponses(surveyID, pageSize, bookmark)
	if err != nil {
		slog.Error("failed to list responses", "error", err, "survey_id", surveyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, page)
}

// GetResponseCount handles GET /surveys/:slug/response-count
func (h *ResponseHandler) GetResponseCount(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	survey, err := h.st.GetSurveyBySlug(shareSlug)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
		return
	}
	if err != nil {
		slog.Error("failed to query survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	count, err := h.st.CountResponses(survey.ID)
	if err != nil {
		slog.Error("failed to count responses", "error", err, "survey_id", survey.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResponseCountResponse{ResponseCount: count})
}
