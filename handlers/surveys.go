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

type SurveyHandler struct {
	st  store.Store
	tab *tabulate.Service
	cfg cliparse.Config
}

func NewSurveyHandler(st store.Store, cfg cliparse.Config) *SurveyHandler {
	return &SurveyHandler{st: st, tab: tabulate.NewService(st), cfg: cfg}
}

// CreateSurvey handles POST /surveys
// Questions, panel selection and per-survey capacities are fixed here; they
// are never mutated afterwards.
func (h *SurveyHandler) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	for _, q := range req.Questions {
		switch v := q.(type) {
		case models.SingleChoiceQuestion:
			if len(v.Options) == 0 {
				middleware.ErrorResponse(w, http.StatusBadRequest, "question has no options")
				return
			}
		case models.MultipleChoiceQuestion:
			if len(v.Options) == 0 {
				middleware.ErrorResponse(w, http.StatusBadRequest, "question has no options")
				return
			}
		}
	}

	// Resolve panel selections against the registry. Selection order is
	// the declaration order used for the eligibility tie-break.
	panels := make([]*models.Panel, 0, len(req.Panels))
	surveyID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate survey ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create survey")
		return
	}
	counts := make([]models.PanelCount, 0, len(req.Panels))
	for _, sel := range req.Panels {
		panel, err := h.st.GetPanel(sel.PanelID)
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown panel: "+sel.PanelID)
			return
		}
		if err != nil {
			slog.Error("failed to load panel", "error", err, "panel_id", sel.PanelID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		panels = append(panels, panel)

		userCount := panel.UserCount
		if sel.UserCount != nil {
			userCount = *sel.UserCount
		}
		if userCount < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "user_count must not be negative")
			return
		}
		counts = append(counts, models.PanelCount{
			PanelID:   panel.ID,
			SurveyID:  surveyID,
			UserCount: userCount,
		})
	}

	now := time.Now().UTC()
	survey := &models.Survey{
		ID:          surveyID,
		OrgID:       req.OrgID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusReady,
		Questions:   req.Questions,
		Panels:      panels,
		PanelCounts: counts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.st.AddSurvey(survey); err != nil {
		slog.Error("failed to insert survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create survey")
		return
	}

	adminKey := auth.GenerateAdminKey(surveyID, h.cfg.AdminKeySalt)

	slog.Info("survey created", "survey_id", surveyID, "questions", len(req.Questions), "panels", len(panels))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSurveyResponse{
		SurveyID: surveyID,
		AdminKey: adminKey,
	})
}

// GetSurveyAdmin handles GET /surveys/:id/admin
func (h *SurveyHandler) GetSurveyAdmin(w http.ResponseWriter, r *http.Request) {
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

	middleware.JSONResponse(w, http.StatusOK, survey)
}

// GetSurvey handles GET /surveys/:slug
// Public survey detail: questions and panels, no responses or results.
func (h *SurveyHandler) GetSurvey(w http.ResponseWriter, r *http.Request) {
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

	middleware.JSONResponse(w, http.StatusOK, survey)
}

// PublishSurvey handles POST /surveys/:id/publish
func (h *SurveyHandler) PublishSurvey(w http.ResponseWriter, r *http.Request) {
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

	if survey.Status != models.StatusReady {
		middleware.ErrorResponse(w, http.StatusConflict, "Survey is not in ready status")
		return
	}
	if len(survey.Panels) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Survey must declare at least one panel")
		return
	}

	shareSlug := auth.GenerateShareSlug(surveyID, h.cfg.SurveySlugSalt)
	if err := h.st.UpdateSurveyStatus(surveyID, models.StatusInProgress, &shareSlug, nil); err != nil {
		slog.Error("failed to publish survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish survey")
		return
	}

	slog.Info("survey published", "survey_id", surveyID, "share_slug", shareSlug)

	baseURL := "https://panelboard.example.com" // TODO: Make this configurable
	middleware.JSONResponse(w, http.StatusOK, models.PublishSurveyResponse{
		ShareSlug: shareSlug,
		ShareURL:  baseURL + "/surveys/" + shareSlug,
	})
}

// CloseSurvey handles POST /surveys/:id/close
// Seals a tabulation snapshot and stops intake.
func (h *SurveyHandler) CloseSurvey(w http.ResponseWriter, r *http.Request) {
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

	if survey.Status != models.StatusInProgress {
		middleware.ErrorResponse(w, http.StatusConflict, "Survey is not in progress")
		return
	}

	questions, responseCount, err := h.tab.Tabulate(survey)
	if err != nil {
		slog.Error("failed to tabulate survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute results")
		return
	}

	snapshotID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate snapshot ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close survey")
		return
	}
	closedAt := time.Now().UTC()
	snapshot := models.ResultSnapshot{
		ID:            snapshotID,
		SurveyID:      surveyID,
		ComputedAt:    closedAt,
		ResponseCount: responseCount,
		Questions:     questions,
	}
	if err := h.st.AddSnapshot(&snapshot); err != nil {
		slog.Error("failed to insert snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}
	if err := h.st.UpdateSurveyStatus(surveyID, models.StatusFinish, nil, &closedAt); err != nil {
		slog.Error("failed to close survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close survey")
		return
	}

	slog.Info("survey closed", "survey_id", surveyID, "snapshot_id", snapshotID, "responses", responseCount)

	middleware.JSONResponse(w, http.StatusOK, models.CloseSurveyResponse{
		ClosedAt: closedAt,
		Snapshot: snapshot,
	})
}
