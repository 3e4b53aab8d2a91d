// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/opensurvey/panelboard/auth"
	"github.com/opensurvey/panelboard/cliparse"
	"github.com/opensurvey/panelboard/middleware"
	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
)

type ExportHandler struct {
	st  store.Store
	cfg cliparse.Config
}

func NewExportHandler(st store.Store, cfg cliparse.Config) *ExportHandler {
	return &ExportHandler{st: st, cfg: cfg}
}

// ExportCSV handles GET /surveys/:id/export
// Admin-only CSV dump: one row per accepted response, choice answers rendered
// as option labels.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
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

	responses, err := h.st.ListAllResponses(surveyID)
	if err != nil {
		slog.Error("failed to list responses", "error", err, "survey_id", surveyID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="survey-`+surveyID+`.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)

	header := []string{"response_id", "created_at", "panel", "age", "gender", "region", "salary_tier"}
	for i, q := range survey.Questions {
		header = append(header, fmt.Sprintf("q%d_%s", i+1, questionTitle(q)))
	}
	if err := cw.Write(header); err != nil {
		slog.Error("failed to write CSV header", "error", err, "survey_id", surveyID)
		return
	}

	for _, resp := range responses {
		panelName := ""
		if panel := models.FindEligiblePanel(resp.Attributes, survey.Panels); panel != nil {
			panelName = panel.Name
		}
		row := []string{
			resp.ID,
			resp.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			panelName,
		}
		row = append(row, attributeColumns(resp.Attributes)...)
		for i, q := range survey.Questions {
			if i < len(resp.Answers) {
				row = append(row, renderAnswer(q, resp.Answers[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			slog.Error("failed to write CSV row", "error", err, "survey_id", surveyID)
			return
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to flush CSV", "error", err, "survey_id", surveyID)
	}
}

func questionTitle(q models.Question) string {
	switch v := q.(type) {
	case models.SingleChoiceQuestion:
		return v.Title
	case models.MultipleChoiceQuestion:
		return v.Title
	case models.ShortAnswerQuestion:
		return v.Title
	case models.SubjectiveQuestion:
		return v.Title
	}
	return ""
}

// attributeColumns renders the four dimensions in fixed column order,
// empty for unset.
func attributeColumns(attrs models.Attributes) []string {
	cols := []string{"", "", "", ""}
	for _, attr := range attrs {
		switch v := attr.(type) {
		case models.Age:
			switch {
			case v.Value != nil:
				cols[0] = strconv.Itoa(*v.Value)
			case v.Min != nil && v.Max != nil:
				cols[0] = fmt.Sprintf("%d-%d", *v.Min, *v.Max)
			}
		case models.Gender:
			cols[1] = v.Value
		case models.Region:
			cols[2] = v.Value
		case models.Salary:
			if v.Tier != 0 {
				cols[3] = strconv.Itoa(v.Tier)
			}
		}
	}
	return cols
}

// renderAnswer turns an answer into a single CSV cell. Choice answers use
// the option label; multiple selections are joined with "; ".
func renderAnswer(q models.Question, a models.Answer) string {
	switch v := a.(type) {
	case models.SingleChoiceAnswer:
		sq, ok := q.(models.SingleChoiceQuestion)
		if !ok {
			return ""
		}
		return optionLabel(sq.Options, v.Answer)
	case models.MultipleChoiceAnswer:
		mq, ok := q.(models.MultipleChoiceQuestion)
		if !ok {
			return ""
		}
		labels := make([]string, 0, len(v.Answer))
		for _, idx := range v.Answer {
			labels = append(labels, optionLabel(mq.Options, idx))
		}
		return strings.Join(labels, "; ")
	case models.ShortAnswerAnswer:
		return v.Answer
	case models.SubjectiveAnswer:
		return v.Answer
	}
	return ""
}

func optionLabel(options []string, idx int) string {
	if idx < 1 || idx > len(options) {
		return ""
	}
	return options[idx-1]
}
