// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opensurvey/panelboard/auth"
	"github.com/opensurvey/panelboard/cliparse"
	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
)

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3428,
		DatabaseType:   "memory",
		AdminKeySalt:   "test-admin-salt",
		SurveySlugSalt: "test-slug-salt",
		ProofSalt:      "test-proof-salt",
	}
}

// NewTestStore returns a fresh in-memory store
func NewTestStore(t *testing.T) store.Store {
	t.Helper()
	return store.NewMemory()
}

// IntPtr returns a pointer to n; handy for Age and PanelSelection literals
func IntPtr(n int) *int { return &n }

// AgeRange builds an inclusive age-range attribute
func AgeRange(min, max int) models.Age {
	return models.Age{Min: IntPtr(min), Max: IntPtr(max)}
}

// AgeValue builds a specific-age attribute
func AgeValue(v int) models.Age {
	return models.Age{Value: IntPtr(v)}
}

// CreateTestPanel creates a panel in the store and returns it
func CreateTestPanel(t *testing.T, st store.Store, name string, userCount int, attrs models.Attributes) *models.Panel {
	t.Helper()

	id, _ := auth.GenerateID(12)
	panel := &models.Panel{
		ID:         id,
		Name:       name,
		UserCount:  userCount,
		Attributes: attrs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := st.AddPanel(panel); err != nil {
		t.Fatalf("Failed to create test panel: %v", err)
	}
	return panel
}

// CreateTestSurvey creates a survey in the given status and returns the
// survey plus its admin key and share slug (empty unless published).
// status should be "ready", "in_progress", or "finish".
func CreateTestSurvey(t *testing.T, st store.Store, cfg cliparse.Config, status string, questions models.Questions, panels []*models.Panel) (survey *models.Survey, adminKey, shareSlug string) {
	t.Helper()

	surveyID, _ := auth.GenerateID(16)
	adminKey = auth.GenerateAdminKey(surveyID, cfg.AdminKeySalt)

	counts := make([]models.PanelCount, 0, len(panels))
	for _, p := range panels {
		counts = append(counts, models.PanelCount{
			PanelID:   p.ID,
			SurveyID:  surveyID,
			UserCount: p.UserCount,
		})
	}

	now := time.Now().UTC()
	survey = &models.Survey{
		ID:          surveyID,
		Title:       "Test Survey",
		Description: "A test survey",
		Status:      models.StatusReady,
		Questions:   questions,
		Panels:      panels,
		PanelCounts: counts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := st.AddSurvey(survey); err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	if status == models.StatusInProgress || status == models.StatusFinish {
		s := auth.GenerateShareSlug(surveyID, cfg.SurveySlugSalt)
		shareSlug = s
		if err := st.UpdateSurveyStatus(surveyID, models.StatusInProgress, &s, nil); err != nil {
			t.Fatalf("Failed to publish test survey: %v", err)
		}
	}
	if status == models.StatusFinish {
		closedAt := time.Now().UTC()
		if err := st.UpdateSurveyStatus(surveyID, models.StatusFinish, nil, &closedAt); err != nil {
			t.Fatalf("Failed to close test survey: %v", err)
		}
	}

	survey, err := st.GetSurvey(surveyID)
	if err != nil {
		t.Fatalf("Failed to reload test survey: %v", err)
	}
	return survey, adminKey, shareSlug
}

// SingleChoiceSurveyQuestions is a minimal one-question schema used across
// handler tests.
func SingleChoiceSurveyQuestions() models.Questions {
	return models.Questions{
		models.SingleChoiceQuestion{
			Title:   "Favorite color",
			Options: []string{"red", "green", "blue"},
		},
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
