// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/testutil"
)

func TestGetResults_LiveRequiresAdminKey(t *testing.T) {
	st := testutil.NewTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(st, cfg)

	panel := womenPanel(t, st)
	survey, adminKey, _ := testutil.CreateTestSurvey(t, st, cfg, models.StatusInProgress, testutil.SingleChoiceSurveyQuestions(), []*models.Panel{panel})

	t.Run("no key", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/surveys/"+survey.ID+"/results", nil, nil)
		req.SetPathValue("id", survey.ID)
		w := httptest.NewRecorder()

		handler.GetResults(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("with key", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/surveys/"+survey.ID+"/results", nil, map[string]string{"X-Admin-Key": adminKey})
		req.SetPathValue("id", survey.ID)
		w := httptest.NewRecorder()

		handler.GetResults(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var snap models.ResultSnapshot
		testutil.AssertJSON(t, w, &snap)
		if snap.SurveyID != survey.ID {
			t.Errorf("snapshot survey = %s, want %s", snap.SurveyID, survey.ID)
		}
		if len(snap.Questions) != 1 {
			t.Errorf("expected stats for 1 question, got %d", len(snap.Questions))
		}
	})
}

func TestGetResults_LiveTabulation(t *testing.T) {
	st := testutil.NewTestStore(t)
	cfg := testutil.GetTestConfig()
	results := NewResultsHandler(st, cfg)
	responses := NewResponseHandler(st, cfg)

	panel := womenPanel(t, st)
	survey, adminKey, slug := testutil.CreateTestSurvey(t, st, cfg, models.StatusInProgress, testutil.SingleChoiceSurveyQuestions(), []*models.Panel{panel})

	req := testutil.MakeRequest("POST", "/surveys/"+slug+"/responses", submissionBody("proof-1"), nil)
	req.SetPathValue("slug", slug)
	w := httptest.NewRecorder()
	responses.SubmitResponse(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	rreq := testutil.MakeRequest("GET", "/surveys/"+survey.ID+"/results", nil, map[string]string{"X-Admin-Key": adminKey})
	rreq.SetPathValue("id", survey.ID)
	rw := httptest.NewRecorder()

	results.GetResults(rw, rreq)

	testutil.AssertStatus(t, rw, http.StatusOK)

	var snap models.ResultSnapshot
	testutil.AssertJSON(t, rw, &snap)
	if snap.ResponseCount != 1 {
		t.Errorf("response count = %d, want 1", snap.ResponseCount)
	}
	counts := snap.Questions[0].Panels[panel.ID].OptionCounts
	if len(counts) != 3 || counts[0].Count != 1 {
		t.Errorf("unexpected tallied counts: %+v", counts)
	}
}

func TestGetResults_FinishedServesSealedSnapshot(t *testing.T) {
	st := testutil.NewTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(st, cfg)

	panel := womenPanel(t, st)
	survey, _, _ := testutil.CreateTestSurvey(t, st, cfg, models.StatusFinish, testutil.SingleChoiceSurveyQuestions(), []*models.Panel{panel})

	sealed := &models.ResultSnapshot{
		ID:            "sealed-1",
		SurveyID:      survey.ID,
		ResponseCount: 42,
	}
	if err := st.AddSnapshot(sealed); err != nil {
		t.Fatal(err)
	}

	// No admin key needed once finished
	req := testutil.MakeRequest("GET", "/surveys/"+survey.ID+"/results", nil, nil)
	req.SetPathValue("id", survey.ID)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var snap models.ResultSnapshot
	testutil.AssertJSON(t, w, &snap)
	if snap.ID != "sealed-1" || snap.ResponseCount != 42 {
		t.Errorf("expected the sealed snapshot, got %+v", snap)
	}
}

func TestGetResults_UnknownSurvey(t *testing.T) {
	st := testutil.NewTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(st, cfg)

	req := testutil.MakeRequest("GET", "/surveys/missing/results", nil, nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
