// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/testutil"
)

// TestConcurrentSubmissions_QuotaCeiling hammers one small panel from many
// goroutines; acceptances must land exactly on the quota.
func TestConcurrentSubmissions_QuotaCeiling(t *testing.T) {
	st := testutil.NewTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewResponseHandler(st, cfg)

	panel := &models.Panel{
		ID: "scarce", Name: "Scarce", UserCount: 8,
		Attributes: models.Attributes{models.Gender{Value: models.GenderFemale}},
	}
	if err := st.AddPanel(panel); err != nil {
		t.Fatal(err)
	}
	survey, _, slug := testutil.CreateTestSurvey(t, st, cfg, models.StatusInProgress, testutil.SingleChoiceSurveyQuestions(), []*models.Panel{panel})

	const attempts = 60
	var accepted, conflicted, other atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/surveys/"+slug+"/responses", submissionBody(fmt.Sprintf("proof-%d", n)), nil)
			req.SetPathValue("slug", slug)
			w := httptest.NewRecorder()

			handler.SubmitResponse(w, req)

			switch w.Code {
			case http.StatusCreated:
				accepted.Add(1)
			case http.StatusConflict:
				conflicted.Add(1)
			default:
				other.Add(1)
				t.Errorf("unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}
	wg.Wait()

	if accepted.Load() != 8 {
		t.Errorf("accepted = %d, want exactly 8", accepted.Load())
	}
	if conflicted.Load() != attempts-8 {
		t.Errorf("conflicted = %d, want %d", conflicted.Load(), attempts-8)
	}

	count, _ := st.CountResponses(survey.ID)
	if count != 8 {
		t.Errorf("stored responses = %d, want 8", count)
	}
}

// TestConcurrentSubmissions_SameProof races one respondent identity; only one
// submission may be recorded no matter the interleaving.
func TestConcurrentSubmissions_SameProof(t *testing.T) {
	st := testutil.NewTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewResponseHandler(st, cfg)

	panel := &models.Panel{
		ID: "wide", Name: "Wide", UserCount: 100,
		Attributes: models.Attributes{models.Gender{Value: models.GenderFemale}},
	}
	if err := st.AddPanel(panel); err != nil {
		t.Fatal(err)
	}
	survey, _, slug := testutil.CreateTestSurvey(t, st, cfg, models.StatusInProgress, testutil.SingleChoiceSurveyQuestions(), []*models.Panel{panel})

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/surveys/"+slug+"/responses", submissionBody("one-respondent"), nil)
			req.SetPathValue("slug", slug)
			w := httptest.NewRecorder()

			handler.SubmitResponse(w, req)

			if w.Code == http.StatusCreated {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("accepted = %d, want exactly 1", accepted.Load())
	}
	count, _ := st.CountResponses(survey.ID)
	if count != 1 {
		t.Errorf("stored responses = %d, want 1", count)
	}
}
