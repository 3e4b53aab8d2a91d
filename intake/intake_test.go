// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package intake

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
)

func intPtr(n int) *int { return &n }

func seoulWomen20s(quota int) *models.Panel {
	return &models.Panel{
		ID:        "seoul-women-20s",
		Name:      "Seoul women in their 20s",
		UserCount: quota,
		Attributes: models.Attributes{
			models.Age{Min: intPtr(18), Max: intPtr(29)},
			models.Gender{Value: models.GenderFemale},
			models.Region{Value: "seoul"},
		},
	}
}

func busanMen(quota int) *models.Panel {
	return &models.Panel{
		ID:        "busan-men",
		Name:      "Busan men",
		UserCount: quota,
		Attributes: models.Attributes{
			models.Gender{Value: models.GenderMale},
			models.Region{Value: "busan"},
		},
	}
}

func newSurvey(st store.Store, t *testing.T, panels ...*models.Panel) *models.Survey {
	t.Helper()
	counts := make([]models.PanelCount, 0, len(panels))
	for _, p := range panels {
		counts = append(counts, models.PanelCount{PanelID: p.ID, SurveyID: "s1", UserCount: p.UserCount})
	}
	now := time.Now().UTC()
	sv := &models.Survey{
		ID:     "s1",
		Title:  "Opinion survey",
		Status: models.StatusInProgress,
		Questions: models.Questions{
			models.SingleChoiceQuestion{Title: "Pick one", Options: []string{"a", "b", "c"}},
			models.ShortAnswerQuestion{Title: "Say why"},
		},
		Panels:      panels,
		PanelCounts: counts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := st.AddSurvey(sv); err != nil {
		t.Fatalf("AddSurvey: %v", err)
	}
	return sv
}

func validAnswers() models.Answers {
	return models.Answers{
		models.SingleChoiceAnswer{Answer: 2},
		models.ShortAnswerAnswer{Answer: "because"},
	}
}

func eligibleAttrs() models.Attributes {
	return models.Attributes{
		models.Age{Value: intPtr(24)},
		models.Gender{Value: models.GenderFemale},
		models.Region{Value: "seoul"},
	}
}

func TestSubmit_Accepted(t *testing.T) {
	st := store.NewMemory()
	sv := newSurvey(st, t, seoulWomen20s(10))
	svc := NewService(st)

	result, err := svc.Submit(sv, "proof-1", eligibleAttrs(), validAnswers())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Panel.ID != "seoul-women-20s" {
		t.Errorf("matched panel = %s, want seoul-women-20s", result.Panel.ID)
	}
	if result.Response.ID == "" {
		t.Error("response ID not assigned")
	}
	if result.Response.ProofID != "proof-1" {
		t.Errorf("proof ID = %s, want proof-1", result.Response.ProofID)
	}

	count, _ := st.CountResponses(sv.ID)
	if count != 1 {
		t.Errorf("expected 1 stored response, got %d", count)
	}
	remaining, _ := st.RemainingCapacity(sv.ID, "seoul-women-20s")
	if remaining != 9 {
		t.Errorf("expected 9 remaining, got %d", remaining)
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	st := store.NewMemory()
	sv := newSurvey(st, t, seoulWomen20s(10))
	svc := NewService(st)

	if _, err := svc.Submit(sv, "proof-1", eligibleAttrs(), validAnswers()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Submit(sv, "proof-1", eligibleAttrs(), validAnswers())
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("expected ErrDuplicateSubmission, got %v", err)
	}

	// Rejected resubmission must not touch the quota
	remaining, _ := st.RemainingCapacity(sv.ID, "seoul-women-20s")
	if remaining != 9 {
		t.Errorf("expected 9 remaining, got %d", remaining)
	}
}

func TestSubmit_NoMatchingPanel(t *testing.T) {
	st := store.NewMemory()
	sv := newSurvey(st, t, seoulWomen20s(10), busanMen(10))
	svc := NewService(st)

	attrs := models.Attributes{
		models.Age{Value: intPtr(45)},
		models.Gender{Value: models.GenderFemale},
		models.Region{Value: "daegu"},
	}
	_, err := svc.Submit(sv, "proof-1", attrs, validAnswers())
	if !errors.Is(err, ErrNoMatchingPanel) {
		t.Errorf("expected ErrNoMatchingPanel, got %v", err)
	}

	count, _ := st.CountResponses(sv.ID)
	if count != 0 {
		t.Errorf("expected nothing stored, got %d responses", count)
	}
}

func TestSubmit_QuotaExceeded(t *testing.T) {
	st := store.NewMemory()
	sv := newSurvey(st, t, seoulWomen20s(1))
	svc := NewService(st)

	if _, err := svc.Submit(sv, "proof-1", eligibleAttrs(), validAnswers()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Submit(sv, "proof-2", eligibleAttrs(), validAnswers())
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestSubmit_QuotaDoesNotSpillOver(t *testing.T) {
	// A respondent matched to a full panel is rejected even when a later
	// declared panel would also accept them: matching picks exactly one panel.
	st := store.NewMemory()
	full := &models.Panel{
		ID:        "women",
		Name:      "All women",
		UserCount: 1,
		Attributes: models.Attributes{
			models.Gender{Value: models.GenderFemale},
		},
	}
	alsoEligible := &models.Panel{
		ID:        "seoul",
		Name:      "Seoul residents",
		UserCount: 10,
		Attributes: models.Attributes{
			models.Region{Value: "seoul"},
		},
	}
	sv := newSurvey(st, t, full, alsoEligible)
	svc := NewService(st)

	attrs := models.Attributes{
		models.Gender{Value: models.GenderFemale},
		models.Region{Value: "seoul"},
	}
	if _, err := svc.Submit(sv, "proof-1", attrs, validAnswers()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Submit(sv, "proof-2", attrs, validAnswers())
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded without spillover, got %v", err)
	}
	remaining, _ := st.RemainingCapacity(sv.ID, "seoul")
	if remaining != 10 {
		t.Errorf("second panel should be untouched, remaining = %d", remaining)
	}
}

func TestSubmit_InvalidAnswers(t *testing.T) {
	st := store.NewMemory()
	sv := newSurvey(st, t, seoulWomen20s(10))
	svc := NewService(st)

	t.Run("length mismatch", func(t *testing.T) {
		answers := models.Answers{models.SingleChoiceAnswer{Answer: 1}}
		_, err := svc.Submit(sv, "proof-l", eligibleAttrs(), answers)
		if !errors.Is(err, models.ErrLengthMismatch) {
			t.Errorf("expected ErrLengthMismatch, got %v", err)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		answers := models.Answers{
			models.ShortAnswerAnswer{Answer: "not a choice"},
			models.ShortAnswerAnswer{Answer: "why"},
		}
		_, err := svc.Submit(sv, "proof-t", eligibleAttrs(), answers)
		var tm *models.TypeMismatchError
		if !errors.As(err, &tm) {
			t.Errorf("expected TypeMismatchError, got %v", err)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		answers := models.Answers{
			models.SingleChoiceAnswer{Answer: 9},
			models.ShortAnswerAnswer{Answer: "why"},
		}
		_, err := svc.Submit(sv, "proof-i", eligibleAttrs(), answers)
		var ir *models.IndexOutOfRangeError
		if !errors.As(err, &ir) {
			t.Errorf("expected IndexOutOfRangeError, got %v", err)
		}
	})

	// Invalid answers must leave no trace: same proof can retry and succeed
	t.Run("rejected proof can retry", func(t *testing.T) {
		if _, err := svc.Submit(sv, "proof-l", eligibleAttrs(), validAnswers()); err != nil {
			t.Errorf("retry after schema rejection failed: %v", err)
		}
	})
}

func TestSubmit_ErrorPrecedence(t *testing.T) {
	// A duplicate proof wins over every later rejection, and panel matching
	// is judged before quota and schema.
	st := store.NewMemory()
	sv := newSurvey(st, t, seoulWomen20s(1))
	svc := NewService(st)

	if _, err := svc.Submit(sv, "proof-1", eligibleAttrs(), validAnswers()); err != nil {
		t.Fatal(err)
	}

	// Duplicate + bad answers → duplicate reported
	badAnswers := models.Answers{models.SingleChoiceAnswer{Answer: 99}}
	_, err := svc.Submit(sv, "proof-1", eligibleAttrs(), badAnswers)
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("duplicate should win over schema, got %v", err)
	}

	// No panel + bad answers → no panel reported
	strangerAttrs := models.Attributes{models.Gender{Value: models.GenderMale}}
	_, err = svc.Submit(sv, "proof-2", strangerAttrs, badAnswers)
	if !errors.Is(err, ErrNoMatchingPanel) {
		t.Errorf("panel match should win over schema, got %v", err)
	}

	// Full quota + bad answers → quota reported
	_, err = svc.Submit(sv, "proof-3", eligibleAttrs(), badAnswers)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("quota should win over schema, got %v", err)
	}
}

func TestSubmit_ConcurrentQuotaRace(t *testing.T) {
	// Many goroutines race for a small quota; the store-side conditional
	// increment must keep acceptances exactly at the ceiling.
	st := store.NewMemory()
	const quota = 5
	sv := newSurvey(st, t, seoulWomen20s(quota))
	svc := NewService(st)

	var accepted, quotaRejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Submit(sv, fmt.Sprintf("proof-%d", n), eligibleAttrs(), validAnswers())
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrQuotaExceeded):
				quotaRejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted.Load() != quota {
		t.Errorf("accepted = %d, want exactly %d", accepted.Load(), quota)
	}
	count, _ := st.CountResponses(sv.ID)
	if count != quota {
		t.Errorf("stored = %d, want %d", count, quota)
	}
}

func TestSubmit_ConcurrentSameProof(t *testing.T) {
	st := store.NewMemory()
	sv := newSurvey(st, t, seoulWomen20s(50))
	svc := NewService(st)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Submit(sv, "shared-proof", eligibleAttrs(), validAnswers()); err == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	if accepted.Load() != 1 {
		t.Errorf("one proof should yield exactly 1 acceptance, got %d", accepted.Load())
	}
}
