// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package intake

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
)

var (
	// ErrDuplicateSubmission is returned when the same proof already has a
	// response recorded for the survey.
	ErrDuplicateSubmission = errors.New("a response with this proof already exists for this survey")
	// ErrNoMatchingPanel is returned when the respondent's attributes
	// satisfy none of the survey's panels.
	ErrNoMatchingPanel = errors.New("respondent attributes match no declared panel")
	// ErrQuotaExceeded is returned when the matched panel has no remaining
	// capacity within the survey.
	ErrQuotaExceeded = errors.New("matched panel has reached its capacity")
)

// Result carries the accepted response together with the panel it was
// matched to.
type Result struct {
	Response *models.SurveyResponse
	Panel    *models.Panel
}

// Service validates incoming submissions and persists the accepted ones.
type Service struct {
	store       store.Store
	now         func() time.Time
	idGenerator func() string
}

// NewService constructs a validator bound to the given store.
func NewService(st store.Store) *Service {
	return &Service{
		store:       st,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: uuid.NewString,
	}
}

// Submit runs the intake pipeline for one submission attempt:
//
//	duplicate check → panel match → quota check → schema validation → persist
//
// Each stage rejects with its own error so callers can report which rule was
// violated. The early checks fix the error precedence; the store insert
// re-applies the duplicate and quota checks atomically, so two concurrent
// submissions cannot both slip through a pre-check.
func (s *Service) Submit(survey *models.Survey, proofID string, attrs models.Attributes, answers models.Answers) (*Result, error) {
	exists, err := s.store.HasResponse(survey.ID, proofID)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSubmission
	}

	panel := models.FindEligiblePanel(attrs, survey.Panels)
	if panel == nil {
		return nil, ErrNoMatchingPanel
	}

	remaining, err := s.store.RemainingCapacity(survey.ID, panel.ID)
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if remaining <= 0 {
		return nil, ErrQuotaExceeded
	}

	if err := models.ValidateAnswerSet(survey.Questions, answers); err != nil {
		return nil, err
	}

	now := s.now()
	resp := &models.SurveyResponse{
		ID:         s.idGenerator(),
		SurveyID:   survey.ID,
		ProofID:    proofID,
		Attributes: attrs,
		Answers:    answers,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.InsertResponse(resp, panel.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateResponse):
			return nil, ErrDuplicateSubmission
		case errors.Is(err, store.ErrQuotaExceeded):
			return nil, ErrQuotaExceeded
		default:
			return nil, fmt.Errorf("persist response: %w", err)
		}
	}

	return &Result{Response: resp, Panel: panel}, nil
}
