// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"time"

	"github.com/opensurvey/panelboard/models"
)

// DefaultPageSize is the page size ListResponses applies when the caller
// passes a non-positive value.
const DefaultPageSize = 50

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateResponse is returned when a response for the same
	// (survey, proof) pair already exists.
	ErrDuplicateResponse = errors.New("response already recorded for this proof")
	// ErrQuotaExceeded is returned when the matched panel has no remaining
	// capacity within the survey.
	ErrQuotaExceeded = errors.New("panel quota exhausted")
)

// Store is the persistence collaborator. Implementations must make
// InsertResponse a single atomic unit: the (survey_id, proof_id) uniqueness
// check and the panel quota check-and-increment either both take effect or
// neither does, even under concurrent submission.
type Store interface {
	AddPanel(p *models.Panel) error
	GetPanel(id string) (*models.Panel, error)
	ListPanels() ([]*models.Panel, error)

	AddSurvey(s *models.Survey) error
	GetSurvey(id string) (*models.Survey, error)
	GetSurveyBySlug(slug string) (*models.Survey, error)
	// UpdateSurveyStatus transitions lifecycle state, optionally setting
	// the share slug (publish) or close time (close).
	UpdateSurveyStatus(id, status string, slug *string, closedAt *time.Time) error

	// InsertResponse appends an accepted response, enforcing the proof
	// uniqueness constraint and reserving one unit of the matched panel's
	// per-survey quota. Returns ErrDuplicateResponse or ErrQuotaExceeded.
	InsertResponse(r *models.SurveyResponse, panelID string) error
	// HasResponse is the advisory duplicate pre-check; InsertResponse
	// remains the authority under concurrency.
	HasResponse(surveyID, proofID string) (bool, error)
	// RemainingCapacity re-derives the panel's unconsumed quota within the
	// survey at call time.
	RemainingCapacity(surveyID, panelID string) (int, error)

	// ListResponses pages in acceptance order; a non-positive pageSize
	// falls back to DefaultPageSize.
	ListResponses(surveyID string, pageSize int, bookmark *string) (*models.ResponsePage, error)
	ListAllResponses(surveyID string) ([]*models.SurveyResponse, error)
	CountResponses(surveyID string) (int, error)

	AddSnapshot(snap *models.ResultSnapshot) error
	GetSnapshot(surveyID string) (*models.ResultSnapshot, error)
}
