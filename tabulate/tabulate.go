// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tabulate

import (
	"fmt"

	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
)

// Service reads accepted responses and aggregates them.
type Service struct {
	store store.Store
}

// NewService constructs a tabulation service bound to the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Tabulate aggregates every accepted response for the survey. It is a
// read-only scan and may run concurrently with ongoing submissions; the
// result is a point-in-time summary, not a consistent snapshot.
func (s *Service) Tabulate(survey *models.Survey) ([]models.QuestionStatistics, int, error) {
	responses, err := s.store.ListAllResponses(survey.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("list responses: %w", err)
	}
	return Compute(survey, responses), len(responses), nil
}

// Compute produces per-question, per-panel statistics. Panel membership is
// re-derived from each response's attributes; responses whose attributes no
// longer match any declared panel are skipped rather than failing the whole
// aggregation. Option counters start at zero for every declared option, so
// never-chosen options report 0 instead of being absent.
func Compute(survey *models.Survey, responses []*models.SurveyResponse) []models.QuestionStatistics {
	out := make([]models.QuestionStatistics, len(survey.Questions))
	for i, q := range survey.Questions {
		out[i] = models.QuestionStatistics{
			QuestionIndex: i,
			QuestionKind:  q.QuestionKind(),
			Panels:        map[string]models.PanelStats{},
		}
		for _, p := range survey.Panels {
			out[i].Panels[p.ID] = emptyStats(q)
		}
	}

	for _, r := range responses {
		panel := models.FindEligiblePanel(r.Attributes, survey.Panels)
		if panel == nil {
			continue
		}

		for i, q := range survey.Questions {
			if i >= len(r.Answers) {
				break
			}
			stats := out[i].Panels[panel.ID]
			tally(q, r.Answers[i], &stats)
			out[i].Panels[panel.ID] = stats
		}
	}

	return out
}

func emptyStats(q models.Question) models.PanelStats {
	switch v := q.(type) {
	case models.SingleChoiceQuestion:
		return zeroCounts(v.Options)
	case models.MultipleChoiceQuestion:
		return zeroCounts(v.Options)
	default:
		return models.PanelStats{Texts: []string{}}
	}
}

func zeroCounts(options []string) models.PanelStats {
	counts := make([]models.OptionCount, len(options))
	for i, label := range options {
		counts[i] = models.OptionCount{Label: label}
	}
	return models.PanelStats{OptionCounts: counts}
}

// tally folds one answer into the panel's bucket. Answers whose kind does
// not match the question (possible in historical data) are ignored.
func tally(q models.Question, a models.Answer, stats *models.PanelStats) {
	switch v := a.(type) {
	case models.SingleChoiceAnswer:
		if _, ok := q.(models.SingleChoiceQuestion); !ok {
			return
		}
		increment(stats, v.Answer)
	case models.MultipleChoiceAnswer:
		if _, ok := q.(models.MultipleChoiceQuestion); !ok {
			return
		}
		// a respondent choosing k options increments k counters
		for _, idx := range v.Answer {
			increment(stats, idx)
		}
	case models.ShortAnswerAnswer:
		if _, ok := q.(models.ShortAnswerQuestion); !ok {
			return
		}
		stats.Texts = append(stats.Texts, v.Answer)
	case models.SubjectiveAnswer:
		if _, ok := q.(models.SubjectiveQuestion); !ok {
			return
		}
		stats.Texts = append(stats.Texts, v.Answer)
	}
}

// increment bumps the counter for a 1-based option index, ignoring indices
// outside the declared range.
func increment(stats *models.PanelStats, idx int) {
	if idx < 1 || idx > len(stats.OptionCounts) {
		return
	}
	stats.OptionCounts[idx-1].Count++
}
