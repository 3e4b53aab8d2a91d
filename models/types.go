package models

import "time"

// Survey status constants
const (
	StatusReady      = "ready"
	StatusInProgress = "in_progress"
	StatusFinish     = "finish"
)

// Request types

type CreatePanelRequest struct {
	Name       string     `json:"name"`
	UserCount  int        `json:"user_count"`
	Attributes Attributes `json:"attributes"`
}

type PanelSelection struct {
	PanelID string `json:"panel_id"`
	// UserCount overrides the panel's default capacity for this survey.
	UserCount *int `json:"user_count,omitempty"`
}

type CreateSurveyRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	OrgID       string           `json:"org_id"`
	Questions   Questions        `json:"questions"`
	Panels      []PanelSelection `json:"panels"`
}

type SubmitResponseRequest struct {
	ProofToken string     `json:"proof_token"`
	Attributes Attributes `json:"attributes"`
	Answers    Answers    `json:"answers"`
}

// Response types

type CreatePanelResponse struct {
	PanelID string `json:"panel_id"`
}

type CreateSurveyResponse struct {
	SurveyID string `json:"survey_id"`
	AdminKey string `json:"admin_key"`
}

type PublishSurveyResponse struct {
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type SubmitResponseResponse struct {
	ResponseID string `json:"response_id"`
	PanelID    string `json:"panel_id"`
}

type CloseSurveyResponse struct {
	ClosedAt time.Time      `json:"closed_at"`
	Snapshot ResultSnapshot `json:"snapshot"`
}

type ResponsePage struct {
	Items        []*SurveyResponse `json:"items"`
	NextBookmark *string           `json:"next_bookmark,omitempty"`
	TotalCount   int               `json:"total_count"`
}

type ResponseCountResponse struct {
	ResponseCount int `json:"response_count"`
}

// Domain types

type Panel struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	UserCount  int        `json:"user_count"`
	Attributes Attributes `json:"attributes"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PanelCount binds a panel to a survey with the capacity allotted within
// that survey, which may differ from the panel's own default.
type PanelCount struct {
	PanelID   string `json:"panel_id"`
	SurveyID  string `json:"panel_survey_id"`
	UserCount int    `json:"user_count"`
	Consumed  int    `json:"consumed"`
}

type Survey struct {
	ID          string       `json:"id"`
	OrgID       string       `json:"org_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	ShareSlug   *string      `json:"share_slug,omitempty"`
	Questions   Questions    `json:"questions"`
	Panels      []*Panel     `json:"panels"`
	PanelCounts []PanelCount `json:"panel_counts"`
	ClosedAt    *time.Time   `json:"closed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// QuotaFor returns the capacity allotted to a panel within this survey,
// falling back to the panel's default when no binding exists.
func (s *Survey) QuotaFor(panelID string) int {
	for _, pc := range s.PanelCounts {
		if pc.PanelID == panelID {
			return pc.UserCount
		}
	}
	for _, p := range s.Panels {
		if p.ID == panelID {
			return p.UserCount
		}
	}
	return 0
}

// SurveyResponse is one accepted submission. Immutable after creation; Seq
// is the store's creation-order sequence used for pagination bookmarks.
type SurveyResponse struct {
	ID         string     `json:"id"`
	SurveyID   string     `json:"survey_id"`
	ProofID    string     `json:"proof_id"`
	Attributes Attributes `json:"attributes"`
	Answers    Answers    `json:"answers"`
	Seq        int64      `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Tabulation result types

type OptionCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PanelStats is the per-panel bucket for one question: option counters for
// choice questions, verbatim texts for free-text questions.
type PanelStats struct {
	OptionCounts []OptionCount `json:"option_counts,omitempty"`
	Texts        []string      `json:"texts,omitempty"`
}

type QuestionStatistics struct {
	QuestionIndex int                   `json:"question_index"`
	QuestionKind  string                `json:"question_kind"`
	Panels        map[string]PanelStats `json:"panels"`
}

// ResultSnapshot is the sealed tabulation written when a survey closes.
type ResultSnapshot struct {
	ID            string               `json:"id"`
	SurveyID      string               `json:"survey_id"`
	ComputedAt    time.Time            `json:"computed_at"`
	ResponseCount int                  `json:"response_count"`
	Questions     []QuestionStatistics `json:"questions"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
