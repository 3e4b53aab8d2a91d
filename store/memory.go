// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/opensurvey/panelboard/models"
)

// memoryStore keeps everything under a single mutex, which makes the
// dedup-plus-quota insert trivially atomic. Used for tests and for running
// without a database.
type memoryStore struct {
	mu          sync.RWMutex
	panels      map[string]*models.Panel
	panelOrder  []string
	surveys     map[string]*models.Survey
	bySlug      map[string]string
	responses   map[string][]*models.SurveyResponse
	proofs      map[string]map[string]bool
	quotas      map[string]map[string]*models.PanelCount
	snapshots   map[string]*models.ResultSnapshot
	responseSeq int64
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{
		panels:    map[string]*models.Panel{},
		surveys:   map[string]*models.Survey{},
		bySlug:    map[string]string{},
		responses: map[string][]*models.SurveyResponse{},
		proofs:    map[string]map[string]bool{},
		quotas:    map[string]map[string]*models.PanelCount{},
		snapshots: map[string]*models.ResultSnapshot{},
	}
}

var _ Store = (*memoryStore)(nil)

func (s *memoryStore) AddPanel(p *models.Panel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels[p.ID] = p
	s.panelOrder = append(s.panelOrder, p.ID)
	return nil
}

func (s *memoryStore) GetPanel(id string) (*models.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.panels[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *memoryStore) ListPanels() ([]*models.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Panel, 0, len(s.panelOrder))
	for _, id := range s.panelOrder {
		out = append(out, s.panels[id])
	}
	return out, nil
}

func (s *memoryStore) AddSurvey(sv *models.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surveys[sv.ID] = sv
	q := map[string]*models.PanelCount{}
	for i := range sv.PanelCounts {
		pc := &sv.PanelCounts[i]
		q[pc.PanelID] = pc
	}
	s.quotas[sv.ID] = q
	return nil
}

// copySurveyLocked snapshots a survey under the store lock. Stored surveys
// are mutated in place by UpdateSurveyStatus and InsertResponse (quota
// counters alias sv.PanelCounts), so handing out the live pointer would let
// callers read fields after the lock is released.
func copySurveyLocked(sv *models.Survey) *models.Survey {
	cp := *sv
	cp.PanelCounts = append([]models.PanelCount(nil), sv.PanelCounts...)
	return &cp
}

func (s *memoryStore) GetSurvey(id string) (*models.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv, ok := s.surveys[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySurveyLocked(sv), nil
}

func (s *memoryStore) GetSurveyBySlug(slug string) (*models.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return copySurveyLocked(s.surveys[id]), nil
}

func (s *memoryStore) UpdateSurveyStatus(id, status string, slug *string, closedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.surveys[id]
	if !ok {
		return ErrNotFound
	}
	sv.Status = status
	sv.UpdatedAt = time.Now().UTC()
	if slug != nil {
		sv.ShareSlug = slug
		s.bySlug[*slug] = id
	}
	if closedAt != nil {
		sv.ClosedAt = closedAt
	}
	return nil
}

func (s *memoryStore) InsertResponse(r *models.SurveyResponse, panelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := s.proofs[r.SurveyID]
	if seen == nil {
		seen = map[string]bool{}
		s.proofs[r.SurveyID] = seen
	}
	if seen[r.ProofID] {
		return ErrDuplicateResponse
	}

	pc := s.quotas[r.SurveyID][panelID]
	if pc == nil {
		return ErrNotFound
	}
	if pc.Consumed >= pc.UserCount {
		return ErrQuotaExceeded
	}

	pc.Consumed++
	seen[r.ProofID] = true
	s.responseSeq++
	r.Seq = s.responseSeq
	s.responses[r.SurveyID] = append(s.responses[r.SurveyID], r)
	return nil
}

func (s *memoryStore) HasResponse(surveyID, proofID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proofs[surveyID][proofID], nil
}

func (s *memoryStore) RemainingCapacity(surveyID, panelID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pc := s.quotas[surveyID][panelID]
	if pc == nil {
		return 0, ErrNotFound
	}
	return pc.UserCount - pc.Consumed, nil
}

func (s *memoryStore) ListResponses(surveyID string, pageSize int, bookmark *string) (*models.ResponsePage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.responses[surveyID]
	var after int64
	if bookmark != nil {
		n, err := strconv.ParseInt(*bookmark, 10, 64)
		if err != nil {
			return nil, ErrNotFound
		}
		after = n
	}

	// responses are appended in seq order; find the first item past the
	// bookmark
	start := sort.Search(len(all), func(i int) bool { return all[i].Seq > after })

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	page := &models.ResponsePage{
		Items:      append([]*models.SurveyResponse(nil), all[start:end]...),
		TotalCount: len(all),
	}
	if end < len(all) {
		next := strconv.FormatInt(all[end-1].Seq, 10)
		page.NextBookmark = &next
	}
	return page, nil
}

func (s *memoryStore) ListAllResponses(surveyID string) ([]*models.SurveyResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.SurveyResponse(nil), s.responses[surveyID]...), nil
}

func (s *memoryStore) CountResponses(surveyID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses[surveyID]), nil
}

func (s *memoryStore) AddSnapshot(snap *models.ResultSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.SurveyID] = snap
	return nil
}

func (s *memoryStore) GetSnapshot(surveyID string) (*models.ResultSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[surveyID]
	if !ok {
		return nil, ErrNotFound
	}
	return snap, nil
}
