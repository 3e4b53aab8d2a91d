// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/opensurvey/panelboard/models"
)

// postgresStore implements Store over database/sql. The dedup and quota
// invariants are delegated to the schema: a UNIQUE (survey_id, proof_id)
// constraint and a conditional increment on panel_count.consumed, both
// applied inside one transaction.
type postgresStore struct {
	db *sql.DB
}

// NewPostgres wraps an open connection as a Store. The schema must already
// exist (db.CreateSchema).
func NewPostgres(conn *sql.DB) Store {
	return &postgresStore{db: conn}
}

var _ Store = (*postgresStore)(nil)

func (s *postgresStore) AddPanel(p *models.Panel) error {
	attrs, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO panel (id, name, user_count, attributes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Name, p.UserCount, attrs, p.CreatedAt)
	return err
}

func (s *postgresStore) GetPanel(id string) (*models.Panel, error) {
	row := s.db.QueryRow(`
		SELECT id, name, user_count, attributes, created_at
		FROM panel WHERE id = $1
	`, id)
	return scanPanel(row)
}

func (s *postgresStore) ListPanels() ([]*models.Panel, error) {
	rows, err := s.db.Query(`
		SELECT id, name, user_count, attributes, created_at
		FROM panel ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Panel
	for rows.Next() {
		p, err := scanPanel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPanel(row rowScanner) (*models.Panel, error) {
	var p models.Panel
	var attrs []byte
	err := row.Scan(&p.ID, &p.Name, &p.UserCount, &attrs, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return &p, nil
}

func (s *postgresStore) AddSurvey(sv *models.Survey) error {
	questions, err := json.Marshal(sv.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO survey (id, org_id, title, description, status, questions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sv.ID, sv.OrgID, sv.Title, sv.Description, sv.Status, questions, sv.CreatedAt, sv.UpdatedAt)
	if err != nil {
		return err
	}

	for i, p := range sv.Panels {
		_, err = tx.Exec(`
			INSERT INTO survey_panel (survey_id, panel_id, position)
			VALUES ($1, $2, $3)
		`, sv.ID, p.ID, i)
		if err != nil {
			return err
		}
	}

	for _, pc := range sv.PanelCounts {
		_, err = tx.Exec(`
			INSERT INTO panel_count (survey_id, panel_id, user_count, consumed)
			VALUES ($1, $2, $3, 0)
		`, sv.ID, pc.PanelID, pc.UserCount)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *postgresStore) GetSurvey(id string) (*models.Survey, error) {
	return s.getSurvey(`WHERE id = $1`, id)
}

func (s *postgresStore) GetSurveyBySlug(slug string) (*models.Survey, error) {
	return s.getSurvey(`WHERE share_slug = $1`, slug)
}

func (s *postgresStore) getSurvey(where string, arg any) (*models.Survey, error) {
	var sv models.Survey
	var questions []byte
	err := s.db.QueryRow(`
		SELECT id, org_id, title, description, status, share_slug, questions,
		       closed_at, created_at, updated_at
		FROM survey `+where,
		arg,
	).Scan(
		&sv.ID, &sv.OrgID, &sv.Title, &sv.Description, &sv.Status,
		&sv.ShareSlug, &questions, &sv.ClosedAt, &sv.CreatedAt, &sv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &sv.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	// panels in declaration order
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.user_count, p.attributes, p.created_at
		FROM survey_panel sp
		JOIN panel p ON p.id = sp.panel_id
		WHERE sp.survey_id = $1
		ORDER BY sp.position
	`, sv.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPanel(rows)
		if err != nil {
			return nil, err
		}
		sv.Panels = append(sv.Panels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := s.db.Query(`
		SELECT panel_id, user_count, consumed
		FROM panel_count WHERE survey_id = $1
	`, sv.ID)
	if err != nil {
		return nil, err
	}
	defer counts.Close()
	for counts.Next() {
		pc := models.PanelCount{SurveyID: sv.ID}
		if err := counts.Scan(&pc.PanelID, &pc.UserCount, &pc.Consumed); err != nil {
			return nil, err
		}
		sv.PanelCounts = append(sv.PanelCounts, pc)
	}
	return &sv, counts.Err()
}

func (s *postgresStore) UpdateSurveyStatus(id, status string, slug *string, closedAt *time.Time) error {
	res, err := s.db.Exec(`
		UPDATE survey
		SET status = $1,
		    share_slug = COALESCE($2, share_slug),
		    closed_at = COALESCE($3, closed_at),
		    updated_at = NOW()
		WHERE id = $4
	`, status, slug, closedAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) InsertResponse(r *models.SurveyResponse, panelID string) error {
	attrs, err := json.Marshal(r.Attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The unique constraint reports duplicates before quota is touched, so
	// a duplicate never burns capacity.
	err = tx.QueryRow(`
		INSERT INTO survey_response (id, survey_id, proof_id, panel_id, attributes, answers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`, r.ID, r.SurveyID, r.ProofID, panelID, attrs, answers, r.CreatedAt, r.UpdatedAt).Scan(&r.Seq)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateResponse
		}
		return err
	}

	// Atomic check-and-increment against the ceiling; zero rows means the
	// panel is full and the whole transaction rolls back.
	res, err := tx.Exec(`
		UPDATE panel_count
		SET consumed = consumed + 1
		WHERE survey_id = $1 AND panel_id = $2 AND consumed < user_count
	`, r.SurveyID, panelID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrQuotaExceeded
	}

	return tx.Commit()
}

func (s *postgresStore) HasResponse(surveyID, proofID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM survey_response
			WHERE survey_id = $1 AND proof_id = $2
		)
	`, surveyID, proofID).Scan(&exists)
	return exists, err
}

func (s *postgresStore) RemainingCapacity(surveyID, panelID string) (int, error) {
	var remaining int
	err := s.db.QueryRow(`
		SELECT user_count - consumed
		FROM panel_count
		WHERE survey_id = $1 AND panel_id = $2
	`, surveyID, panelID).Scan(&remaining)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return remaining, err
}

func (s *postgresStore) ListResponses(surveyID string, pageSize int, bookmark *string) (*models.ResponsePage, error) {
	var after int64
	if bookmark != nil {
		if _, err := fmt.Sscanf(*bookmark, "%d", &after); err != nil {
			return nil, ErrNotFound
		}
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	rows, err := s.db.Query(`
		SELECT id, seq, survey_id, proof_id, attributes, answers, created_at, updated_at
		FROM survey_response
		WHERE survey_id = $1 AND seq > $2
		ORDER BY seq
		LIMIT $3
	`, surveyID, after, pageSize+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanResponses(rows)
	if err != nil {
		return nil, err
	}

	page := &models.ResponsePage{Items: items}
	if len(items) > pageSize {
		page.Items = items[:pageSize]
		next := fmt.Sprintf("%d", page.Items[pageSize-1].Seq)
		page.NextBookmark = &next
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM survey_response WHERE survey_id = $1
	`, surveyID).Scan(&page.TotalCount)
	return page, err
}

func (s *postgresStore) ListAllResponses(surveyID string) ([]*models.SurveyResponse, error) {
	rows, err := s.db.Query(`
		SELECT id, seq, survey_id, proof_id, attributes, answers, created_at, updated_at
		FROM survey_response
		WHERE survey_id = $1
		ORDER BY seq
	`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResponses(rows)
}

func scanResponses(rows *sql.Rows) ([]*models.SurveyResponse, error) {
	var out []*models.SurveyResponse
	for rows.Next() {
		var r models.SurveyResponse
		var attrs, answers []byte
		if err := rows.Scan(&r.ID, &r.Seq, &r.SurveyID, &r.ProofID, &attrs, &answers, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(attrs, &r.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *postgresStore) CountResponses(surveyID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM survey_response WHERE survey_id = $1
	`, surveyID).Scan(&count)
	return count, err
}

func (s *postgresStore) AddSnapshot(snap *models.ResultSnapshot) error {
	payload, err := json.Marshal(snap.Questions)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO result_snapshot (id, survey_id, computed_at, response_count, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, snap.ID, snap.SurveyID, snap.ComputedAt, snap.ResponseCount, payload)
	return err
}

func (s *postgresStore) GetSnapshot(surveyID string) (*models.ResultSnapshot, error) {
	var snap models.ResultSnapshot
	var payload []byte
	err := s.db.QueryRow(`
		SELECT id, survey_id, computed_at, response_count, payload
		FROM result_snapshot
		WHERE survey_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`, surveyID).Scan(&snap.ID, &snap.SurveyID, &snap.ComputedAt, &snap.ResponseCount, &payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &snap.Questions); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
