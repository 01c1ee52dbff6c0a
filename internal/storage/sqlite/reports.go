package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/insight"
)

// SaveCompatibilityReport inserts report.
func (s *Store) SaveCompatibilityReport(ctx context.Context, report domain.CompatibilityReport) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(report.ID) == "" {
		return fmt.Errorf("report id is required")
	}
	personA, err := json.Marshal(report.PersonA)
	if err != nil {
		return fmt.Errorf("encode person a: %w", err)
	}
	personB, err := json.Marshal(report.PersonB)
	if err != nil {
		return fmt.Errorf("encode person b: %w", err)
	}
	result, err := json.Marshal(report.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO compatibility_reports (
		   id, person_a_json, person_b_json, reading_a_id, reading_b_id,
		   score, category, result_json, insight, insight_source, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		string(personA),
		string(personB),
		report.PersonA.ReadingID,
		report.PersonB.ReadingID,
		report.Result.Score,
		string(report.Result.Category),
		string(result),
		report.Insight,
		string(report.InsightSource),
		toMillis(report.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save compatibility report: %w", err)
	}
	return nil
}

// GetCompatibilityReport returns the report with id or ErrNotFound.
func (s *Store) GetCompatibilityReport(ctx context.Context, id string) (domain.CompatibilityReport, error) {
	if err := s.ready(ctx); err != nil {
		return domain.CompatibilityReport{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, person_a_json, person_b_json, result_json, insight, insight_source, created_at
		   FROM compatibility_reports
		  WHERE id = ?`,
		strings.TrimSpace(id),
	)

	var (
		report                   domain.CompatibilityReport
		personA, personB, result string
		source                   string
		createdAt                int64
	)
	if err := row.Scan(&report.ID, &personA, &personB, &result, &report.Insight, &source, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CompatibilityReport{}, ErrNotFound
		}
		return domain.CompatibilityReport{}, fmt.Errorf("get compatibility report: %w", err)
	}
	if err := json.Unmarshal([]byte(personA), &report.PersonA); err != nil {
		return domain.CompatibilityReport{}, fmt.Errorf("decode person a: %w", err)
	}
	if err := json.Unmarshal([]byte(personB), &report.PersonB); err != nil {
		return domain.CompatibilityReport{}, fmt.Errorf("decode person b: %w", err)
	}
	if err := json.Unmarshal([]byte(result), &report.Result); err != nil {
		return domain.CompatibilityReport{}, fmt.Errorf("decode result: %w", err)
	}
	report.InsightSource = insight.Source(source)
	report.CreatedAt = fromMillis(createdAt)
	return report, nil
}
