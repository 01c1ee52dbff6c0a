package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/ephemeris"
	"github.com/vanshika/astronum/backend/internal/insight"
	"github.com/vanshika/astronum/backend/internal/numerology"
)

const readingColumns = `id, full_name, birth_date, birth_time, place, latitude, longitude, timezone,
        profile_json, personal_year, chart_json, chart_error, confidence,
        insight, insight_source, created_at`

// SaveReading inserts r.
func (s *Store) SaveReading(ctx context.Context, r domain.Reading) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("reading id is required")
	}
	profile, err := json.Marshal(r.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	var chart sql.NullString
	if r.Chart != nil {
		data, err := json.Marshal(r.Chart)
		if err != nil {
			return fmt.Errorf("encode chart: %w", err)
		}
		chart = sql.NullString{String: string(data), Valid: true}
	}
	var place string
	var lat, lon sql.NullFloat64
	if r.Location != nil {
		place = r.Location.Place
		lat = sql.NullFloat64{Float64: r.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: r.Location.Longitude, Valid: true}
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO readings (
		   id, full_name, birth_date, birth_time, place, latitude, longitude, timezone,
		   life_path, expression, profile_json, personal_year, chart_json, chart_error,
		   confidence, insight, insight_source, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.FullName,
		r.BirthDate.String(),
		r.BirthTime,
		place,
		lat,
		lon,
		r.Timezone,
		r.Profile.LifePath,
		r.Profile.Expression,
		string(profile),
		r.PersonalYear,
		chart,
		r.ChartError,
		string(r.Confidence),
		r.Insight,
		string(r.InsightSource),
		toMillis(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save reading: %w", err)
	}
	return nil
}

// GetReading returns the reading with id or ErrNotFound.
func (s *Store) GetReading(ctx context.Context, id string) (domain.Reading, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Reading{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+readingColumns+` FROM readings WHERE id = ?`, strings.TrimSpace(id))
	r, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reading{}, ErrNotFound
		}
		return domain.Reading{}, fmt.Errorf("get reading: %w", err)
	}
	return r, nil
}

// ListReadings returns one page of reading summaries, newest first.
func (s *Store) ListReadings(ctx context.Context, filter domain.ReadingFilter, limit, offset int) (domain.ReadingListResult, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ReadingListResult{}, err
	}
	where, args := readingWhere(filter)

	var total int64
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`+where, args...).Scan(&total); err != nil {
		return domain.ReadingListResult{}, fmt.Errorf("count readings: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+readingColumns+` FROM readings`+where+` ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return domain.ReadingListResult{}, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	result := domain.ReadingListResult{Items: make([]domain.ReadingSummary, 0, limit), Total: total}
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return domain.ReadingListResult{}, fmt.Errorf("list readings: %w", err)
		}
		result.Items = append(result.Items, r.Summary())
	}
	if err := rows.Err(); err != nil {
		return domain.ReadingListResult{}, fmt.Errorf("list readings: %w", err)
	}
	return result, nil
}

// EachReading streams every reading, oldest first, to fn. Iteration stops at
// the first error fn returns.
func (s *Store) EachReading(ctx context.Context, fn func(domain.Reading) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+readingColumns+` FROM readings ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("export readings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return fmt.Errorf("export readings: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("export readings: %w", err)
	}
	return nil
}

func readingWhere(filter domain.ReadingFilter) (string, []any) {
	var clauses []string
	var args []any
	if search := strings.TrimSpace(filter.Search); search != "" {
		clauses = append(clauses, `full_name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(search)+"%")
	}
	if filter.LifePath > 0 {
		clauses = append(clauses, `life_path = ?`)
		args = append(args, filter.LifePath)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (domain.Reading, error) {
	var (
		r          domain.Reading
		birthDate  string
		place      string
		lat, lon   sql.NullFloat64
		profile    string
		chart      sql.NullString
		confidence string
		source     string
		createdAt  int64
	)
	if err := row.Scan(
		&r.ID,
		&r.FullName,
		&birthDate,
		&r.BirthTime,
		&place,
		&lat,
		&lon,
		&r.Timezone,
		&profile,
		&r.PersonalYear,
		&chart,
		&r.ChartError,
		&confidence,
		&r.Insight,
		&source,
		&createdAt,
	); err != nil {
		return domain.Reading{}, err
	}

	date, err := numerology.ParseBirthDate(birthDate)
	if err != nil {
		return domain.Reading{}, fmt.Errorf("decode birth date: %w", err)
	}
	r.BirthDate = date
	if err := json.Unmarshal([]byte(profile), &r.Profile); err != nil {
		return domain.Reading{}, fmt.Errorf("decode profile: %w", err)
	}
	if chart.Valid {
		var c ephemeris.Chart
		if err := json.Unmarshal([]byte(chart.String), &c); err != nil {
			return domain.Reading{}, fmt.Errorf("decode chart: %w", err)
		}
		r.Chart = &c
	}
	if lat.Valid && lon.Valid {
		r.Location = &domain.Location{Place: place, Latitude: lat.Float64, Longitude: lon.Float64}
	}
	r.Confidence = domain.Confidence(confidence)
	r.InsightSource = insight.Source(source)
	r.CreatedAt = fromMillis(createdAt)
	return r, nil
}
