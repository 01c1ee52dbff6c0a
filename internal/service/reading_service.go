package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshika/astronum/backend/internal/compatibility"
	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/ephemeris"
	"github.com/vanshika/astronum/backend/internal/insight"
	"github.com/vanshika/astronum/backend/internal/metrics"
	"github.com/vanshika/astronum/backend/internal/numerology"
	"github.com/vanshika/astronum/backend/internal/repository"
	"github.com/vanshika/astronum/backend/internal/storage/sqlite"
)

var (
	// ErrReadingNotFound reports an unknown reading ID.
	ErrReadingNotFound = errors.New("reading not found")
	// ErrReportNotFound reports an unknown compatibility report ID.
	ErrReportNotFound = errors.New("compatibility report not found")
	// ErrGraphDisabled reports a graph query while no graph is configured.
	ErrGraphDisabled = errors.New("people graph is not configured")
)

// ReadingStore is the persistence contract for readings and reports.
type ReadingStore interface {
	SaveReading(ctx context.Context, r domain.Reading) error
	GetReading(ctx context.Context, id string) (domain.Reading, error)
	ListReadings(ctx context.Context, filter domain.ReadingFilter, limit, offset int) (domain.ReadingListResult, error)
	EachReading(ctx context.Context, fn func(domain.Reading) error) error
	SaveCompatibilityReport(ctx context.Context, report domain.CompatibilityReport) error
	GetCompatibilityReport(ctx context.Context, id string) (domain.CompatibilityReport, error)
}

// GraphRepository is the people-graph contract. It is optional.
type GraphRepository interface {
	UpsertPerson(ctx context.Context, person domain.PersonNode) error
	SavePersonCompatibility(ctx context.Context, readingA, readingB string, link domain.CompatibilityLink) error
	FetchPersonConnections(ctx context.Context, readingID string) (domain.PersonConnections, error)
	TopMatches(ctx context.Context, readingID string, limit int) ([]domain.Match, error)
	ListPeople(ctx context.Context, opts repository.ListPeopleOptions) (domain.PersonListResult, error)
	ExportPeople(ctx context.Context) ([]domain.PersonNode, error)
}

const (
	defaultMatchLimit = 10
	maxMatchLimit     = 50
)

// ReadingService orchestrates readings and comparisons: validation, the
// computation core, commentary, persistence and the people graph.
type ReadingService struct {
	store    ReadingStore
	graph    GraphRepository
	insights insight.Generator
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
	nowFn    func() time.Time
}

// NewReadingService wires a ReadingService. graph and m may be nil.
func NewReadingService(store ReadingStore, graph GraphRepository, insights insight.Generator, m *metrics.Metrics, logger *slog.Logger) *ReadingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadingService{
		store:    store,
		graph:    graph,
		insights: insights,
		metrics:  m,
		logger:   logger.With("component", "reading_service"),
		tracer:   otel.Tracer("github.com/vanshika/astronum/backend/internal/service"),
		nowFn:    time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *ReadingService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// GraphEnabled reports whether a people graph is configured.
func (s *ReadingService) GraphEnabled() bool {
	return s.graph != nil
}

// CreateReading validates in, computes the profile and, when the birth data
// allows it, the chart. A chart that cannot be built downgrades the reading
// to reduced confidence instead of failing it.
func (s *ReadingService) CreateReading(ctx context.Context, in ReadingInput) (r domain.Reading, err error) {
	ctx, span := s.tracer.Start(ctx, "ReadingService.CreateReading")
	defer func() { endSpan(span, err) }()

	now := s.nowFn().UTC()
	name, err := validateName("fullName", in.FullName)
	if err != nil {
		return domain.Reading{}, err
	}
	date, err := validateBirthDate("birthDate", in.BirthDate, now)
	if err != nil {
		return domain.Reading{}, err
	}
	loc, err := validateLocation(in.Location)
	if err != nil {
		return domain.Reading{}, err
	}
	zone, err := validateZone(in.Timezone, in.UTCOffset)
	if err != nil {
		return domain.Reading{}, err
	}

	r = domain.Reading{
		ID:           uuid.NewString(),
		FullName:     name,
		BirthDate:    date,
		BirthTime:    strings.TrimSpace(in.BirthTime),
		Location:     loc,
		Timezone:     zone,
		Profile:      numerology.Calculate(name, date),
		PersonalYear: numerology.PersonalYear(date, now.Year()),
		Confidence:   domain.ConfidenceFull,
		CreatedAt:    now,
	}

	chart, chartErr := buildChart(r, now)
	if chartErr != nil {
		if !errors.Is(chartErr, ephemeris.ErrChartUnavailable) {
			return domain.Reading{}, fmt.Errorf("build chart: %w", chartErr)
		}
		r.Confidence = domain.ConfidenceReduced
		r.ChartError = chartErr.Error()
		s.metrics.ChartUnavailable()
		s.logger.DebugContext(ctx, "chart unavailable", "reading_id", r.ID, "reason", chartErr)
	} else {
		r.Chart = &chart
	}

	text, err := s.insights.ReadingInsight(ctx, r.InsightContext())
	if err != nil {
		return domain.Reading{}, fmt.Errorf("generate reading insight: %w", err)
	}
	r.Insight = text.Body
	r.InsightSource = text.Source
	s.metrics.InsightGenerated("reading", string(text.Source))

	if err := s.store.SaveReading(ctx, r); err != nil {
		return domain.Reading{}, fmt.Errorf("save reading: %w", err)
	}
	s.upsertPerson(ctx, r)
	s.metrics.ReadingCreated(string(r.Confidence))

	span.SetAttributes(
		attribute.String("reading.id", r.ID),
		attribute.String("reading.confidence", string(r.Confidence)),
		attribute.Int("reading.life_path", r.Profile.LifePath),
	)
	return r, nil
}

// buildChart maps a validated reading onto the ephemeris input.
func buildChart(r domain.Reading, now time.Time) (ephemeris.Chart, error) {
	if r.BirthTime == "" {
		return ephemeris.Chart{}, fmt.Errorf("%w: birth time missing", ephemeris.ErrChartUnavailable)
	}
	if r.Location == nil {
		return ephemeris.Chart{}, fmt.Errorf("%w: birth place missing", ephemeris.ErrChartUnavailable)
	}
	if r.Timezone == "" {
		return ephemeris.Chart{}, fmt.Errorf("%w: timezone missing", ephemeris.ErrChartUnavailable)
	}
	moment := ephemeris.BirthMoment{
		Year:      r.BirthDate.Year,
		Month:     r.BirthDate.Month,
		Day:       r.BirthDate.Day,
		Time:      r.BirthTime,
		Latitude:  r.Location.Latitude,
		Longitude: r.Location.Longitude,
	}
	if offset, ok := parseOffset(r.Timezone); ok {
		moment.TZOffset = offset
	} else {
		moment.Zone = r.Timezone
	}
	return ephemeris.Generate(moment, now)
}

func (s *ReadingService) upsertPerson(ctx context.Context, r domain.Reading) {
	if s.graph == nil {
		return
	}
	if err := s.graph.UpsertPerson(ctx, domain.PersonNodeOf(r)); err != nil {
		s.logger.WarnContext(ctx, "graph upsert failed", "reading_id", r.ID, "error", err)
	}
}

// GetReading loads one reading.
func (s *ReadingService) GetReading(ctx context.Context, id string) (domain.Reading, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Reading{}, invalid("id", "is required")
	}
	r, err := s.store.GetReading(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return domain.Reading{}, ErrReadingNotFound
	}
	if err != nil {
		return domain.Reading{}, fmt.Errorf("get reading %s: %w", id, err)
	}
	return r, nil
}

// ListReadings retrieves paginated reading summaries matching filters.
func (s *ReadingService) ListReadings(ctx context.Context, params ListReadingsParams) (ReadingsPage, error) {
	if err := validateLifePathFilter(params.LifePath); err != nil {
		return ReadingsPage{}, err
	}
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	offset := (page - 1) * pageSize

	result, err := s.store.ListReadings(ctx, domain.ReadingFilter{
		Search:   sanitizeString(params.Search),
		LifePath: params.LifePath,
	}, pageSize, offset)
	if err != nil {
		return ReadingsPage{}, fmt.Errorf("list readings: %w", err)
	}
	return ReadingsPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

// Compatibility scores two people, stores the report and, when both sides
// are stored readings, links them in the people graph.
func (s *ReadingService) Compatibility(ctx context.Context, in CompatibilityInput) (report domain.CompatibilityReport, err error) {
	ctx, span := s.tracer.Start(ctx, "ReadingService.Compatibility")
	defer func() { endSpan(span, err) }()

	now := s.nowFn().UTC()
	a, refA, err := s.resolvePerson(ctx, "personA", in.PersonA, now)
	if err != nil {
		return domain.CompatibilityReport{}, err
	}
	b, refB, err := s.resolvePerson(ctx, "personB", in.PersonB, now)
	if err != nil {
		return domain.CompatibilityReport{}, err
	}

	result := compatibility.Score(a, b)
	s.metrics.CompatibilityScored(string(result.Category))

	text, err := s.insights.CompatibilityInsight(ctx, insight.CompatibilityContext{
		NameA:  a.Name,
		NameB:  b.Name,
		Result: result,
	})
	if err != nil {
		return domain.CompatibilityReport{}, fmt.Errorf("generate compatibility insight: %w", err)
	}
	s.metrics.InsightGenerated("compatibility", string(text.Source))

	report = domain.CompatibilityReport{
		ID:            uuid.NewString(),
		PersonA:       refA,
		PersonB:       refB,
		Result:        result,
		Insight:       text.Body,
		InsightSource: text.Source,
		CreatedAt:     now,
	}
	if err := s.store.SaveCompatibilityReport(ctx, report); err != nil {
		return domain.CompatibilityReport{}, fmt.Errorf("save compatibility report: %w", err)
	}

	if s.graph != nil && refA.ReadingID != "" && refB.ReadingID != "" && refA.ReadingID != refB.ReadingID {
		link := domain.CompatibilityLink{
			Score:     result.Score,
			Category:  string(result.Category),
			ReportID:  report.ID,
			UpdatedAt: &now,
		}
		if err := s.graph.SavePersonCompatibility(ctx, refA.ReadingID, refB.ReadingID, link); err != nil {
			s.logger.WarnContext(ctx, "graph compatibility link failed", "report_id", report.ID, "error", err)
		}
	}

	span.SetAttributes(
		attribute.String("report.id", report.ID),
		attribute.Int("report.score", result.Score),
	)
	return report, nil
}

func (s *ReadingService) resolvePerson(ctx context.Context, field string, in PersonInput, now time.Time) (compatibility.Person, domain.PersonRef, error) {
	if id := strings.TrimSpace(in.ReadingID); id != "" {
		r, err := s.GetReading(ctx, id)
		if errors.Is(err, ErrReadingNotFound) {
			return compatibility.Person{}, domain.PersonRef{}, invalid(field+".readingId", "reading %s not found", id)
		}
		if err != nil {
			return compatibility.Person{}, domain.PersonRef{}, err
		}
		person := compatibility.Person{Name: r.FullName, Date: r.BirthDate, Profile: r.Profile}
		return person, domain.PersonRef{ReadingID: r.ID, Name: r.FullName, BirthDate: r.BirthDate}, nil
	}

	name, err := validateName(field+".fullName", in.FullName)
	if err != nil {
		return compatibility.Person{}, domain.PersonRef{}, err
	}
	date, err := validateBirthDate(field+".birthDate", in.BirthDate, now)
	if err != nil {
		return compatibility.Person{}, domain.PersonRef{}, err
	}
	return compatibility.NewPerson(name, date), domain.PersonRef{Name: name, BirthDate: date}, nil
}

// GetCompatibilityReport loads a stored report.
func (s *ReadingService) GetCompatibilityReport(ctx context.Context, id string) (domain.CompatibilityReport, error) {
	report, err := s.store.GetCompatibilityReport(ctx, strings.TrimSpace(id))
	if errors.Is(err, sqlite.ErrNotFound) {
		return domain.CompatibilityReport{}, ErrReportNotFound
	}
	if err != nil {
		return domain.CompatibilityReport{}, fmt.Errorf("get compatibility report %s: %w", id, err)
	}
	return report, nil
}

// PersonConnections returns the people-graph view of a stored reading.
func (s *ReadingService) PersonConnections(ctx context.Context, readingID string) (conn domain.PersonConnections, err error) {
	ctx, span := s.tracer.Start(ctx, "ReadingService.PersonConnections")
	defer func() { endSpan(span, err) }()

	if s.graph == nil {
		return domain.PersonConnections{}, ErrGraphDisabled
	}
	if _, err := s.GetReading(ctx, readingID); err != nil {
		return domain.PersonConnections{}, err
	}
	return s.graph.FetchPersonConnections(ctx, strings.TrimSpace(readingID))
}

// TopMatches ranks the people who share the most numbers with a reading.
func (s *ReadingService) TopMatches(ctx context.Context, readingID string, limit int) (matches []domain.Match, err error) {
	ctx, span := s.tracer.Start(ctx, "ReadingService.TopMatches")
	defer func() { endSpan(span, err) }()

	if s.graph == nil {
		return nil, ErrGraphDisabled
	}
	if _, err := s.GetReading(ctx, readingID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}
	return s.graph.TopMatches(ctx, strings.TrimSpace(readingID), limit)
}

// ListPeople pages through the graph's person nodes.
func (s *ReadingService) ListPeople(ctx context.Context, params ListPeopleParams) (PeoplePage, error) {
	if s.graph == nil {
		return PeoplePage{}, ErrGraphDisabled
	}
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	result, err := s.graph.ListPeople(ctx, repository.ListPeopleOptions{
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
		Search: sanitizeString(params.Search),
	})
	if err != nil {
		return PeoplePage{}, err
	}
	return PeoplePage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

// ExportReadings streams every stored reading, oldest first, to fn.
func (s *ReadingService) ExportReadings(ctx context.Context, fn func(domain.Reading) error) error {
	if err := s.store.EachReading(ctx, fn); err != nil {
		return fmt.Errorf("export readings: %w", err)
	}
	return nil
}

// ExportPeople returns every person node in the graph.
func (s *ReadingService) ExportPeople(ctx context.Context) ([]domain.PersonNode, error) {
	if s.graph == nil {
		return nil, ErrGraphDisabled
	}
	return s.graph.ExportPeople(ctx)
}

// SyncGraph replays every stored reading into the people graph and returns
// how many were written.
func (s *ReadingService) SyncGraph(ctx context.Context) (int, error) {
	if s.graph == nil {
		return 0, ErrGraphDisabled
	}
	synced := 0
	err := s.store.EachReading(ctx, func(r domain.Reading) error {
		if err := s.graph.UpsertPerson(ctx, domain.PersonNodeOf(r)); err != nil {
			return fmt.Errorf("sync reading %s: %w", r.ID, err)
		}
		synced++
		return nil
	})
	return synced, err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func buildPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
		if total > 0 && totalPages == 0 {
			totalPages = 1
		}
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
