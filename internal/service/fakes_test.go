package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/insight"
	"github.com/vanshika/astronum/backend/internal/repository"
	"github.com/vanshika/astronum/backend/internal/storage/sqlite"
)

type memStore struct {
	mu       sync.Mutex
	readings map[string]domain.Reading
	reports  map[string]domain.CompatibilityReport
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{
		readings: map[string]domain.Reading{},
		reports:  map[string]domain.CompatibilityReport{},
	}
}

func (m *memStore) SaveReading(_ context.Context, r domain.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.readings[r.ID] = r
	return nil
}

func (m *memStore) GetReading(_ context.Context, id string) (domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.readings[id]
	if !ok {
		return domain.Reading{}, sqlite.ErrNotFound
	}
	return r, nil
}

func (m *memStore) sorted() []domain.Reading {
	out := make([]domain.Reading, 0, len(m.readings))
	for _, r := range m.readings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memStore) ListReadings(_ context.Context, filter domain.ReadingFilter, limit, offset int) (domain.ReadingListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []domain.ReadingSummary
	for _, r := range m.sorted() {
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.FullName), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.LifePath != 0 && r.Profile.LifePath != filter.LifePath {
			continue
		}
		matched = append(matched, r.Summary())
	}
	total := int64(len(matched))
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return domain.ReadingListResult{Items: matched[offset:end], Total: total}, nil
}

func (m *memStore) EachReading(_ context.Context, fn func(domain.Reading) error) error {
	m.mu.Lock()
	all := m.sorted()
	m.mu.Unlock()
	for _, r := range all {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) SaveCompatibilityReport(_ context.Context, report domain.CompatibilityReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ID] = report
	return nil
}

func (m *memStore) GetCompatibilityReport(_ context.Context, id string) (domain.CompatibilityReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.reports[id]
	if !ok {
		return domain.CompatibilityReport{}, sqlite.ErrNotFound
	}
	return report, nil
}

type compatCall struct {
	a, b string
	link domain.CompatibilityLink
}

type stubGraph struct {
	mu          sync.Mutex
	people      []domain.PersonNode
	links       []compatCall
	upsertErr   error
	connections domain.PersonConnections
	matches     []domain.Match
	matchLimit  int
	listOpts    repository.ListPeopleOptions
}

func (g *stubGraph) UpsertPerson(_ context.Context, p domain.PersonNode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.upsertErr != nil {
		return g.upsertErr
	}
	g.people = append(g.people, p)
	return nil
}

func (g *stubGraph) SavePersonCompatibility(_ context.Context, a, b string, link domain.CompatibilityLink) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.links = append(g.links, compatCall{a: a, b: b, link: link})
	return nil
}

func (g *stubGraph) FetchPersonConnections(_ context.Context, id string) (domain.PersonConnections, error) {
	conn := g.connections
	conn.ReadingID = id
	return conn, nil
}

func (g *stubGraph) TopMatches(_ context.Context, _ string, limit int) ([]domain.Match, error) {
	g.matchLimit = limit
	return g.matches, nil
}

func (g *stubGraph) ListPeople(_ context.Context, opts repository.ListPeopleOptions) (domain.PersonListResult, error) {
	g.listOpts = opts
	return domain.PersonListResult{Items: g.people, Total: int64(len(g.people))}, nil
}

func (g *stubGraph) ExportPeople(context.Context) ([]domain.PersonNode, error) {
	return g.people, nil
}

// recordingGenerator answers from templates and remembers the last chat
// context it saw.
type recordingGenerator struct {
	insight.Generator
	mu       sync.Mutex
	lastChat insight.ChatContext
	replyErr error
}

func (g *recordingGenerator) Reply(ctx context.Context, chat insight.ChatContext) (insight.Text, error) {
	g.mu.Lock()
	g.lastChat = chat
	err := g.replyErr
	g.mu.Unlock()
	if err != nil {
		return insight.Text{}, err
	}
	return g.Generator.Reply(ctx, chat)
}

func templates(t *testing.T) *insight.TemplateGenerator {
	t.Helper()
	catalog, err := insight.LoadCatalog()
	require.NoError(t, err)
	return insight.NewTemplateGenerator(catalog)
}

var errBoom = errors.New("boom")
