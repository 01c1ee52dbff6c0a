package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/graph"
)

func TestRepository_UpsertPerson(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	person := domain.PersonNode{
		ReadingID: "r-1",
		Name:      "John Smith",
		BirthDate: "1990-05-15",
		Numbers: map[string]int{
			domain.NumberLifePath:   3,
			domain.NumberExpression: 8,
			domain.NumberBirthday:   6,
		},
		CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := repo.UpsertPerson(context.Background(), person); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	call := calls[0]
	if call.Query != upsertPersonCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", upsertPersonCypher, call.Query)
	}
	if call.Params["readingId"] != "r-1" {
		t.Errorf("expected readingId r-1, got %v", call.Params["readingId"])
	}

	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["nameLower"] != "john smith" {
		t.Errorf("nameLower mismatch: got %v", props["nameLower"])
	}
	if props["createdAt"] != "2026-10-01T00:00:00Z" {
		t.Errorf("createdAt mismatch: got %v", props["createdAt"])
	}

	numbers, ok := call.Params["numbers"].([]map[string]any)
	if !ok || len(numbers) != 3 {
		t.Fatalf("expected 3 numbers, got %T (len=%d)", call.Params["numbers"], len(numbers))
	}
	if numbers[0]["kind"] != domain.NumberBirthday || numbers[0]["value"] != int64(6) {
		t.Errorf("numbers should be sorted by kind, got %v", numbers[0])
	}
}

func TestRepository_UpsertPersonRequiresID(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.UpsertPerson(context.Background(), domain.PersonNode{Name: "x"}); err == nil {
		t.Fatal("expected error for missing reading id")
	}
}

func TestRepository_SavePersonCompatibility(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	at := time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC)
	err := repo.SavePersonCompatibility(context.Background(), "r-1", "r-2", domain.CompatibilityLink{
		Score:     78,
		Category:  "Good",
		ReportID:  "c-1",
		UpdatedAt: &at,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 || calls[0].Query != savePersonCompatibilityCypher {
		t.Fatalf("expected compatibility write, got %+v", calls)
	}
	params := calls[0].Params
	if params["score"] != int64(78) || params["category"] != "Good" || params["reportId"] != "c-1" {
		t.Errorf("unexpected params %v", params)
	}
	if params["updatedAt"] != "2026-10-02T08:00:00Z" {
		t.Errorf("updatedAt mismatch: %v", params["updatedAt"])
	}

	if err := repo.SavePersonCompatibility(context.Background(), "r-1", "r-1", domain.CompatibilityLink{}); err == nil {
		t.Error("expected self-link to be rejected")
	}
	if err := repo.SavePersonCompatibility(context.Background(), "", "r-1", domain.CompatibilityLink{}); err == nil {
		t.Error("expected missing id to be rejected")
	}
}

func TestRepository_FetchPersonConnections(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	ts := time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	mem.On("HAS_NUMBER", graph.Result{Records: []graph.Record{
		{
			"kind":  domain.NumberLifePath,
			"value": int64(3),
			"people": []any{
				map[string]any{"readingId": "r-2", "name": "Maria Garcia"},
				map[string]any{"readingId": "r-3", "name": "Li Wei"},
			},
		},
		{
			"kind":   domain.NumberBirthday,
			"value":  int64(6),
			"people": []any{},
		},
	}})
	mem.On("COMPATIBLE_WITH", graph.Result{Records: []graph.Record{
		{
			"readingId": "r-2",
			"name":      "Maria Garcia",
			"score":     int64(81),
			"category":  "Excellent",
			"reportId":  "c-9",
			"updatedAt": ts,
		},
	}})

	conn, err := repo.FetchPersonConnections(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if conn.ReadingID != "r-1" {
		t.Errorf("expected reading r-1, got %s", conn.ReadingID)
	}
	if len(conn.SharedNumbers) != 1 {
		t.Fatalf("expected 1 shared number group, got %d", len(conn.SharedNumbers))
	}
	if conn.SharedNumbers[0].Value != 3 || len(conn.SharedNumbers[0].People) != 2 {
		t.Errorf("unexpected shared group %+v", conn.SharedNumbers[0])
	}
	if len(conn.Compatibilities) != 1 {
		t.Fatalf("expected 1 compatibility link, got %d", len(conn.Compatibilities))
	}
	link := conn.Compatibilities[0]
	if link.Score != 81 || link.Category != "Excellent" || link.UpdatedAt == nil {
		t.Errorf("unexpected link %+v", link)
	}
}

func TestRepository_FetchPersonConnectionsEmpty(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	conn, err := repo.FetchPersonConnections(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if conn.SharedNumbers == nil || conn.Compatibilities == nil {
		t.Error("expected empty slices rather than nil")
	}
}

func TestRepository_TopMatches(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{
			"readingId":   "r-2",
			"name":        "Maria Garcia",
			"sharedCount": int64(2),
			"sharedKinds": []any{domain.NumberLifePath, domain.NumberSoulUrge},
			"score":       int64(70),
		},
		{
			"readingId":   "r-3",
			"name":        "Li Wei",
			"sharedCount": int64(1),
			"sharedKinds": []any{domain.NumberBirthday},
			"score":       nil,
		},
	}})

	matches, err := repo.TopMatches(context.Background(), "r-1", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Score == nil || *matches[0].Score != 70 {
		t.Errorf("expected score 70, got %v", matches[0].Score)
	}
	if matches[1].Score != nil {
		t.Errorf("expected nil score for unscored match, got %v", *matches[1].Score)
	}
	if len(matches[0].SharedKinds) != 2 {
		t.Errorf("expected 2 shared kinds, got %v", matches[0].SharedKinds)
	}

	calls := mem.ReadCalls()
	if calls[0].Params["limit"] != int64(10) {
		t.Errorf("expected default limit 10, got %v", calls[0].Params["limit"])
	}
}

func TestRepository_ListPeople(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	created := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	mem.PushReadResult(graph.Result{Records: []graph.Record{{"total": int64(1)}}})
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{
			"readingId": "r-1",
			"name":      "Jane Doe",
			"birthDate": "1988-02-29",
			"createdAt": created,
			"numbers": []any{
				map[string]any{"kind": domain.NumberLifePath, "value": int64(4)},
				map[string]any{"kind": nil, "value": nil},
			},
		},
	}})

	result, err := repo.ListPeople(context.Background(), ListPeopleOptions{Limit: 500, Offset: -3, Search: "  JANE "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("expected 1 person, got total=%d items=%d", result.Total, len(result.Items))
	}
	person := result.Items[0]
	if person.Numbers[domain.NumberLifePath] != 4 || len(person.Numbers) != 1 {
		t.Errorf("unexpected numbers %v", person.Numbers)
	}
	if person.CreatedAt.IsZero() {
		t.Error("expected createdAt to be parsed")
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 read queries, got %d", len(calls))
	}
	params := calls[1].Params
	if params["search"] != "jane" || params["limit"] != int64(200) || params["skip"] != int64(0) {
		t.Errorf("unexpected list params %v", params)
	}
	if !strings.Contains(calls[1].Query, "ORDER BY createdAt DESC") {
		t.Errorf("unexpected ordering in list people query: %s", calls[1].Query)
	}
}

func TestRepository_ExportPeople(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)
	mem.On("ORDER BY createdAt ASC", graph.Result{Records: []graph.Record{
		{"readingId": "r-1", "name": "A"},
		{"readingId": "r-2", "name": "B"},
	}})

	people, err := repo.ExportPeople(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(people) != 2 || people[1].ReadingID != "r-2" {
		t.Errorf("unexpected export %+v", people)
	}
}

func TestRepository_EnsureSchema(t *testing.T) {
	mem := graph.NewMemoryClient()
	if err := New(mem).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := len(mem.WriteCalls()); got != len(schemaStatements) {
		t.Errorf("expected %d schema statements, got %d", len(schemaStatements), got)
	}
}

func TestRepository_PropagatesErrors(t *testing.T) {
	boom := errors.New("graph down")
	repo := New(graph.NewMemoryClient().WithError(boom))

	if _, err := repo.TopMatches(context.Background(), "r-1", 5); !errors.Is(err, boom) {
		t.Errorf("expected wrapped graph error, got %v", err)
	}
	if _, err := repo.FetchPersonConnections(context.Background(), "r-1"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped graph error, got %v", err)
	}
	if err := repo.EnsureSchema(context.Background()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped graph error, got %v", err)
	}
}
