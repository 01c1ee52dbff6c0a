package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/graph"
)

// ListPeopleOptions defines filters and pagination for person listing.
type ListPeopleOptions struct {
	Offset int
	Limit  int
	Search string
}

// Repository encapsulates people-graph persistence operations.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// EnsureSchema creates the uniqueness constraint and lookup index the
// queries rely on. Safe to call on every start.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure graph schema: %w", err)
		}
	}
	return nil
}

// UpsertPerson writes the person node and replaces its HAS_NUMBER edges.
func (r *Repository) UpsertPerson(ctx context.Context, person domain.PersonNode) error {
	if person.ReadingID == "" {
		return errors.New("reading id is required")
	}

	params := map[string]any{
		"readingId": person.ReadingID,
		"props":     personProperties(person),
		"numbers":   numberParams(person.Numbers),
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertPersonCypher, params); err != nil {
		return fmt.Errorf("upsert person %s: %w", person.ReadingID, err)
	}
	return nil
}

// SavePersonCompatibility records a COMPATIBLE_WITH edge between two people.
func (r *Repository) SavePersonCompatibility(ctx context.Context, readingA, readingB string, link domain.CompatibilityLink) error {
	if readingA == "" || readingB == "" {
		return errors.New("both reading IDs are required")
	}
	if readingA == readingB {
		return errors.New("a person cannot be linked to themselves")
	}
	updated := time.Now().UTC()
	if link.UpdatedAt != nil {
		updated = *link.UpdatedAt
	}
	params := map[string]any{
		"readingA":  readingA,
		"readingB":  readingB,
		"score":     int64(link.Score),
		"category":  link.Category,
		"reportId":  link.ReportID,
		"updatedAt": formatTime(updated),
	}
	if _, err := r.client.ExecuteWrite(ctx, savePersonCompatibilityCypher, params); err != nil {
		return fmt.Errorf("save compatibility %s-%s: %w", readingA, readingB, err)
	}
	return nil
}

// FetchPersonConnections returns the shared-number groups and compatibility
// edges of one person.
func (r *Repository) FetchPersonConnections(ctx context.Context, readingID string) (domain.PersonConnections, error) {
	if readingID == "" {
		return domain.PersonConnections{}, errors.New("reading id is required")
	}

	conn := domain.PersonConnections{
		ReadingID:       readingID,
		SharedNumbers:   []domain.SharedNumberLink{},
		Compatibilities: []domain.CompatibilityLink{},
	}
	if err := r.fetchSharedNumbers(ctx, readingID, &conn); err != nil {
		return domain.PersonConnections{}, err
	}
	if err := r.fetchCompatibilityLinks(ctx, readingID, &conn); err != nil {
		return domain.PersonConnections{}, err
	}
	return conn, nil
}

func (r *Repository) fetchSharedNumbers(ctx context.Context, readingID string, conn *domain.PersonConnections) error {
	res, err := r.client.ExecuteRead(ctx, sharedNumbersCypher, map[string]any{"readingId": readingID})
	if err != nil {
		return fmt.Errorf("fetch shared numbers: %w", err)
	}
	for _, record := range res.Records {
		peopleRaw, ok := record["people"].([]any)
		if !ok {
			continue
		}
		var people []domain.PersonRefLink
		for _, raw := range peopleRaw {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if id := toString(m["readingId"]); id != "" {
				people = append(people, domain.PersonRefLink{ReadingID: id, Name: toString(m["name"])})
			}
		}
		if len(people) == 0 {
			continue
		}
		conn.SharedNumbers = append(conn.SharedNumbers, domain.SharedNumberLink{
			Kind:   toString(record["kind"]),
			Value:  toInt(record["value"]),
			People: people,
		})
	}
	return nil
}

func (r *Repository) fetchCompatibilityLinks(ctx context.Context, readingID string, conn *domain.PersonConnections) error {
	res, err := r.client.ExecuteRead(ctx, compatibilityLinksCypher, map[string]any{"readingId": readingID})
	if err != nil {
		return fmt.Errorf("fetch compatibility links: %w", err)
	}
	for _, record := range res.Records {
		conn.Compatibilities = append(conn.Compatibilities, domain.CompatibilityLink{
			ReadingID: toString(record["readingId"]),
			Name:      toString(record["name"]),
			Score:     toInt(record["score"]),
			Category:  toString(record["category"]),
			ReportID:  toString(record["reportId"]),
			UpdatedAt: toTimePtr(record["updatedAt"]),
		})
	}
	return nil
}

// TopMatches ranks other people by shared numbers, then recorded score.
func (r *Repository) TopMatches(ctx context.Context, readingID string, limit int) ([]domain.Match, error) {
	if readingID == "" {
		return nil, errors.New("reading id is required")
	}
	if limit <= 0 {
		limit = 10
	}
	res, err := r.client.ExecuteRead(ctx, topMatchesCypher, map[string]any{
		"readingId": readingID,
		"limit":     int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("top matches: %w", err)
	}
	matches := make([]domain.Match, 0, len(res.Records))
	for _, record := range res.Records {
		m := domain.Match{
			ReadingID:   toString(record["readingId"]),
			Name:        toString(record["name"]),
			SharedCount: toInt(record["sharedCount"]),
			SharedKinds: toStrings(record["sharedKinds"]),
		}
		if record["score"] != nil {
			score := toInt(record["score"])
			m.Score = &score
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// ListPeople returns paginated person nodes, newest first.
func (r *Repository) ListPeople(ctx context.Context, opts ListPeopleOptions) (domain.PersonListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	params := map[string]any{
		"search": strings.ToLower(strings.TrimSpace(opts.Search)),
		"skip":   int64(offset),
		"limit":  int64(limit),
	}

	countRes, err := r.client.ExecuteRead(ctx, countPeopleCypher, params)
	if err != nil {
		return domain.PersonListResult{}, fmt.Errorf("count people: %w", err)
	}
	var total int64
	if len(countRes.Records) > 0 {
		total = int64(toInt(countRes.Records[0]["total"]))
	}

	res, err := r.client.ExecuteRead(ctx, listPeopleCypher, params)
	if err != nil {
		return domain.PersonListResult{}, fmt.Errorf("list people: %w", err)
	}
	items := make([]domain.PersonNode, 0, len(res.Records))
	for _, record := range res.Records {
		items = append(items, personFromRecord(record))
	}
	return domain.PersonListResult{Items: items, Total: total}, nil
}

// ExportPeople returns every person node with its numbers.
func (r *Repository) ExportPeople(ctx context.Context) ([]domain.PersonNode, error) {
	res, err := r.client.ExecuteRead(ctx, exportPeopleCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("export people query: %w", err)
	}
	people := make([]domain.PersonNode, 0, len(res.Records))
	for _, record := range res.Records {
		people = append(people, personFromRecord(record))
	}
	return people, nil
}

func personFromRecord(record graph.Record) domain.PersonNode {
	p := domain.PersonNode{
		ReadingID: toString(record["readingId"]),
		Name:      toString(record["name"]),
		BirthDate: toString(record["birthDate"]),
		Numbers:   map[string]int{},
	}
	if created := toTimePtr(record["createdAt"]); created != nil {
		p.CreatedAt = *created
	}
	if raw, ok := record["numbers"].([]any); ok {
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if kind := toString(m["kind"]); kind != "" {
				p.Numbers[kind] = toInt(m["value"])
			}
		}
	}
	return p
}

func personProperties(p domain.PersonNode) map[string]any {
	props := map[string]any{
		"name":      p.Name,
		"nameLower": strings.ToLower(p.Name),
		"birthDate": p.BirthDate,
		"updatedAt": formatTime(time.Now()),
	}
	if !p.CreatedAt.IsZero() {
		props["createdAt"] = formatTime(p.CreatedAt)
	}
	return props
}

func numberParams(numbers map[string]int) []map[string]any {
	kinds := make([]string, 0, len(numbers))
	for k := range numbers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	out := make([]map[string]any, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, map[string]any{"kind": k, "value": int64(numbers[k])})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case int32:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toStrings(val any) []string {
	raw, ok := val.([]any)
	if !ok {
		if s, ok := val.([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s := toString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE CONSTRAINT person_reading_id IF NOT EXISTS FOR (p:Person) REQUIRE p.readingId IS UNIQUE`,
	`CREATE INDEX number_kind_value IF NOT EXISTS FOR (n:Number) ON (n.kind, n.value)`,
}

const upsertPersonCypher = `
MERGE (p:Person {readingId: $readingId})
SET p += $props
WITH p
OPTIONAL MATCH (p)-[old:HAS_NUMBER]->(:Number)
DELETE old
WITH DISTINCT p
UNWIND $numbers AS num
MERGE (n:Number {kind: num.kind, value: num.value})
MERGE (p)-[:HAS_NUMBER]->(n)
RETURN p.readingId AS readingId
`

const savePersonCompatibilityCypher = `
MATCH (a:Person {readingId: $readingA})
MATCH (b:Person {readingId: $readingB})
MERGE (a)-[c:COMPATIBLE_WITH]-(b)
SET c.score = $score,
    c.category = $category,
    c.reportId = $reportId,
    c.updatedAt = $updatedAt
RETURN c.score AS score
`

const sharedNumbersCypher = `
MATCH (p:Person {readingId: $readingId})-[:HAS_NUMBER]->(n:Number)<-[:HAS_NUMBER]-(other:Person)
WHERE other.readingId <> $readingId
WITH n, collect(DISTINCT {readingId: other.readingId, name: other.name}) AS people
RETURN n.kind AS kind, n.value AS value, people
ORDER BY kind, value
`

const compatibilityLinksCypher = `
MATCH (p:Person {readingId: $readingId})-[c:COMPATIBLE_WITH]-(other:Person)
RETURN other.readingId AS readingId,
       other.name AS name,
       c.score AS score,
       c.category AS category,
       c.reportId AS reportId,
       c.updatedAt AS updatedAt
ORDER BY score DESC
`

const topMatchesCypher = `
MATCH (p:Person {readingId: $readingId})-[:HAS_NUMBER]->(n:Number)<-[:HAS_NUMBER]-(other:Person)
WHERE other.readingId <> $readingId
WITH other, collect(DISTINCT n.kind) AS kinds
OPTIONAL MATCH (:Person {readingId: $readingId})-[c:COMPATIBLE_WITH]-(other)
RETURN other.readingId AS readingId,
       other.name AS name,
       size(kinds) AS sharedCount,
       kinds AS sharedKinds,
       c.score AS score
ORDER BY sharedCount DESC, score DESC
LIMIT $limit
`

const countPeopleCypher = `
MATCH (p:Person)
WHERE $search = '' OR p.nameLower CONTAINS $search
RETURN count(p) AS total
`

const listPeopleCypher = `
MATCH (p:Person)
WHERE $search = '' OR p.nameLower CONTAINS $search
OPTIONAL MATCH (p)-[:HAS_NUMBER]->(n:Number)
WITH p, collect({kind: n.kind, value: n.value}) AS numbers
RETURN p.readingId AS readingId,
       p.name AS name,
       p.birthDate AS birthDate,
       p.createdAt AS createdAt,
       numbers
ORDER BY createdAt DESC
SKIP $skip
LIMIT $limit
`

const exportPeopleCypher = `
MATCH (p:Person)
OPTIONAL MATCH (p)-[:HAS_NUMBER]->(n:Number)
WITH p, collect({kind: n.kind, value: n.value}) AS numbers
RETURN p.readingId AS readingId,
       p.name AS name,
       p.birthDate AS birthDate,
       p.createdAt AS createdAt,
       numbers
ORDER BY createdAt ASC
`
