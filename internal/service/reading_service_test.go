package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/ephemeris"
	"github.com/vanshika/astronum/backend/internal/insight"
	"github.com/vanshika/astronum/backend/internal/logging"
	"github.com/vanshika/astronum/backend/internal/metrics"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, graph GraphRepository) (*ReadingService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewReadingService(store, graph, templates(t), metrics.New(), logging.Discard())
	svc.WithClock(func() time.Time { return fixedNow })
	return svc, store
}

func johnSmith() ReadingInput {
	return ReadingInput{
		FullName:  "  John   Smith ",
		BirthDate: "1990-05-15",
		BirthTime: "07:45",
		Location:  &LocationInput{Place: "London", Latitude: 51.5074, Longitude: -0.1278},
		Timezone:  "Europe/London",
	}
}

func TestCreateReadingWithChart(t *testing.T) {
	graph := &stubGraph{}
	svc, store := newTestService(t, graph)

	r, err := svc.CreateReading(context.Background(), johnSmith())
	require.NoError(t, err)

	_, err = uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", r.FullName)
	assert.Equal(t, 3, r.Profile.LifePath)
	assert.Equal(t, domain.ConfidenceFull, r.Confidence)
	assert.Empty(t, r.ChartError)
	require.NotNil(t, r.Chart)
	assert.Len(t, r.Chart.Planets, len(ephemeris.AllPlanets))
	assert.NotNil(t, r.Chart.Dasha.Current)
	assert.Equal(t, insight.SourceTemplate, r.InsightSource)
	assert.NotEmpty(t, r.Insight)
	assert.True(t, fixedNow.Equal(r.CreatedAt))

	stored, err := store.GetReading(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, stored.ID)

	require.Len(t, graph.people, 1)
	assert.Equal(t, r.ID, graph.people[0].ReadingID)
	assert.Equal(t, 3, graph.people[0].Numbers[domain.NumberLifePath])
}

func TestCreateReadingDegradesWithoutChart(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ReadingInput)
		reason string
	}{
		{"missing time", func(in *ReadingInput) { in.BirthTime = "" }, "birth time missing"},
		{"malformed time", func(in *ReadingInput) { in.BirthTime = "quarter past" }, "birth time"},
		{"missing place", func(in *ReadingInput) { in.Location = nil }, "birth place missing"},
		{"missing zone", func(in *ReadingInput) { in.Timezone = "" }, "timezone missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService(t, nil)
			in := johnSmith()
			tc.mutate(&in)

			r, err := svc.CreateReading(context.Background(), in)
			require.NoError(t, err)
			assert.Nil(t, r.Chart)
			assert.Equal(t, domain.ConfidenceReduced, r.Confidence)
			assert.Contains(t, r.ChartError, tc.reason)
			assert.Equal(t, 3, r.Profile.LifePath)
			assert.Contains(t, r.Insight, "numerology alone")

			_, err = store.GetReading(context.Background(), r.ID)
			require.NoError(t, err)
		})
	}
}

func TestCreateReadingWithUTCOffset(t *testing.T) {
	svc, _ := newTestService(t, nil)
	offset := 5.5
	in := johnSmith()
	in.Timezone = ""
	in.UTCOffset = &offset

	r, err := svc.CreateReading(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "+05:30", r.Timezone)
	require.NotNil(t, r.Chart)

	// Same instant expressed through an IANA zone with the same offset.
	in.UTCOffset = nil
	in.Timezone = "Asia/Kolkata"
	viaZone, err := svc.CreateReading(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, r.Chart.JulianDay, viaZone.Chart.JulianDay, 1e-9)
}

func TestCreateReadingValidation(t *testing.T) {
	bad := 20.0
	cases := map[string]func(*ReadingInput){
		"empty name":      func(in *ReadingInput) { in.FullName = "   " },
		"no letters":      func(in *ReadingInput) { in.FullName = "1234 !!" },
		"bad date":        func(in *ReadingInput) { in.BirthDate = "1990-02-30" },
		"missing date":    func(in *ReadingInput) { in.BirthDate = "" },
		"future date":     func(in *ReadingInput) { in.BirthDate = "2030-01-01" },
		"ancient date":    func(in *ReadingInput) { in.BirthDate = "1700-01-01" },
		"latitude":        func(in *ReadingInput) { in.Location.Latitude = 95 },
		"longitude":       func(in *ReadingInput) { in.Location.Longitude = -181 },
		"unknown zone":    func(in *ReadingInput) { in.Timezone = "Mars/Olympus" },
		"offset too wide": func(in *ReadingInput) { in.Timezone = ""; in.UTCOffset = &bad },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, store := newTestService(t, nil)
			in := johnSmith()
			mutate(&in)
			_, err := svc.CreateReading(context.Background(), in)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			assert.Empty(t, store.readings)
		})
	}
}

func TestCreateReadingStoreFailure(t *testing.T) {
	svc, store := newTestService(t, nil)
	store.saveErr = errBoom
	_, err := svc.CreateReading(context.Background(), johnSmith())
	require.ErrorIs(t, err, errBoom)
	assert.False(t, IsValidation(err))
}

func TestCreateReadingSurvivesGraphFailure(t *testing.T) {
	svc, store := newTestService(t, &stubGraph{upsertErr: errBoom})
	r, err := svc.CreateReading(context.Background(), johnSmith())
	require.NoError(t, err)
	_, err = store.GetReading(context.Background(), r.ID)
	require.NoError(t, err)
}

func TestGetReading(t *testing.T) {
	svc, _ := newTestService(t, nil)
	created, err := svc.CreateReading(context.Background(), johnSmith())
	require.NoError(t, err)

	got, err := svc.GetReading(context.Background(), created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created.Profile, got.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.GetReading(context.Background(), "missing")
	require.ErrorIs(t, err, ErrReadingNotFound)

	_, err = svc.GetReading(context.Background(), " ")
	assert.True(t, IsValidation(err))
}

func TestListReadingsPagination(t *testing.T) {
	svc, _ := newTestService(t, nil)
	names := []string{"Ana Lima", "Bruno Costa", "Carla Dias", "Diego Souza", "Elisa Rocha"}
	for i, name := range names {
		in := ReadingInput{FullName: name, BirthDate: time.Date(1980+i, 3, 10+i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)}
		_, err := svc.CreateReading(context.Background(), in)
		require.NoError(t, err)
	}

	page, err := svc.ListReadings(context.Background(), ListReadingsParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 2, TotalItems: 5, TotalPages: 3}, page.Pagination)

	defaults, err := svc.ListReadings(context.Background(), ListReadingsParams{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Pagination.Page)
	assert.Equal(t, 200, defaults.Pagination.PageSize)

	_, err = svc.ListReadings(context.Background(), ListReadingsParams{LifePath: 10})
	assert.True(t, IsValidation(err))

	_, err = svc.ListReadings(context.Background(), ListReadingsParams{LifePath: 22})
	require.NoError(t, err)
}

func TestCompatibilityInlineAndStored(t *testing.T) {
	graph := &stubGraph{}
	svc, store := newTestService(t, graph)
	ctx := context.Background()

	john, err := svc.CreateReading(ctx, johnSmith())
	require.NoError(t, err)
	maria, err := svc.CreateReading(ctx, ReadingInput{FullName: "Maria Garcia", BirthDate: "1984-11-29"})
	require.NoError(t, err)

	report, err := svc.Compatibility(ctx, CompatibilityInput{
		PersonA: PersonInput{ReadingID: john.ID},
		PersonB: PersonInput{ReadingID: maria.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, john.ID, report.PersonA.ReadingID)
	assert.Equal(t, "Maria Garcia", report.PersonB.Name)
	assert.NotEmpty(t, report.Insight)
	assert.GreaterOrEqual(t, report.Result.Score, 0)
	assert.LessOrEqual(t, report.Result.Score, 100)

	_, ok := store.reports[report.ID]
	assert.True(t, ok)
	require.Len(t, graph.links, 1)
	assert.Equal(t, report.Result.Score, graph.links[0].link.Score)
	assert.Equal(t, report.ID, graph.links[0].link.ReportID)

	inline, err := svc.Compatibility(ctx, CompatibilityInput{
		PersonA: PersonInput{FullName: "Maria Garcia", BirthDate: "1984-11-29"},
		PersonB: PersonInput{FullName: "John Smith", BirthDate: "1990-05-15"},
	})
	require.NoError(t, err)
	assert.Equal(t, report.Result.Score, inline.Result.Score, "score is symmetric and independent of storage")
	assert.Len(t, graph.links, 1, "inline people are not linked in the graph")

	got, err := svc.GetCompatibilityReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	_, err = svc.GetCompatibilityReport(ctx, "missing")
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestCompatibilityValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Compatibility(context.Background(), CompatibilityInput{
		PersonA: PersonInput{ReadingID: "nope"},
		PersonB: PersonInput{FullName: "Ana", BirthDate: "1990-01-01"},
	})
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "personA.readingId", ve.Field)

	_, err = svc.Compatibility(context.Background(), CompatibilityInput{
		PersonA: PersonInput{FullName: "Ana", BirthDate: "1990-01-01"},
		PersonB: PersonInput{FullName: "Bo", BirthDate: "not a date"},
	})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "personB.birthDate", ve.Field)
}

func TestGraphQueries(t *testing.T) {
	score := 72
	graph := &stubGraph{
		matches: []domain.Match{{ReadingID: "x", SharedCount: 2, Score: &score}},
		connections: domain.PersonConnections{
			SharedNumbers: []domain.SharedNumberLink{{Kind: domain.NumberLifePath, Value: 3}},
		},
	}
	svc, _ := newTestService(t, graph)
	ctx := context.Background()
	r, err := svc.CreateReading(ctx, johnSmith())
	require.NoError(t, err)

	conn, err := svc.PersonConnections(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, conn.ReadingID)
	assert.Len(t, conn.SharedNumbers, 1)

	matches, err := svc.TopMatches(ctx, r.ID, 500)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, maxMatchLimit, graph.matchLimit)

	_, err = svc.TopMatches(ctx, r.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultMatchLimit, graph.matchLimit)

	_, err = svc.PersonConnections(ctx, "missing")
	require.ErrorIs(t, err, ErrReadingNotFound)

	people, err := svc.ListPeople(ctx, ListPeopleParams{Page: 3, PageSize: 10, Search: " john "})
	require.NoError(t, err)
	assert.Equal(t, 20, graph.listOpts.Offset)
	assert.Equal(t, "john", graph.listOpts.Search)
	assert.Len(t, people.Items, 1)

	synced, err := svc.SyncGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)
	assert.Len(t, graph.people, 2)
}

func TestGraphDisabled(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	assert.False(t, svc.GraphEnabled())

	_, err := svc.PersonConnections(ctx, "r-1")
	require.ErrorIs(t, err, ErrGraphDisabled)
	_, err = svc.TopMatches(ctx, "r-1", 5)
	require.ErrorIs(t, err, ErrGraphDisabled)
	_, err = svc.ListPeople(ctx, ListPeopleParams{})
	require.ErrorIs(t, err, ErrGraphDisabled)
	_, err = svc.ExportPeople(ctx)
	require.ErrorIs(t, err, ErrGraphDisabled)
	_, err = svc.SyncGraph(ctx)
	require.ErrorIs(t, err, ErrGraphDisabled)
}

func TestExportReadings(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	for _, name := range []string{"Ana Lima", "Bruno Costa"} {
		_, err := svc.CreateReading(ctx, ReadingInput{FullName: name, BirthDate: "1991-07-04"})
		require.NoError(t, err)
	}

	var names []string
	require.NoError(t, svc.ExportReadings(ctx, func(r domain.Reading) error {
		names = append(names, r.FullName)
		return nil
	}))
	assert.ElementsMatch(t, []string{"Ana Lima", "Bruno Costa"}, names)

	err := svc.ExportReadings(ctx, func(domain.Reading) error { return errBoom })
	require.ErrorIs(t, err, errBoom)
}

func TestFormatOffsetRoundTrip(t *testing.T) {
	for _, hours := range []float64{0, 5.5, -3.5, 5.75, 14, -12} {
		zone := formatOffset(hours)
		got, ok := parseOffset(zone)
		require.True(t, ok, zone)
		assert.InDelta(t, hours, got, 1e-9, zone)
	}
	_, ok := parseOffset("Europe/London")
	assert.False(t, ok)
}
