package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProfileText(t *testing.T) {
	out, err := run(t, "profile", "John", "Smith", "--date", "1990-05-15", "--year", "2026")
	require.NoError(t, err)
	assert.Contains(t, out, "John Smith, born 1990-05-15")
	assert.Contains(t, out, "Life Path:      3")
}

func TestProfileJSON(t *testing.T) {
	out, err := run(t, "--json", "profile", "John Smith", "--date", "1990-05-15", "--year", "2026")
	require.NoError(t, err)

	var got profileOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Profile.LifePath)
	assert.Equal(t, 2026, got.Year)
}

func TestProfileRejectsBadInput(t *testing.T) {
	_, err := run(t, "profile", "John", "--date", "1990-02-30")
	assert.Error(t, err)

	_, err = run(t, "profile", "123", "--date", "1990-05-15")
	assert.Error(t, err)

	_, err = run(t, "profile", "John")
	assert.Error(t, err, "--date is required")
}

func TestCompat(t *testing.T) {
	out, err := run(t, "--json", "compat",
		"--a-name", "John Smith", "--a-date", "1990-05-15",
		"--b-name", "John Smith", "--b-date", "1990-05-15")
	require.NoError(t, err)

	var got struct {
		Score    int    `json:"score"`
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Excellent", got.Category)
	assert.GreaterOrEqual(t, got.Score, 80)

	_, err = run(t, "compat", "--a-name", "John", "--a-date", "1990-05-15")
	assert.ErrorContains(t, err, "--b-name is required")
}

func TestChart(t *testing.T) {
	out, err := run(t, "chart", "--date", "1990-05-15", "--time", "07:45",
		"--zone", "Europe/London", "--lat", "51.5074", "--lon", "-0.1278")
	require.NoError(t, err)
	assert.Contains(t, out, "Ascendant")
	assert.Contains(t, out, "Ketu")

	_, err = run(t, "chart", "--date", "1990-05-15", "--time", "07:45")
	assert.ErrorContains(t, err, "--zone or --offset")

	out, err = run(t, "--json", "chart", "--date", "1990-05-15", "--time", "07:45", "--offset", "5.5",
		"--lat", "19.07", "--lon", "72.87")
	require.NoError(t, err)
	var chart map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &chart))
	assert.Contains(t, chart, "planets")
}

func TestDatagenThenIngest(t *testing.T) {
	dir := t.TempDir()
	seedDir := filepath.Join(dir, "seed")

	out, err := run(t, "datagen", "--people", "12", "--comparisons", "5", "--seed", "3", "--output-dir", seedDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 12 readings and 5 comparisons")

	t.Setenv("STORAGE_SQLITE_PATH", filepath.Join(dir, "astronum.db"))
	t.Setenv("GRAPH_URI", "")
	t.Setenv("AI_GENAI_API_KEY", "")
	out, err = run(t, "ingest", "--dataset-dir", seedDir, "--workers", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 12 readings and 5 comparisons")
}

func TestDatagenStdout(t *testing.T) {
	out, err := run(t, "datagen", "--people", "3", "--comparisons", "1", "--seed", "9", "--stdout")
	require.NoError(t, err)

	var ds struct {
		Readings    []map[string]any `json:"readings"`
		Comparisons []map[string]any `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ds))
	assert.Len(t, ds.Readings, 3)
	assert.Len(t, ds.Comparisons, 1)
}

func TestIngestMissingDataset(t *testing.T) {
	t.Setenv("STORAGE_SQLITE_PATH", filepath.Join(t.TempDir(), "astronum.db"))
	_, err := run(t, "ingest", "--dataset-dir", t.TempDir())
	assert.Error(t, err)
}
