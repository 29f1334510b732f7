//go:build basic

// Package integration contains integration tests for flowcast.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or use: make test-integration
package integration

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeriesVerification derives series from a generated ticket table and verifies
// that every series covers consecutive calendar days.
func TestSeriesVerification(t *testing.T) {
	env := append(isolatedHome(t), "FLOWCAST_CACHE_BACKEND=none")
	tickets := generateTickets(t, env)

	seriesFile := filepath.Join(t.TempDir(), "series.csv")
	_, err := runFlowcast(t, env, "series", tickets, "--output", "csv", "--output-file", seriesFile)
	require.NoError(t, err)

	records := readCSV(t, seriesFile)
	require.Equal(t, []string{"series_key", "project", "kind", "date", "value"}, records[0])

	dates := map[string][]time.Time{}
	for _, rec := range records[1:] {
		d, err := time.Parse("2006-01-02", rec[3])
		require.NoError(t, err)
		dates[rec[0]] = append(dates[rec[0]], d)

		v, err := strconv.ParseFloat(rec[4], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
	}
	require.NotEmpty(t, dates)

	for key, ds := range dates {
		t.Run(key, func(t *testing.T) {
			for i := 1; i < len(ds); i++ {
				assert.Equal(t, ds[i-1].AddDate(0, 0, 1), ds[i], "gap after %s", ds[i-1].Format("2006-01-02"))
			}
		})
	}
}

// TestForecastVerification runs a forecast and checks the cumulative columns
// against running sums of the actual and predicted columns.
func TestForecastVerification(t *testing.T) {
	env := append(isolatedHome(t), "FLOWCAST_CACHE_BACKEND=sqlite", "FLOWCAST_RUN_BACKEND=sqlite")
	tickets := generateTickets(t, env)

	forecastFile := filepath.Join(t.TempDir(), "forecast.csv")
	_, err := runFlowcast(t, env, "forecast", tickets,
		"--model", "ridge", "--strategy", "fixed", "--kinds", "Done",
		"--output", "csv", "--output-file", forecastFile)
	require.NoError(t, err)

	records := readCSV(t, forecastFile)
	require.Greater(t, len(records), 1)
	header := records[0]
	require.Equal(t, "cumulative_actual", header[3])

	sumActual := map[string]float64{}
	sumPredicted := map[string]float64{}
	for _, rec := range records[1:] {
		info := rec[5]
		assert.Equal(t, "Done", rec[6])
		sumActual[info] += parseFloat(t, rec[1])
		sumPredicted[info] += parseFloat(t, rec[2])

		// Values are rounded to the output precision, so allow a small drift
		assert.InDelta(t, sumActual[info], parseFloat(t, rec[3]), 0.05, info)
		assert.InDelta(t, sumPredicted[info], parseFloat(t, rec[4]), 0.05*float64(len(records)), info)
	}

	// The second run hits the series cache and records a second run
	_, err = runFlowcast(t, env, "forecast", tickets, "--model", "ridge", "--strategy", "fixed", "--kinds", "Done")
	require.NoError(t, err)
	out, err := runFlowcast(t, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")
}

// TestGeneratePIWindow checks that generating a CSV table also writes the PI window.
func TestGeneratePIWindow(t *testing.T) {
	env := isolatedHome(t)
	tickets := generateTickets(t, env)

	piFile := strings.TrimSuffix(tickets, ".csv") + "_pis.csv"
	data, err := os.ReadFile(piFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "SortedPIs", lines[0])
	require.Greater(t, len(lines), 1)
	seen := map[string]bool{}
	for _, pi := range lines[1:] {
		assert.False(t, seen[pi], "duplicate PI %s", pi)
		seen[pi] = true
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return records
}

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	require.False(t, math.IsNaN(v))
	return v
}
