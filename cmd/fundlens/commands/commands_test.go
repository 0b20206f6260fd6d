package commands

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/internal/contracts"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"api"},
		{"ingest"},
		{"snapshot", "list"},
		{"snapshot", "show"},
		{"snapshot", "activate"},
		{"snapshot", "delete"},
		{"trend"},
		{"movers"},
		{"review"},
		{"worker", "start"},
		{"scheduler", "start"},
		{"scheduler", "run"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestIngestRequiresFile(t *testing.T) {
	assert.Error(t, ingestCmd.Args(ingestCmd, []string{}))
	assert.NoError(t, ingestCmd.Args(ingestCmd, []string{"2024-06.csv"}))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", formatTags(nil))
	assert.Equal(t, "Review, Expensive", formatTags([]string{"Review", "Expensive"}))
	assert.Equal(t, "+5.2", formatDelta(5.2))
	assert.Equal(t, "-0.4", formatDelta(-0.4))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))

	f := contracts.Fund{Symbol: "AAA"}
	assert.Equal(t, "-", formatScore(f))
	f.Score = &contracts.ScoreDetail{Final: 61.25, Percentile: 80}
	assert.Equal(t, "61.2", formatScore(f))
	assert.Equal(t, "80", formatPercentile(f))
}

func TestMetricsServerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "fundlens_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	server := newMetricsServer(":0", reg)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fundlens_test_total 1")

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchedulerStartMetricsFlag(t *testing.T) {
	flag := schedulerStartCmd.Flags().Lookup("metrics-addr")
	require.NotNil(t, flag)
	assert.Equal(t, ":9091", flag.DefValue)
}
