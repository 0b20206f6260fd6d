package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundlens/backend/internal/api/handlers"
	"github.com/wonny/fundlens/backend/internal/fundconfig"
	"github.com/wonny/fundlens/backend/internal/pipeline"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/internal/trend"
	"github.com/wonny/fundlens/backend/internal/worker"
)

const header = "Symbol,Fund Name,Asset Class,YTD,1 Yr,3 Yr,5 Yr,10 Yr,Sharpe 3Y,Std Dev 3Y,Std Dev 5Y,Up Capture 3Y,Down Capture 3Y,Alpha 5Y,Expense Ratio,Manager Tenure"

func monthlyCSV(lowScore string) string {
	return strings.Join([]string{
		header,
		"AAA,Alpha Growth,Large Cap Growth,10,12,9,8,7,1.1,15,16,105,90,1.5,0.2,10",
		"BBB,Beta Growth,Large Cap Growth,8,10,8,7,6,0.9,16,17,100,95,0.5,0.5,6",
		"CCC,Gamma Growth,Large Cap Growth," + lowScore + ",2,1,1,1,0.2,22,23,80,120,-2,1.4,1",
	}, "\n") + "\n"
}

type testServer struct {
	handler http.Handler
	store   snapshot.Store
}

func newTestServer(t *testing.T, limiter handlers.UploadLimiter) *testServer {
	t.Helper()
	store := snapshot.NewMemoryStore()
	funds := &fundconfig.Config{
		AssetClassBenchmarks: map[string]fundconfig.Benchmark{
			"Large Cap Growth": {Ticker: "IWF", Name: "iShares Russell 1000 Growth"},
		},
	}
	reg := prometheus.NewRegistry()
	ingestor := pipeline.NewIngestor(
		worker.NewLocal(pipeline.NewHandler(nil, nil)),
		store, funds, pipeline.Options{StrictColumns: true},
		pipeline.NewMetrics(reg), nil,
	)

	h := Handlers{
		Snapshots: handlers.NewSnapshotHandler(store, ingestor, limiter, nil),
		Trends:    handlers.NewTrendHandler(trend.NewAnalyzer(store, nil), store, nil),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	return &testServer{handler: NewRouter(h, nil), store: store}
}

func (s *testServer) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) upload(t *testing.T, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
}

func TestSnapshotLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.upload(t, "funds_2024-01.csv", monthlyCSV("3"), map[string]string{"note": "jan"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-01", decode(t, rec)["id"])

	rec = s.upload(t, "funds_2024-01.csv", monthlyCSV("3"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["duplicate"])

	// same content under another period resolves to the existing snapshot
	rec = s.upload(t, "funds_2024-02.csv", monthlyCSV("3"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "2024-01", body["id"])
	assert.Equal(t, true, body["duplicate"])

	rec = s.upload(t, "funds.csv", monthlyCSV("1"), map[string]string{"period": "2024-02", "activate": "true"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, decode(t, rec)["activated"])

	rec = s.do(t, http.MethodGet, "/api/snapshots")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["count"])

	rec = s.do(t, http.MethodGet, "/api/snapshots/active")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-02", decode(t, rec)["id"])

	rec = s.do(t, http.MethodPost, "/api/snapshots/2024-01/activate")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/snapshots/2024-01")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode(t, rec)
	assert.Equal(t, true, snap["active"])
	assert.Len(t, snap["rows"], 4)

	rec = s.do(t, http.MethodDelete, "/api/snapshots/2024-01")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/snapshots/active")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/snapshots/2024-01/activate")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/snapshots/2030-01")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadErrors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.upload(t, "funds_2024-01.csv", "Symbol,YTD\nAAA,1\n", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "missing required columns")

	rec = s.upload(t, "funds_2024-01.csv", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.upload(t, "funds.csv", monthlyCSV("3"), map[string]string{"period": "Jan 2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.upload(t, "funds_2024-01.csv", monthlyCSV("3"), map[string]string{"activate": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/snapshots", strings.NewReader("plain"))
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRateLimit(t *testing.T) {
	s := newTestServer(t, handlers.NewLocalUploadLimiter(1))

	rec := s.upload(t, "funds_2024-01.csv", monthlyCSV("3"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.upload(t, "funds_2024-02.csv", monthlyCSV("1"), nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestTrendsAndReview(t *testing.T) {
	s := newTestServer(t, nil)

	require.Equal(t, http.StatusCreated, s.upload(t, "funds_2024-01.csv", monthlyCSV("3"), nil).Code)
	require.Equal(t, http.StatusCreated,
		s.upload(t, "funds_2024-02.csv", monthlyCSV("-20"), map[string]string{"activate": "1"}).Code)

	rec := s.do(t, http.MethodGet, "/api/trends/ccc?limit=6")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["series"], 2)
	assert.Contains(t, body, "delta")

	rec = s.do(t, http.MethodGet, "/api/trends/AAA?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/trends/movers")
	require.Equal(t, http.StatusOK, rec.Code)
	movers := decode(t, rec)
	assert.Equal(t, float64(3), movers["count"])

	rec = s.do(t, http.MethodGet, "/api/review")
	require.Equal(t, http.StatusOK, rec.Code)
	review := decode(t, rec)
	assert.Equal(t, "2024-02", review["snapshot"])
	candidates := review["candidates"].([]interface{})
	require.NotEmpty(t, candidates)
	assert.Equal(t, "CCC", candidates[0].(map[string]interface{})["symbol"])
}

func TestReviewWithoutActiveSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/review")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.upload(t, "funds_2024-01.csv", monthlyCSV("3"), nil).Code)

	rec := s.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fundlens_ingest_total{status="created"} 1`)
}
