package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/runmeter/internal/adapter/http"
	"github.com/couchcryptid/runmeter/internal/config"
	"github.com/couchcryptid/runmeter/internal/domain"
	"github.com/couchcryptid/runmeter/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Rainfall (mm),Curve Number,Area (sq.km)
50,80,10
5,70,1
`

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockPublisher struct {
	batches []domain.BatchResult
	err     error
}

func (m *mockPublisher) PublishBatch(_ context.Context, _ string, res domain.BatchResult) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, res)
	return nil
}

func newTestServer(readyErr error, publisher httpadapter.ResultsPublisher) *httpadapter.Server {
	cfg := &config.Config{HTTPAddr: ":0", MaxUploadBytes: 1 << 20}
	metrics := observability.NewMetricsForTesting()
	return httpadapter.NewServer(cfg, &mockReadiness{err: readyErr}, publisher, metrics, slog.Default())
}

func postRunoff(srv *httpadapter.Server, query, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/runoff"+query, strings.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec
}

type computeResponse struct {
	BatchID    string `json:"batch_id"`
	Method     string `json:"method"`
	ComputedAt string `json:"computed_at"`
	Results    []struct {
		Rainfall     float64 `json:"rainfall_mm"`
		Runoff       float64 `json:"runoff_mm"`
		RunoffVolume float64 `json:"runoff_volume_m3"`
	} `json:"results"`
	Skipped []struct {
		Row    int    `json:"row"`
		Reason string `json:"reason"`
	} `json:"skipped"`
}

func TestComputeSCSCN(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := postRunoff(srv, "?method=SCS+CN+Method", sampleCSV)

	require.Equal(t, http.StatusOK, rec.Code)

	var body computeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.NotEmpty(t, body.BatchID)
	assert.Equal(t, "SCS CN Method", body.Method)
	require.Len(t, body.Results, 2)
	assert.Equal(t, 13.8, body.Results[0].Runoff)
	assert.Equal(t, 138024.8, body.Results[0].RunoffVolume)
	assert.Zero(t, body.Results[1].Runoff)
	assert.Empty(t, body.Skipped)
}

func TestComputeStrange(t *testing.T) {
	srv := newTestServer(nil, nil)
	// No Curve Number column needed for the Strange method.
	csv := "Rainfall (mm),Area (sq.km)\n50,10\n"
	rec := postRunoff(srv, "?method=Strange+Method", csv)

	require.Equal(t, http.StatusOK, rec.Code)

	var body computeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, 13.9, body.Results[0].Runoff)
	assert.Equal(t, 139.0, body.Results[0].RunoffVolume)
}

func TestComputeCSVFormat(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := postRunoff(srv, "?method=SCS+CN+Method&format=csv", sampleCSV)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Rainfall (mm),Runoff (mm),Runoff Volume (m³)", lines[0])
	assert.Equal(t, "50.00,13.80,138024.80", lines[1])
	assert.Empty(t, rec.Header().Get("X-Runmeter-Skipped-Rows"))
}

func TestComputeUnknownMethod(t *testing.T) {
	srv := newTestServer(nil, nil)

	for _, query := range []string{"", "?method=SCS", "?method=scs+cn+method"} {
		rec := postRunoff(srv, query, sampleCSV)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}

func TestComputeValidationError(t *testing.T) {
	srv := newTestServer(nil, nil)
	// Missing Area column.
	csv := "Rainfall (mm),Curve Number\n50,80\n"
	rec := postRunoff(srv, "?method=SCS+CN+Method", csv)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string `json:"error"`
		Column string `json:"column"`
		Row    int    `json:"row"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Area (sq.km)", body.Column)
	assert.Zero(t, body.Row)
	assert.Contains(t, body.Error, "missing")
}

func TestComputeMissingCurveNumberOnlyFailsSCSCN(t *testing.T) {
	srv := newTestServer(nil, nil)
	csv := "Rainfall (mm),Area (sq.km)\n50,10\n"

	rec := postRunoff(srv, "?method=SCS+CN+Method", csv)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postRunoff(srv, "?method=Strange+Method", csv)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestComputeSkippedIsAlwaysAnArray(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := postRunoff(srv, "?method=SCS+CN+Method", sampleCSV)
	require.Equal(t, http.StatusOK, rec.Code)

	// Callers rely on "skipped" being a list, not null.
	assert.Contains(t, rec.Body.String(), `"skipped":[]`)
}

func TestComputeBodyTooLarge(t *testing.T) {
	cfg := &config.Config{HTTPAddr: ":0", MaxUploadBytes: 64}
	srv := httpadapter.NewServer(cfg, &mockReadiness{}, nil, observability.NewMetricsForTesting(), slog.Default())

	var sb strings.Builder
	sb.WriteString("Rainfall (mm),Area (sq.km)\n")
	for i := 0; i < 100; i++ {
		sb.WriteString("50,10\n")
	}

	rec := postRunoff(srv, "?method=Strange+Method", sb.String())
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestComputePublishesResults(t *testing.T) {
	pub := &mockPublisher{}
	srv := newTestServer(nil, pub)

	rec := postRunoff(srv, "?method=Strange+Method", "Rainfall (mm),Area (sq.km)\n50,10\n")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, pub.batches, 1)
	assert.Equal(t, domain.ModelStrange, pub.batches[0].Model)
	require.Len(t, pub.batches[0].Rows, 1)
	assert.Equal(t, 139.0, pub.batches[0].Rows[0].RunoffVolume)
}

func TestComputePublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &mockPublisher{err: fmt.Errorf("broker down")}
	srv := newTestServer(nil, pub)

	rec := postRunoff(srv, "?method=Strange+Method", "Rainfall (mm),Area (sq.km)\n50,10\n")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"), nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
