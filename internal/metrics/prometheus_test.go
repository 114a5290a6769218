package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hast"
	"github.com/hupe1980/hast/internal/metrics"
)

var _ hast.MetricsCollector = (*metrics.Prometheus)(nil)

func TestPrometheus_ServesMetrics(t *testing.T) {
	t.Parallel()

	p := metrics.NewPrometheus()
	p.RecordInsert(time.Millisecond, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()

	p.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), `hast_inserts_total{result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPrometheus_Counters(t *testing.T) {
	t.Parallel()

	p := metrics.NewPrometheus()
	p.RecordInsert(time.Millisecond, nil)
	p.RecordInsert(time.Millisecond, errors.New("boom"))
	p.RecordDuplicate()
	p.RecordLookup(3, 2, time.Microsecond)
	p.RecordLookup(1, 0, time.Microsecond)
	p.RecordPersist(128, time.Millisecond, nil)
	p.RecordPersist(64, time.Millisecond, errors.New("boom"))
	p.RecordRecovery(10, 2, time.Second)
	p.ObserveRequest("/lookup", http.StatusOK, time.Millisecond)

	families, err := p.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "hast_inserts_total" {
			assert.Len(t, mf.GetMetric(), 2)
		}
	}

	body := scrape(t, p)
	assert.Contains(t, body, `hast_inserts_total{result="error"} 1`)
	assert.Contains(t, body, "hast_duplicate_inserts_total 1")
	assert.Contains(t, body, "hast_lookups_total 2")
	assert.Contains(t, body, "hast_lookup_misses_total 1")
	assert.Contains(t, body, "hast_persist_bytes_total 128")
	assert.Contains(t, body, "hast_recovery_loaded_reports 10")
	assert.Contains(t, body, "hast_recovery_skipped_files 2")
	assert.Contains(t, body, `hast_http_requests_total{code="200",route="/lookup"} 1`)
}

func scrape(t *testing.T, p *metrics.Prometheus) string {
	t.Helper()
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
