package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveClassification(t *testing.T) {
	m := New()
	m.ObserveClassification(OutcomeSuccess, 2*time.Second)
	m.ObserveClassification(OutcomeSuccess, time.Second)
	m.ObserveClassification(OutcomeMalformed, time.Second)
	m.ObserveClassification(OutcomeRejected, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.classifications.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues(OutcomeMalformed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.oracleDuration))
}

func TestSetRecordsAndQueries(t *testing.T) {
	m := New()
	m.SetRecords(101)
	assert.Equal(t, 101.0, testutil.ToFloat64(m.records))

	m.ObserveQuery(true)
	m.ObserveQuery(false)
	m.ObserveQuery(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("invalid")))
}

func TestHandlerExposesPipelineMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/v1/threats", "200", 10*time.Millisecond)
	m.SetRecords(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "phishguard_threat_records 3")
	assert.Contains(t, string(body), `phishguard_http_requests_total{code="200",route="/api/v1/threats"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
