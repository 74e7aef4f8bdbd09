package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_ProcessAndGoMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableGoMetrics: true, EnableProcessMetrics: true}, nil)
	require.NoError(t, err)
	out := scrape(t, c)
	assert.Contains(t, out, "go_goroutines")
}

func TestRegisterCounter_IncrementsAndIsIdempotent(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("jobs_total", "jobs", "kind")
	second := c.RegisterCounter("jobs_total", "jobs", "kind")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Add(2)

	assert.Contains(t, scrape(t, c), `test_unit_jobs_total{kind="a"} 3`)
}

func TestRegister_TypeMismatchFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dual", "x")
	g := c.RegisterGauge("dual", "x")

	assert.NotPanics(t, func() { g.WithLabelValues().Set(5) })
	assert.IsType(t, noopGaugeVec{}, g)
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("latency_seconds", "latency", nil, "op")
	h.WithLabelValues("read").Observe(0.2)

	out := scrape(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="read"} 1`)
	count, err := testutil.GatherAndCount(c.Gatherer(), "test_unit_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTimer_ObservesElapsed(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("op_seconds", "op", nil)
	timer := NewTimer(h.WithLabelValues())
	time.Sleep(time.Millisecond)
	d := timer.ObserveDuration()

	assert.Greater(t, d, time.Duration(0))
	assert.True(t, strings.Contains(scrape(t, c), "test_unit_op_seconds_count 1"))
	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending
