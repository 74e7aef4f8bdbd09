package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
)

func TestReportCache_RoundTripAndMetrics(t *testing.T) {
	client, _ := newTestClient(t)
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	rc := NewReportCache(NewRedisCache(client, nil, WithPrefix("ms:")), time.Minute, metrics)
	ctx := context.Background()
	key := report.CacheKey("v1", "Austin, TX", "hvac", "TX", "d1", nil)

	got, ok, err := rc.GetReport(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	want := &report.MarketReport{
		ID:       uuid.New(),
		Location: "Austin, TX",
		Industry: "hvac",
		Metrics:  market.Metrics{BusinessCount: 3, TAM: 2.55e6, FragmentationLevel: market.HighlyFragmented},
	}
	require.NoError(t, rc.PutReport(ctx, key, want))

	got, ok, err = rc.GetReport(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Metrics.TAM, got.Metrics.TAM)

	expected := `
# HELP test_cache_hits_total Cache hits
# TYPE test_cache_hits_total counter
test_cache_hits_total{cache="report"} 1
# HELP test_cache_misses_total Cache misses
# TYPE test_cache_misses_total counter
test_cache_misses_total{cache="report"} 1
`
	require.NoError(t, testutil.GatherAndCompare(collector.Gatherer(), strings.NewReader(expected),
		"test_cache_hits_total", "test_cache_misses_total"))

	n, err := rc.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

//Personal.AI order the ending
