package redis

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
)

const reportCacheName = "report"

// ReportCache stores finished market reports under report.CacheKey keys.
type ReportCache struct {
	cache   Cache
	ttl     time.Duration
	metrics *prometheus.AppMetrics
}

// NewReportCache wraps cache.  metrics may be nil.
func NewReportCache(cache Cache, ttl time.Duration, metrics *prometheus.AppMetrics) *ReportCache {
	return &ReportCache{cache: cache, ttl: ttl, metrics: metrics}
}

// GetReport returns (nil, false, nil) on a miss.
func (c *ReportCache) GetReport(ctx context.Context, key string) (*report.MarketReport, bool, error) {
	var r report.MarketReport
	err := c.cache.Get(ctx, key, &r)
	switch {
	case err == nil:
		c.metrics.RecordCacheAccess(reportCacheName, true)
		return &r, true, nil
	case stderrors.Is(err, ErrCacheMiss):
		c.metrics.RecordCacheAccess(reportCacheName, false)
		return nil, false, nil
	default:
		return nil, false, err
	}
}

// PutReport stores r under key.
func (c *ReportCache) PutReport(ctx context.Context, key string, r *report.MarketReport) error {
	return c.cache.Set(ctx, key, r, c.ttl)
}

// Invalidate drops every cached report.  It runs after a benchmark reload
// since cached metrics were computed against the old table.
func (c *ReportCache) Invalidate(ctx context.Context) (int64, error) {
	return c.cache.DeleteByPrefix(ctx, "report:")
}

//Personal.AI order the ending
