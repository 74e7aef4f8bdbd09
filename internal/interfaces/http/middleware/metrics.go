package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// unmatchedRoute labels requests that hit no route, keeping path cardinality
// bounded.
const unmatchedRoute = "unmatched"

// Metrics records request counts, durations and in-flight requests by route
// template.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.HTTPActiveRequests.WithLabelValues().Inc()
		defer m.HTTPActiveRequests.WithLabelValues().Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
