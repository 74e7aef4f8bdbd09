// Package http exposes the analysis service over a gin JSON API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// RouterConfig carries the handlers and middleware settings.  A nil handler
// leaves its routes unmounted.
type RouterConfig struct {
	MarketHandler      *handlers.MarketHandler
	ReportHandler      *handlers.ReportHandler
	SearchHandler      *handlers.SearchHandler
	ObservationHandler *handlers.ObservationHandler
	HealthHandler      *handlers.HealthHandler

	Logger      logging.Logger
	Metrics     *prometheus.AppMetrics
	MetricsPath http.Handler
	RateLimit   *middleware.RateLimitConfig
	CORS        *middleware.CORSConfig
	Logging     middleware.LoggingConfig
	MaxBodySize int64
}

// NewRouter builds the route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.CORS != nil && len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))
	if cfg.RateLimit != nil && cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}
	r.Use(middleware.BodyLimit(cfg.MaxBodySize))

	r.NoRoute(func(c *gin.Context) {
		handlers.WriteError(c, errors.NotFound("route not found").WithDetail(c.Request.URL.Path))
	})
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, handlers.ErrorResponse{
			Code:    string(errors.ErrCodeBadRequest),
			Message: "method not allowed",
		})
	})

	if h := cfg.HealthHandler; h != nil {
		r.GET("/healthz", h.Liveness)
		r.GET("/readyz", h.Readiness)
	}
	if cfg.MetricsPath != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsPath))
	}

	api := r.Group("/api/v1")
	registerMarketRoutes(api, cfg.MarketHandler)
	registerReportRoutes(api, cfg.ReportHandler)
	registerSearchRoutes(api, cfg.SearchHandler)
	registerObservationRoutes(api, cfg.ObservationHandler)

	return r
}

func registerMarketRoutes(api *gin.RouterGroup, h *handlers.MarketHandler) {
	if h == nil {
		return
	}
	api.GET("/benchmarks", h.ListBenchmarks)
	api.GET("/benchmarks/:industry", h.GetBenchmark)
	api.POST("/markets/analyze", h.Analyze)
	api.POST("/markets/compare", h.Compare)
	api.POST("/observations/merge", h.Merge)
}

func registerReportRoutes(api *gin.RouterGroup, h *handlers.ReportHandler) {
	if h == nil {
		return
	}
	api.GET("/reports", h.List)
	api.GET("/reports/:id", h.Get)
	api.GET("/reports/:id/download", h.Download)
}

func registerSearchRoutes(api *gin.RouterGroup, h *handlers.SearchHandler) {
	if h == nil {
		return
	}
	api.GET("/businesses/search", h.Search)
}

func registerObservationRoutes(api *gin.RouterGroup, h *handlers.ObservationHandler) {
	if h == nil {
		return
	}
	api.POST("/observations/batches", h.SubmitBatch)
}

//Personal.AI order the ending
