package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// MarketService is the analysis surface the market endpoints need.
type MarketService interface {
	AnalyzeMarket(ctx context.Context, req analysis.MarketRequest) (*report.MarketReport, error)
	Compare(ctx context.Context, req analysis.CompareRequest) (*analysis.Comparison, error)
	Merge(observations []business.RawObservation) business.MergeResult
	Benchmarks() analysis.BenchmarkTable
	Benchmark(industry string) (benchmark.Entry, error)
}

// MarketHandler serves analysis, comparison, merge and benchmark endpoints.
type MarketHandler struct {
	svc MarketService
}

func NewMarketHandler(svc MarketService) *MarketHandler {
	return &MarketHandler{svc: svc}
}

// MergeRequest is the body of POST /observations/merge.
type MergeRequest struct {
	Observations []business.RawObservation `json:"observations"`
}

// Analyze handles POST /api/v1/markets/analyze.
func (h *MarketHandler) Analyze(c *gin.Context) {
	var req analysis.MarketRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.AnalyzeMarket(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Compare handles POST /api/v1/markets/compare.
func (h *MarketHandler) Compare(c *gin.Context) {
	var req analysis.CompareRequest
	if !bindJSON(c, &req) {
		return
	}
	cmp, err := h.svc.Compare(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// Merge handles POST /api/v1/observations/merge.
func (h *MarketHandler) Merge(c *gin.Context) {
	var req MergeRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Merge(req.Observations))
}

// ListBenchmarks handles GET /api/v1/benchmarks.
func (h *MarketHandler) ListBenchmarks(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Benchmarks())
}

// GetBenchmark handles GET /api/v1/benchmarks/:industry.
func (h *MarketHandler) GetBenchmark(c *gin.Context) {
	industry := c.Param("industry")
	if industry == "" {
		WriteError(c, errors.New(errors.ErrCodeBadRequest, "industry is required"))
		return
	}
	e, err := h.svc.Benchmark(industry)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

//Personal.AI order the ending
