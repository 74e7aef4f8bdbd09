package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// ReportService loads persisted reports.
type ReportService interface {
	GetReport(ctx context.Context, id uuid.UUID) (*report.MarketReport, error)
	ListReports(ctx context.Context, opts ...report.QueryOption) ([]report.Summary, error)
}

// DownloadLinker presigns exported report objects.
type DownloadLinker interface {
	DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ReportHandler serves stored reports.
type ReportHandler struct {
	svc    ReportService
	links  DownloadLinker
	expiry time.Duration
}

// NewReportHandler creates a ReportHandler.  A nil links disables downloads.
func NewReportHandler(svc ReportService, links DownloadLinker, expiry time.Duration) *ReportHandler {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &ReportHandler{svc: svc, links: links, expiry: expiry}
}

// ReportListResponse is one page of report summaries.
type ReportListResponse struct {
	Reports []report.Summary `json:"reports"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}

// DownloadResponse carries a presigned URL.
type DownloadResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *ReportHandler) load(c *gin.Context) (*report.MarketReport, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		WriteError(c, errors.InvalidParam("report id must be a uuid").WithDetail(c.Param("id")))
		return nil, false
	}
	r, err := h.svc.GetReport(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return nil, false
	}
	return r, true
}

// Get handles GET /api/v1/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	if r, ok := h.load(c); ok {
		c.JSON(http.StatusOK, r)
	}
}

// List handles GET /api/v1/reports.
func (h *ReportHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	opts := []report.QueryOption{report.WithPagination(offset, limit)}
	if v := c.Query("industry"); v != "" {
		opts = append(opts, report.WithIndustry(v))
	}
	if v := c.Query("location"); v != "" {
		opts = append(opts, report.WithLocation(v))
	}

	items, err := h.svc.ListReports(c.Request.Context(), opts...)
	if err != nil {
		WriteError(c, err)
		return
	}
	if items == nil {
		items = []report.Summary{}
	}
	c.JSON(http.StatusOK, ReportListResponse{Reports: items, Offset: offset, Limit: limit})
}

// Download handles GET /api/v1/reports/:id/download.
func (h *ReportHandler) Download(c *gin.Context) {
	if h.links == nil {
		WriteError(c, errors.Unavailable("report export is disabled"))
		return
	}
	r, ok := h.load(c)
	if !ok {
		return
	}
	if r.ExportKey == "" {
		WriteError(c, errors.NotFound("report was not exported").WithDetail(r.ID.String()))
		return
	}
	url, err := h.links.DownloadURL(c.Request.Context(), r.ExportKey, h.expiry)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, DownloadResponse{URL: url, Key: r.ExportKey, ExpiresAt: time.Now().Add(h.expiry).UTC()})
}

//Personal.AI order the ending
