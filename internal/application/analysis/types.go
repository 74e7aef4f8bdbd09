// Package analysis orchestrates the merge, analysis, scoring and composition
// stages per cohort and across cohorts, and fans finished reports out to
// storage, cache, search index, object store and event stream.
package analysis

import (
	"context"
	"strings"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/opportunity"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Requests and responses
// ─────────────────────────────────────────────────────────────────────────────

// MarketRequest asks for one cohort to be analysed.  It is also the payload
// of an observation batch on the message bus.
type MarketRequest struct {
	Location           string                    `json:"location"`
	Industry           string                    `json:"industry"`
	Region             string                    `json:"region,omitempty"`
	AvgRevenueOverride *float64                  `json:"avg_revenue_override,omitempty"`
	Observations       []business.RawObservation `json:"observations"`
}

// Validate checks the structural fields.  An empty industry is allowed and
// resolves to the registry default.
func (r *MarketRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return errors.New(errors.ErrCodeMarketRequestInvalid, "location is required")
	}
	if r.Region != "" && len(strings.TrimSpace(r.Region)) != 2 {
		return errors.New(errors.ErrCodeMarketRequestInvalid, "region must be a 2-letter code").WithDetail(r.Region)
	}
	return nil
}

// CohortKey identifies the cohort of r as "location-slug:industry:REGION".  A
// blank region is written as "-".
func (r *MarketRequest) CohortKey() string {
	region := benchmark.NormalizeRegion(r.Region)
	if region == "" {
		region = "-"
	}
	return report.Slug(r.Location) + ":" + benchmark.NormalizeIndustry(r.Industry) + ":" + region
}

// CompareRequest asks for several cohorts to be analysed and ranked.
type CompareRequest struct {
	Markets []MarketRequest `json:"markets"`
}

// CohortFailure records one cohort that produced no report.
type CohortFailure struct {
	Index    int              `json:"index"`
	Location string           `json:"location"`
	Industry string           `json:"industry"`
	Code     errors.ErrorCode `json:"code"`
	Message  string           `json:"message"`
}

// Comparison is the result of Compare.  Reports keeps request order; a nil
// slot had a failure or was never scheduled.
type Comparison struct {
	Opportunities []opportunity.Opportunity `json:"opportunities"`
	Reports       []*report.MarketReport    `json:"reports"`
	Failed        []CohortFailure           `json:"failed,omitempty"`
	Partial       bool                      `json:"partial"`
}

// BenchmarkTable is the registry rendered for listing.
type BenchmarkTable struct {
	DefaultIndustry string                    `json:"default_industry"`
	Industries      []benchmark.Entry         `json:"industries"`
	Regions         []benchmark.GeoMultiplier `json:"regions"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// ReportCache caches finished reports by cache key.
type ReportCache interface {
	GetReport(ctx context.Context, key string) (*report.MarketReport, bool, error)
	PutReport(ctx context.Context, key string, r *report.MarketReport) error
}

// ReportExporter stores a report document and returns its object key.
type ReportExporter interface {
	ExportReport(ctx context.Context, r *report.MarketReport) (string, error)
}

// BusinessIndexer makes a report's businesses searchable.
type BusinessIndexer interface {
	IndexBusinesses(ctx context.Context, r *report.MarketReport) (int, error)
}

// EventPublisher announces persisted reports.
type EventPublisher interface {
	PublishReportCompleted(ctx context.Context, e report.CompletedEvent) error
}

//Personal.AI order the ending
