package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// MarketsClient runs analyses and reads benchmarks.
type MarketsClient struct {
	client *Client
}

// Analyze merges, sizes and scores one market.  The server persists the
// report when it has storage configured.
func (m *MarketsClient) Analyze(ctx context.Context, req MarketRequest) (*Report, error) {
	if strings.TrimSpace(req.Location) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "location is required")
	}
	var r Report
	if err := m.client.post(ctx, "/markets/analyze", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Compare analyses every market and ranks them.  Per-market failures are
// reported in the result, not as an error.
func (m *MarketsClient) Compare(ctx context.Context, markets []MarketRequest) (*Comparison, error) {
	if len(markets) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "at least one market is required")
	}
	var c Comparison
	body := struct {
		Markets []MarketRequest `json:"markets"`
	}{markets}
	if err := m.client.post(ctx, "/markets/compare", body, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Merge deduplicates observations without analysing them.
func (m *MarketsClient) Merge(ctx context.Context, observations []Observation) (*MergeResult, error) {
	var res MergeResult
	body := struct {
		Observations []Observation `json:"observations"`
	}{observations}
	if err := m.client.post(ctx, "/observations/merge", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SubmitBatch queues a market for asynchronous analysis by the worker.
func (m *MarketsClient) SubmitBatch(ctx context.Context, req MarketRequest) (*BatchAccepted, error) {
	var ack BatchAccepted
	if err := m.client.post(ctx, "/observations/batches", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (m *MarketsClient) Benchmarks(ctx context.Context) (*BenchmarkTable, error) {
	var t BenchmarkTable
	if err := m.client.get(ctx, "/benchmarks", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Benchmark returns one industry.  An unknown industry is an *APIError with
// IsNotFound.
func (m *MarketsClient) Benchmark(ctx context.Context, industry string) (*Benchmark, error) {
	if industry == "" {
		return nil, errors.New(errors.ErrCodeValidation, "industry is required")
	}
	var b Benchmark
	if err := m.client.get(ctx, "/benchmarks/"+url.PathEscape(industry), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

//Personal.AI order the ending
