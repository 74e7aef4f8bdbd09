package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// ReportRepository is an in-memory report.Repository with the same error
// codes and ordering as the postgres repository.
type ReportRepository struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*report.MarketReport
	saveErr error
	saves   int
}

var _ report.Repository = (*ReportRepository)(nil)

// NewReportRepository returns an empty repository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{reports: make(map[uuid.UUID]*report.MarketReport)}
}

// FailSaves makes every later Save return err.  A nil err restores normal
// behaviour.
func (m *ReportRepository) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves counts Save calls, failed ones included.
func (m *ReportRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Len returns the number of stored reports.
func (m *ReportRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

func (m *ReportRepository) Save(_ context.Context, r *report.MarketReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if r == nil {
		return errors.New(errors.ErrCodeValidation, "report is nil")
	}
	if _, ok := m.reports[r.ID]; ok {
		return errors.New(errors.ErrCodeConflict, "market report already exists").WithDetail(r.ID.String())
	}
	m.reports[r.ID] = r
	return nil
}

func (m *ReportRepository) FindByID(_ context.Context, id uuid.UUID) (*report.MarketReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeReportNotFound, "market report not found").WithDetail(id.String())
	}
	return r, nil
}

// List returns summaries newest first, ties broken by id.
func (m *ReportRepository) List(_ context.Context, opts ...report.QueryOption) ([]report.Summary, error) {
	o := report.ApplyOptions(opts...)
	industry := ""
	if o.Industry != "" {
		industry = benchmark.NormalizeIndustry(o.Industry)
	}

	m.mu.Lock()
	out := make([]report.Summary, 0, len(m.reports))
	for _, r := range m.reports {
		if industry != "" && r.Industry != industry {
			continue
		}
		if o.Location != "" && r.Location != o.Location {
			continue
		}
		out = append(out, r.Summarize())
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	if o.Offset >= len(out) {
		return []report.Summary{}, nil
	}
	out = out[o.Offset:]
	if len(out) > o.Limit {
		out = out[:o.Limit]
	}
	return out, nil
}

//Personal.AI order the ending
