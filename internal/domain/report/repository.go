package report

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists market reports.
type Repository interface {
	Save(ctx context.Context, r *MarketReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*MarketReport, error)
	List(ctx context.Context, opts ...QueryOption) ([]Summary, error)
}

// QueryOptions encapsulates list parameters.
type QueryOptions struct {
	Offset   int
	Limit    int
	Industry string
	Location string
}

// QueryOption is a functional option for QueryOptions.
type QueryOption func(*QueryOptions)

// WithPagination sets pagination options.  Limit is clamped to [1,100].
func WithPagination(offset, limit int) QueryOption {
	return func(o *QueryOptions) {
		if offset < 0 {
			offset = 0
		}
		if limit < 1 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}
		o.Offset = offset
		o.Limit = limit
	}
}

// WithIndustry filters by normalized industry key.
func WithIndustry(industry string) QueryOption {
	return func(o *QueryOptions) { o.Industry = industry }
}

// WithLocation filters by exact location.
func WithLocation(location string) QueryOption {
	return func(o *QueryOptions) { o.Location = location }
}

// ApplyOptions resolves opts over the defaults.
func ApplyOptions(opts ...QueryOption) QueryOptions {
	o := QueryOptions{Limit: 20}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

//Personal.AI order the ending
