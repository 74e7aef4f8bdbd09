package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BusinessQuery selects indexed businesses.  Empty fields do not filter.
type BusinessQuery struct {
	Text         string  `json:"q,omitempty"`
	Industry     string  `json:"industry,omitempty"`
	Location     string  `json:"location,omitempty"`
	MinLeadScore float64 `json:"min_lead_score,omitempty"`
	From         int     `json:"from,omitempty"`
	Size         int     `json:"size,omitempty"`
}

// BusinessHit is one matching document.
type BusinessHit struct {
	ID       string           `json:"id"`
	Score    float64          `json:"score"`
	Document BusinessDocument `json:"document"`
}

// BusinessSearchResult is one page of hits, best leads first.
type BusinessSearchResult struct {
	Total int64         `json:"total"`
	Hits  []BusinessHit `json:"hits"`
}

// Searcher queries the business index.
type Searcher struct {
	client  *Client
	index   string
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewSearcher uses the client's configured index.
func NewSearcher(client *Client, log logging.Logger, metrics *prometheus.AppMetrics) *Searcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Searcher{client: client, index: client.config.Index, logger: log.Named("business_searcher"), metrics: metrics}
}

// BuildQuery renders q as a query DSL body.
func BuildQuery(q BusinessQuery) map[string]interface{} {
	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	from := q.From
	if from < 0 {
		from = 0
	}

	var must, filter []interface{}
	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"name^3", "address"},
			},
		})
	}
	if q.Industry != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"industry": benchmark.NormalizeIndustry(q.Industry)},
		})
	}
	if q.Location != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"location_slug": report.Slug(q.Location)},
		})
	}
	if q.MinLeadScore > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"lead_score": map[string]interface{}{"gte": q.MinLeadScore}},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(boolQuery) > 0 {
		query = map[string]interface{}{"bool": boolQuery}
	}

	return map[string]interface{}{
		"from":  from,
		"size":  size,
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"lead_score": map[string]string{"order": "desc"}},
			"_score",
		},
	}
}

// SearchBusinesses runs q against the index.
func (s *Searcher) SearchBusinesses(ctx context.Context, q BusinessQuery) (result *BusinessSearchResult, err error) {
	defer func() { s.metrics.RecordIndexOperation("search", err) }()

	body, err := json.Marshal(BuildQuery(q))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal query")
	}
	resp, err := s.client.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{s.index},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchIndex, "search request failed")
	}

	result = &BusinessSearchResult{
		Total: int64(resp.Hits.Total.Value),
		Hits:  make([]BusinessHit, 0, len(resp.Hits.Hits)),
	}
	for _, h := range resp.Hits.Hits {
		var doc BusinessDocument
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			s.logger.Warn("skipping undecodable hit", logging.String("id", h.ID), logging.Err(err))
			continue
		}
		result.Hits = append(result.Hits, BusinessHit{ID: h.ID, Score: float64(h.Score), Document: doc})
	}
	return result, nil
}

//Personal.AI order the ending
