package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

const (
	defaultBulkBatchSize = 500
	alreadyExistsType    = "resource_already_exists_exception"
)

// BusinessDocument is the indexed view of one scored business.
type BusinessDocument struct {
	ReportID           string    `json:"report_id"`
	RecordID           string    `json:"record_id"`
	Name               string    `json:"name"`
	Address            string    `json:"address,omitempty"`
	Location           string    `json:"location"`
	LocationSlug       string    `json:"location_slug"`
	Industry           string    `json:"industry"`
	Region             string    `json:"region"`
	Sources            []string  `json:"sources"`
	Revenue            *float64  `json:"revenue,omitempty"`
	SuccessionRisk     float64   `json:"succession_risk"`
	LeadScore          float64   `json:"lead_score"`
	MarketShare        float64   `json:"market_share"`
	FragmentationLevel string    `json:"fragmentation_level"`
	ReportCreatedAt    time.Time `json:"report_created_at"`
}

// DocumentID keys a business by report and position, so re-indexing a report
// overwrites its documents.
func DocumentID(reportID uuid.UUID, ordinal int) string {
	return fmt.Sprintf("%s-%d", reportID, ordinal)
}

// DocumentsFromReport flattens r's businesses.
func DocumentsFromReport(r *report.MarketReport) []BusinessDocument {
	docs := make([]BusinessDocument, len(r.Businesses))
	for i := range r.Businesses {
		b := &r.Businesses[i]
		docs[i] = BusinessDocument{
			ReportID:           r.ID.String(),
			RecordID:           b.ID,
			Name:               b.Identity.Name,
			Address:            b.Identity.Address,
			Location:           r.Location,
			LocationSlug:       report.Slug(r.Location),
			Industry:           r.Industry,
			Region:             r.Region,
			Sources:            b.Provenance,
			Revenue:            b.Financials.EstimatedRevenue.Value,
			SuccessionRisk:     b.Derived.SuccessionRiskScore,
			LeadScore:          b.Derived.LeadScore,
			MarketShare:        b.Derived.MarketSharePercent,
			FragmentationLevel: string(r.Metrics.FragmentationLevel),
			ReportCreatedAt:    r.CreatedAt,
		}
	}
	return docs
}

// BusinessIndexMapping is the index definition.
func BusinessIndexMapping() map[string]interface{} {
	keyword := map[string]interface{}{"type": "keyword"}
	float := map[string]interface{}{"type": "float"}
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"report_id": keyword,
				"record_id": keyword,
				"name": map[string]interface{}{
					"type":   "text",
					"fields": map[string]interface{}{"raw": keyword},
				},
				"address":             map[string]interface{}{"type": "text"},
				"location":            keyword,
				"location_slug":       keyword,
				"industry":            keyword,
				"region":              keyword,
				"sources":             keyword,
				"revenue":             map[string]interface{}{"type": "double"},
				"succession_risk":     float,
				"lead_score":          float,
				"market_share":        float,
				"fragmentation_level": keyword,
				"report_created_at":   map[string]interface{}{"type": "date"},
			},
		},
	}
}

// BulkItemError is one rejected document.
type BulkItemError struct {
	DocID  string
	Type   string
	Reason string
}

// BulkResult summarises one IndexReport call.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []BulkItemError
}

// Indexer writes business documents into one index.
type Indexer struct {
	client    *Client
	index     string
	batchSize int
	logger    logging.Logger
	metrics   *prometheus.AppMetrics
}

// NewIndexer uses the client's configured index and batch size.
func NewIndexer(client *Client, log logging.Logger, metrics *prometheus.AppMetrics) *Indexer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	size := client.config.BulkBatchSize
	if size <= 0 {
		size = defaultBulkBatchSize
	}
	return &Indexer{
		client:    client,
		index:     client.config.Index,
		batchSize: size,
		logger:    log.Named("business_indexer"),
		metrics:   metrics,
	}
}

// Index is the target index name.
func (i *Indexer) Index() string { return i.index }

// EnsureIndex creates the index.  An existing index is left untouched.
func (i *Indexer) EnsureIndex(ctx context.Context) (err error) {
	defer func() { i.metrics.RecordIndexOperation("ensure_index", err) }()

	body, err := json.Marshal(BusinessIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}
	_, err = i.client.api.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: i.index,
		Body:  bytes.NewReader(body),
	})
	if err != nil {
		if strings.Contains(err.Error(), alreadyExistsType) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrCodeSearchIndex, "failed to create index %s", i.index)
	}
	i.logger.Info("index created", logging.String("index", i.index))
	return nil
}

// IndexReport bulk-indexes every business of r in batches.
func (i *Indexer) IndexReport(ctx context.Context, r *report.MarketReport) (*BulkResult, error) {
	docs := DocumentsFromReport(r)
	result := &BulkResult{}
	for start := 0; start < len(docs); start += i.batchSize {
		end := start + i.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := i.bulk(ctx, r.ID, start, docs[start:end], result); err != nil {
			return result, err
		}
	}
	i.logger.Info("report indexed",
		logging.String("report_id", r.ID.String()),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// IndexBusinesses indexes r and returns the number of accepted documents.
// Rejected documents are logged and do not fail the call.
func (i *Indexer) IndexBusinesses(ctx context.Context, r *report.MarketReport) (int, error) {
	res, err := i.IndexReport(ctx, r)
	if err != nil {
		return 0, err
	}
	for _, e := range res.Errors {
		i.logger.Warn("document rejected",
			logging.String("doc_id", e.DocID),
			logging.String("type", e.Type),
			logging.String("reason", e.Reason))
	}
	return res.Succeeded, nil
}

func (i *Indexer) bulk(ctx context.Context, reportID uuid.UUID, offset int, docs []BusinessDocument, result *BulkResult) (err error) {
	defer func() { i.metrics.RecordIndexOperation("bulk", err) }()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for n := range docs {
		meta := map[string]map[string]string{"index": {"_index": i.index, "_id": DocumentID(reportID, offset+n)}}
		if err := enc.Encode(meta); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk action")
		}
		if err := enc.Encode(&docs[n]); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode document")
		}
	}

	resp, err := i.client.api.Bulk(ctx, opensearchapi.BulkReq{Index: i.index, Body: &buf})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSearchIndex, "bulk request failed")
	}
	if !resp.Errors {
		result.Succeeded += len(resp.Items)
		return nil
	}
	for _, item := range resp.Items {
		for _, v := range item {
			if v.Status >= 200 && v.Status < 300 {
				result.Succeeded++
				continue
			}
			result.Failed++
			ie := BulkItemError{DocID: v.ID}
			if v.Error != nil {
				ie.Type = v.Error.Type
				ie.Reason = v.Error.Reason
			}
			result.Errors = append(result.Errors, ie)
		}
	}
	return nil
}

//Personal.AI order the ending
