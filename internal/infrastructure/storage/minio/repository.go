package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// ReportPrefix is the key prefix of every exported report.
const ReportPrefix = "reports/"

const contentTypeJSON = "application/json"

// ObjectKey is reports/{industry}/{location-slug}/{id}.json.
func ObjectKey(r *report.MarketReport) string {
	return fmt.Sprintf("%s%s/%s/%s.json",
		ReportPrefix,
		benchmark.NormalizeIndustry(r.Industry),
		report.Slug(r.Location),
		r.ID)
}

// ExportResult describes a stored report object.
type ExportResult struct {
	Bucket     string
	Key        string
	ETag       string
	Size       int64
	ExportedAt time.Time
}

// ReportExporter writes reports to the bucket.
type ReportExporter struct {
	client  *Client
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewReportExporter returns an exporter over client.  metrics may be nil.
func NewReportExporter(client *Client, log logging.Logger, metrics *prometheus.AppMetrics) *ReportExporter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ReportExporter{client: client, logger: log.Named("report_exporter"), metrics: metrics}
}

// Export stores r as JSON and returns its key.  Re-exporting a report
// overwrites the same object.
func (e *ReportExporter) Export(ctx context.Context, r *report.MarketReport) (res *ExportResult, err error) {
	defer func() { e.metrics.RecordExport(err) }()

	if err := e.client.checkOpen(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}

	key := ObjectKey(r)
	info, err := e.client.api.PutObject(ctx, e.client.Bucket(), key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentTypeJSON,
		UserMetadata: map[string]string{
			"report-id":           r.ID.String(),
			"industry":            r.Industry,
			"fragmentation-level": string(r.Metrics.FragmentationLevel),
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeStorage, "failed to upload %s", key)
	}

	e.logger.Info("report exported",
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return &ExportResult{
		Bucket:     e.client.Bucket(),
		Key:        key,
		ETag:       info.ETag,
		Size:       info.Size,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// ExportReport is Export returning only the object key.
func (e *ReportExporter) ExportReport(ctx context.Context, r *report.MarketReport) (string, error) {
	res, err := e.Export(ctx, r)
	if err != nil {
		return "", err
	}
	return res.Key, nil
}

// Exists reports whether key is stored.
func (e *ReportExporter) Exists(ctx context.Context, key string) (bool, error) {
	if err := e.client.checkOpen(); err != nil {
		return false, err
	}
	_, err := e.client.api.StatObject(ctx, e.client.Bucket(), key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorage, "failed to stat object")
}

// DownloadURL presigns key after checking it exists.
func (e *ReportExporter) DownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	ok, err := e.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrObjectNotFound.WithDetail(key)
	}
	return e.client.PresignedGetURL(ctx, key, expiry)
}

// Delete removes key.  Missing keys are not an error.
func (e *ReportExporter) Delete(ctx context.Context, key string) error {
	if err := e.client.checkOpen(); err != nil {
		return err
	}
	if err := e.client.api.RemoveObject(ctx, e.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, errors.ErrCodeStorage, "failed to delete %s", key)
	}
	return nil
}

//Personal.AI order the ending
