package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

const (
	insertReportSQL = `
		INSERT INTO market_reports (
			id, created_at, location, location_slug, industry, region, observation_digest,
			business_count, tam, hhi_score, fragmentation_level,
			metrics, merge_summary, skipped, export_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	insertBusinessSQL = `
		INSERT INTO market_businesses (
			report_id, ordinal, record_id, name, address, sources, revenue,
			succession_risk, lead_score, market_share, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	selectReportSQL = `
		SELECT id, created_at, location, industry, region, observation_digest,
		       metrics, merge_summary, skipped, export_key
		FROM market_reports WHERE id = $1`

	selectBusinessesSQL = `
		SELECT payload FROM market_businesses WHERE report_id = $1 ORDER BY ordinal`

	summaryColumns = `id, created_at, location, industry, region, business_count, tam, hhi_score, fragmentation_level`
)

type postgresReportRepo struct {
	conn    *postgres.Connection
	log     logging.Logger
	metrics *prometheus.AppMetrics
}

// NewPostgresReportRepo returns a report.Repository.  metrics may be nil.
func NewPostgresReportRepo(conn *postgres.Connection, log logging.Logger, metrics *prometheus.AppMetrics) report.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresReportRepo{conn: conn, log: log.Named("report_repo"), metrics: metrics}
}

func (r *postgresReportRepo) observe(op string, start time.Time, err error) {
	r.metrics.RecordDBQuery(op, time.Since(start), err)
}

// Save writes the report row and one row per scored business atomically.
func (r *postgresReportRepo) Save(ctx context.Context, rep *report.MarketReport) (err error) {
	defer func(start time.Time) { r.observe("save_report", start, err) }(time.Now())

	metrics, err := json.Marshal(rep.Metrics)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report metrics")
	}
	merge, err := json.Marshal(rep.Merge)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode merge summary")
	}
	skipped := rep.Skipped
	if skipped == nil {
		skipped = []business.Skip{}
	}
	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode skipped observations")
	}

	err = withTx(ctx, r.conn.DB(), func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertReportSQL,
			rep.ID, rep.CreatedAt, rep.Location, report.Slug(rep.Location), rep.Industry, rep.Region,
			rep.ObservationDigest, rep.Metrics.BusinessCount, rep.Metrics.TAM, rep.Metrics.HHIScore,
			string(rep.Metrics.FragmentationLevel), metrics, merge, skippedJSON, rep.ExportKey,
		); err != nil {
			return err
		}
		for i := range rep.Businesses {
			if err := insertBusiness(ctx, tx, rep.ID, i, &rep.Businesses[i]); err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case err == nil:
		r.log.Debug("report saved", logging.String("id", rep.ID.String()), logging.Int("businesses", len(rep.Businesses)))
		return nil
	case isUniqueViolation(err):
		return errors.Wrapf(err, errors.ErrCodeConflict, "report %s already exists", rep.ID)
	case errors.GetCode(err) != errors.CodeUnknown:
		return err
	default:
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save market report")
	}
}

func insertBusiness(ctx context.Context, exec queryExecutor, reportID uuid.UUID, ordinal int, b *scoring.ScoredBusiness) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode business")
	}
	sources := b.Provenance
	if sources == nil {
		sources = []string{}
	}
	_, err = exec.ExecContext(ctx, insertBusinessSQL,
		reportID, ordinal, b.ID, b.Identity.Name, b.Identity.Address, pq.Array(sources),
		b.Financials.EstimatedRevenue.Value, b.Derived.SuccessionRiskScore, b.Derived.LeadScore,
		b.Derived.MarketSharePercent, payload,
	)
	return err
}

func (r *postgresReportRepo) FindByID(ctx context.Context, id uuid.UUID) (rep *report.MarketReport, err error) {
	defer func(start time.Time) { r.observe("find_report", start, err) }(time.Now())

	db := r.conn.DB()
	rep, err = scanReport(db.QueryRowContext(ctx, selectReportSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeReportNotFound, "market report not found").WithDetail(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load market report")
	}

	rows, err := db.QueryContext(ctx, selectBusinessesSQL, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load report businesses")
	}
	defer rows.Close()

	rep.Businesses = make([]scoring.ScoredBusiness, 0, rep.Metrics.BusinessCount)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report business")
		}
		var b scoring.ScoredBusiness
		if err := json.Unmarshal(payload, &b); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode report business")
		}
		rep.Businesses = append(rep.Businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate report businesses")
	}
	return rep, nil
}

func scanReport(row scanner) (*report.MarketReport, error) {
	var (
		rep                        report.MarketReport
		metrics, merge, skippedRaw []byte
	)
	if err := row.Scan(&rep.ID, &rep.CreatedAt, &rep.Location, &rep.Industry, &rep.Region,
		&rep.ObservationDigest, &metrics, &merge, &skippedRaw, &rep.ExportKey); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metrics, &rep.Metrics); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(merge, &rep.Merge); err != nil {
		return nil, err
	}
	if len(skippedRaw) > 0 {
		if err := json.Unmarshal(skippedRaw, &rep.Skipped); err != nil {
			return nil, err
		}
	}
	if len(rep.Skipped) == 0 {
		rep.Skipped = nil
	}
	return &rep, nil
}

// List returns summaries newest first.
func (r *postgresReportRepo) List(ctx context.Context, opts ...report.QueryOption) (out []report.Summary, err error) {
	defer func(start time.Time) { r.observe("list_reports", start, err) }(time.Now())

	o := report.ApplyOptions(opts...)
	var (
		where []string
		args  []interface{}
	)
	if o.Industry != "" {
		args = append(args, benchmark.NormalizeIndustry(o.Industry))
		where = append(where, fmt.Sprintf("industry = $%d", len(args)))
	}
	if o.Location != "" {
		args = append(args, o.Location)
		where = append(where, fmt.Sprintf("location = $%d", len(args)))
	}

	query := "SELECT " + summaryColumns + " FROM market_reports"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, o.Limit, o.Offset)

	rows, err := r.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list market reports")
	}
	defer rows.Close()

	out = make([]report.Summary, 0, o.Limit)
	for rows.Next() {
		var (
			s     report.Summary
			level string
		)
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Location, &s.Industry, &s.Region,
			&s.BusinessCount, &s.TAM, &s.HHIScore, &level); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report summary")
		}
		s.FragmentationLevel = market.ParseFragmentationLevel(level)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate report summaries")
	}
	return out, nil
}

//Personal.AI order the ending
