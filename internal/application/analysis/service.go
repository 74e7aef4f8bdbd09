package analysis

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/opportunity"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// Config tunes the service.
type Config struct {
	// MaxParallelCohorts bounds concurrent cohort analyses in Compare.
	MaxParallelCohorts int
	// Timeout bounds one Compare call.  Zero means the caller's deadline only.
	Timeout time.Duration
}

// Option configures optional collaborators.  A missing collaborator disables
// its side effect.
type Option func(*Service)

func WithRepository(r report.Repository) Option { return func(s *Service) { s.repo = r } }
func WithCache(c ReportCache) Option             { return func(s *Service) { s.cache = c } }
func WithExporter(e ReportExporter) Option       { return func(s *Service) { s.exporter = e } }
func WithIndexer(i BusinessIndexer) Option       { return func(s *Service) { s.indexer = i } }
func WithPublisher(p EventPublisher) Option      { return func(s *Service) { s.publisher = p } }
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Service) { s.metrics = m }
}
func WithConfig(cfg Config) Option          { return func(s *Service) { s.cfg = cfg } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// Service runs market analyses.  Safe for concurrent use.
type Service struct {
	registry   atomic.Pointer[benchmark.Registry]
	scorer     atomic.Pointer[scoring.Scorer]
	normalizer *business.Normalizer
	flight     singleflight.Group

	repo      report.Repository
	cache     ReportCache
	exporter  ReportExporter
	indexer   BusinessIndexer
	publisher EventPublisher
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
	cfg       Config
	now       func() time.Time
}

// NewService requires a registry.  A nil scorer uses the standard weights.
func NewService(registry *benchmark.Registry, scorer *scoring.Scorer, log logging.Logger, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New(errors.ErrCodeBenchmarkInvalid, "benchmark registry is required")
	}
	if scorer == nil {
		scorer = scoring.NewDefaultScorer()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Service{
		normalizer: business.NewNormalizer(),
		logger:     log.Named("analysis"),
		now:        time.Now,
	}
	s.registry.Store(registry)
	s.scorer.Store(scorer)
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.MaxParallelCohorts < 1 {
		s.cfg.MaxParallelCohorts = 4
	}
	return s, nil
}

// Registry returns the current registry snapshot.
func (s *Service) Registry() *benchmark.Registry { return s.registry.Load() }

// ReloadRegistry swaps the registry.  Calls in flight keep their snapshot.
func (s *Service) ReloadRegistry(r *benchmark.Registry) error {
	if r == nil {
		return errors.New(errors.ErrCodeBenchmarkInvalid, "benchmark registry is required")
	}
	s.registry.Store(r)
	s.logger.Info("benchmark registry reloaded",
		logging.Int("industries", len(r.Industries())),
		logging.Int("regions", len(r.Regions())))
	return nil
}

// ReloadScorer swaps the scorer.
func (s *Service) ReloadScorer(sc *scoring.Scorer) error {
	if sc == nil {
		return errors.New(errors.ErrCodeWeightsInvalid, "scorer is required")
	}
	s.scorer.Store(sc)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

// Merge deduplicates observations without analysing them.
func (s *Service) Merge(observations []business.RawObservation) business.MergeResult {
	res := s.normalizer.Merge(observations)
	s.recordMerge(res.Summary)
	return res
}

// AnalyzeMarket produces the report for one cohort.  Identical requests share
// a cache entry and concurrent identical requests share one computation.
func (s *Service) AnalyzeMarket(ctx context.Context, req MarketRequest) (*report.MarketReport, error) {
	return s.analyze(ctx, s.registry.Load(), s.scorer.Load(), req)
}

func (s *Service) analyze(ctx context.Context, reg *benchmark.Registry, scorer *scoring.Scorer, req MarketRequest) (*report.MarketReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	industry := req.Industry
	if strings.TrimSpace(industry) == "" {
		industry = reg.DefaultIndustry()
	}
	digest := report.Digest(req.Observations)
	key := report.CacheKey(reg.Version()+"."+scorer.Version(), req.Location, industry, req.Region, digest, req.AvgRevenueOverride)

	if r := s.cached(ctx, key); r != nil {
		return r, nil
	}

	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		r := s.build(reg, scorer, req, industry, digest)
		if err := s.fanOut(ctx, key, r); err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("analysis shared with concurrent caller", logging.String("key", key))
	}
	return v.(*report.MarketReport), nil
}

func (s *Service) build(reg *benchmark.Registry, scorer *scoring.Scorer, req MarketRequest, industry, digest string) *report.MarketReport {
	start := time.Now()
	merged := s.normalizer.Merge(req.Observations)
	s.recordMerge(merged.Summary)

	metrics := market.NewAnalyzer(reg).Analyze(merged.Records, industry, req.Region, req.AvgRevenueOverride)
	scored := scorer.ScoreCohort(merged.Records, metrics)

	r := &report.MarketReport{
		ID:                uuid.New(),
		CreatedAt:         s.now().UTC(),
		Location:          strings.TrimSpace(req.Location),
		Industry:          benchmark.NormalizeIndustry(industry),
		Region:            benchmark.NormalizeRegion(req.Region),
		ObservationDigest: digest,
		Metrics:           metrics,
		Businesses:        scored,
		Merge:             merged.Summary,
		Skipped:           merged.Skipped,
	}

	elapsed := time.Since(start)
	s.metrics.RecordAnalysis(r.Industry, string(metrics.FragmentationLevel), metrics.BusinessCount, elapsed)
	s.logger.Info("cohort analysed",
		logging.ReportID(r.ID),
		logging.Cohort(r.Location, r.Industry),
		logging.Int("businesses", metrics.BusinessCount),
		logging.Float64("hhi", metrics.HHIScore),
		logging.String("level", string(metrics.FragmentationLevel)),
		logging.Duration("elapsed", elapsed))
	return r
}

// fanOut runs the side effects of a new report.  Only a failed save is
// returned; the other outputs are best effort.
func (s *Service) fanOut(ctx context.Context, key string, r *report.MarketReport) error {
	if s.exporter != nil {
		k, err := s.exporter.ExportReport(ctx, r)
		if err != nil {
			s.sideEffectFailed("export", r, err)
		} else {
			r.ExportKey = k
		}
	}
	if s.repo != nil {
		if err := s.repo.Save(ctx, r); err != nil {
			s.metrics.RecordError("analysis", string(errors.GetCode(err)))
			return err
		}
	}
	if s.indexer != nil {
		if _, err := s.indexer.IndexBusinesses(ctx, r); err != nil {
			s.sideEffectFailed("index", r, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishReportCompleted(ctx, r.Event(s.now())); err != nil {
			s.sideEffectFailed("publish", r, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.PutReport(ctx, key, r); err != nil {
			s.sideEffectFailed("cache", r, err)
		}
	}
	return nil
}

func (s *Service) cached(ctx context.Context, key string) *report.MarketReport {
	if s.cache == nil {
		return nil
	}
	r, ok, err := s.cache.GetReport(ctx, key)
	if err != nil {
		s.logger.Warn("report cache read failed", logging.String("key", key), logging.Err(err))
		return nil
	}
	if !ok {
		return nil
	}
	return r
}

func (s *Service) sideEffectFailed(step string, r *report.MarketReport, err error) {
	s.metrics.RecordError(step, string(errors.GetCode(err)))
	s.logger.Warn("report side effect failed",
		logging.String("step", step),
		logging.ReportID(r.ID),
		logging.Err(err))
}

func (s *Service) recordMerge(sum business.MergeSummary) {
	s.metrics.RecordObservations(sum.Accepted, sum.Skipped, sum.Degraded, sum.Duplicates)
}

func cancelled(err error) error {
	return errors.Wrap(err, errors.ErrCodeAnalysisCancelled, "analysis cancelled")
}

// Compare analyses every market in parallel and ranks the results.  Cohort
// failures are reported in Failed without failing the call.  When the
// deadline passes no further cohorts are started, finished ones are kept and
// Partial is set.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*Comparison, error) {
	if len(req.Markets) == 0 {
		return nil, errors.New(errors.ErrCodeMarketRequestInvalid, "at least one market is required")
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	reg, scorer := s.registry.Load(), s.scorer.Load()
	reports := make([]*report.MarketReport, len(req.Markets))
	failures := make([]*CohortFailure, len(req.Markets))
	var unscheduled atomic.Bool

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxParallelCohorts)
	for i := range req.Markets {
		if ctx.Err() != nil {
			unscheduled.Store(true)
			break
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				unscheduled.Store(true)
				return nil
			}
			r, err := s.analyze(ctx, reg, scorer, req.Markets[i])
			if err != nil {
				if errors.IsCode(err, errors.ErrCodeAnalysisCancelled) {
					unscheduled.Store(true)
					return nil
				}
				failures[i] = &CohortFailure{
					Index:    i,
					Location: req.Markets[i].Location,
					Industry: req.Markets[i].Industry,
					Code:     errors.GetCode(err),
					Message:  err.Error(),
				}
				return nil
			}
			reports[i] = r
			return nil
		})
	}
	_ = g.Wait()

	out := &Comparison{Reports: reports, Partial: unscheduled.Load()}
	inputs := make([]opportunity.MarketInput, 0, len(reports))
	for i, r := range reports {
		if failures[i] != nil {
			out.Failed = append(out.Failed, *failures[i])
		}
		if r != nil {
			inputs = append(inputs, opportunity.MarketInput{Location: r.Location, Industry: r.Industry, Metrics: r.Metrics})
		}
	}
	if len(inputs) == 0 && out.Partial {
		return nil, cancelled(ctx.Err())
	}

	opps, err := opportunity.NewComposer(reg).Compose(inputs)
	if err != nil {
		return nil, err
	}
	out.Opportunities = opps

	s.metrics.RecordDuration("compare", time.Since(start))
	s.logger.Info("markets compared",
		logging.Int("requested", len(req.Markets)),
		logging.Int("ranked", len(opps)),
		logging.Int("failed", len(out.Failed)),
		logging.Bool("partial", out.Partial))
	return out, nil
}

// Benchmarks lists the current registry.
func (s *Service) Benchmarks() BenchmarkTable {
	reg := s.registry.Load()
	return BenchmarkTable{
		DefaultIndustry: reg.DefaultIndustry(),
		Industries:      reg.Entries(),
		Regions:         reg.GeoMultipliers(),
	}
}

// Benchmark is a strict lookup; unknown industries are not found.
func (s *Service) Benchmark(industry string) (benchmark.Entry, error) {
	e, ok := s.registry.Load().Lookup(industry)
	if !ok {
		return benchmark.Entry{}, errors.New(errors.ErrCodeBenchmarkNotFound, "unknown industry").WithDetail(industry)
	}
	return e, nil
}

var errStorageDisabled = errors.Unavailable("report storage is disabled")

// GetReport loads a persisted report.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*report.MarketReport, error) {
	if s.repo == nil {
		return nil, errStorageDisabled
	}
	return s.repo.FindByID(ctx, id)
}

// ListReports pages through persisted reports, newest first.
func (s *Service) ListReports(ctx context.Context, opts ...report.QueryOption) ([]report.Summary, error) {
	if s.repo == nil {
		return nil, errStorageDisabled
	}
	return s.repo.List(ctx, opts...)
}

//Personal.AI order the ending
