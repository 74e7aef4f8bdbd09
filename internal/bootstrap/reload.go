package bootstrap

import (
	"context"
	"time"

	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
)

// Reloadable is the part of the analysis service a config change touches.
type Reloadable interface {
	ReloadRegistry(r *benchmark.Registry) error
	ReloadScorer(s *scoring.Scorer) error
}

// Invalidator drops cached reports.
type Invalidator interface {
	Invalidate(ctx context.Context) (int64, error)
}

// Invalidator returns the report cache, or nil when redis is disabled.
func (i *Infrastructure) Invalidator() Invalidator {
	if i.Cache == nil {
		return nil
	}
	return i.Cache
}

// Reloader applies a new Config to a running service.  Settings other than
// benchmarks and scoring weights need a restart.
type Reloader struct {
	svc    Reloadable
	cache  Invalidator
	logger logging.Logger
}

// NewReloader returns a Reloader.  cache may be nil.
func NewReloader(svc Reloadable, cache Invalidator, log logging.Logger) *Reloader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Reloader{svc: svc, cache: cache, logger: log.Named("reload")}
}

// Apply swaps in the benchmark table and the scorer built from cfg.  Nothing
// is replaced when either fails to build.
func (r *Reloader) Apply(cfg *config.Config) error {
	reg, err := cfg.BuildRegistry()
	if err != nil {
		return err
	}
	scorer, err := cfg.BuildScorer()
	if err != nil {
		return err
	}
	if err := r.svc.ReloadRegistry(reg); err != nil {
		return err
	}
	if err := r.svc.ReloadScorer(scorer); err != nil {
		return err
	}

	dropped := int64(0)
	if r.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if dropped, err = r.cache.Invalidate(ctx); err != nil {
			r.logger.Warn("report cache invalidation failed", logging.Err(err))
		}
	}
	r.logger.Info("configuration reloaded",
		logging.Int("industries", len(reg.Industries())),
		logging.Int64("cached_reports_dropped", dropped))
	return nil
}

// Watch applies every valid change to path.  Invalid changes are logged and
// the running configuration is kept.
func (r *Reloader) Watch(path string) error {
	return config.Watch(path,
		func(cfg *config.Config) {
			if err := r.Apply(cfg); err != nil {
				r.logger.Error("configuration reload rejected", logging.Err(err))
			}
		},
		func(err error) {
			r.logger.Error("configuration reload failed", logging.Err(err))
		})
}

//Personal.AI order the ending
