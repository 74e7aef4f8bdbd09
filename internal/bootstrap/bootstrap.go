// Package bootstrap assembles the analysis service and its optional adapters
// from configuration.  The API server and the worker both start here.
package bootstrap

import (
	"context"
	"io"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/search/opensearch"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/storage/minio"
)

// Infrastructure holds the adapters enabled by configuration.  A disabled
// adapter leaves its fields nil.
type Infrastructure struct {
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	DB       *postgres.Connection
	Reports  report.Repository
	Redis    *redis.Client
	Cache    *redis.ReportCache
	Storage  *minio.Client
	Exporter *minio.ReportExporter
	Search   *opensearch.Client
	Indexer  *opensearch.Indexer
	Searcher *opensearch.Searcher
	Producer *kafka.Producer
	Events   *kafka.ReportEventPublisher
	Batches  *kafka.BatchSubmitter

	logger  logging.Logger
	closers []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Check is one named dependency probe.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Open connects every enabled adapter.  On failure the adapters opened so far
// are closed before the error is returned.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (_ *Infrastructure, err error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	infra := &Infrastructure{logger: log}
	defer func() {
		if err != nil {
			infra.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		infra.Collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if err != nil {
			return nil, err
		}
		infra.Metrics = prometheus.NewAppMetrics(infra.Collector)
	}

	if cfg.Database.Enabled {
		if err = infra.openDatabase(cfg.Database); err != nil {
			return nil, err
		}
	}
	if cfg.Redis.Enabled {
		if err = infra.openRedis(cfg.Redis, cfg.Analysis); err != nil {
			return nil, err
		}
	}
	if cfg.MinIO.Enabled {
		if err = infra.openStorage(ctx, cfg.MinIO); err != nil {
			return nil, err
		}
	}
	if cfg.OpenSearch.Enabled {
		if err = infra.openSearch(ctx, cfg.OpenSearch); err != nil {
			return nil, err
		}
	}
	if cfg.Kafka.Enabled {
		if err = infra.openKafka(cfg.Kafka); err != nil {
			return nil, err
		}
	}
	return infra, nil
}

func (i *Infrastructure) openDatabase(cfg config.DatabaseConfig) error {
	conn, err := postgres.NewConnection(cfg, i.logger)
	if err != nil {
		return err
	}
	i.track("postgres", conn)
	if cfg.AutoMigrate {
		if err := conn.RunMigrations(); err != nil {
			return err
		}
	}
	i.DB = conn
	i.Reports = repositories.NewPostgresReportRepo(conn, i.logger, i.Metrics)
	return nil
}

func (i *Infrastructure) openRedis(cfg config.RedisConfig, analysisCfg config.AnalysisConfig) error {
	client, err := redis.NewClient(redis.ClientConfig{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, i.logger)
	if err != nil {
		return err
	}
	i.track("redis", client)
	i.Redis = client
	cache := redis.NewRedisCache(client, i.logger, redis.WithPrefix(cfg.KeyPrefix), redis.WithDefaultTTL(analysisCfg.CacheTTL))
	i.Cache = redis.NewReportCache(cache, analysisCfg.CacheTTL, i.Metrics)
	return nil
}

func (i *Infrastructure) openStorage(ctx context.Context, cfg config.MinIOConfig) error {
	client, err := minio.NewClient(ctx, cfg, i.logger)
	if err != nil {
		return err
	}
	i.track("minio", client)
	i.Storage = client
	i.Exporter = minio.NewReportExporter(client, i.logger, i.Metrics)
	return nil
}

func (i *Infrastructure) openSearch(ctx context.Context, cfg config.OpenSearchConfig) error {
	client, err := opensearch.NewClient(ctx, cfg, i.logger)
	if err != nil {
		return err
	}
	i.track("opensearch", client)
	i.Search = client
	i.Indexer = opensearch.NewIndexer(client, i.logger, i.Metrics)
	if err := i.Indexer.EnsureIndex(ctx); err != nil {
		return err
	}
	i.Searcher = opensearch.NewSearcher(client, i.logger, i.Metrics)
	return nil
}

func (i *Infrastructure) openKafka(cfg config.KafkaConfig) error {
	producer, err := kafka.NewProducer(ProducerConfig(cfg), i.logger)
	if err != nil {
		return err
	}
	i.track("kafka-producer", producer)
	i.Producer = producer
	i.Events = kafka.NewReportEventPublisher(producer, cfg.ReportTopic)
	i.Batches = kafka.NewBatchSubmitter(producer, cfg.ObservationTopic)
	return nil
}

func (i *Infrastructure) track(name string, c io.Closer) {
	i.closers = append(i.closers, namedCloser{name: name, c: c})
}

// ProducerConfig maps the kafka section onto the producer settings.
func ProducerConfig(cfg config.KafkaConfig) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:      cfg.Brokers,
		Acks:         "all",
		MaxRetries:   cfg.MaxRetries,
		BatchTimeout: cfg.BatchTimeout,
	}
}

// ConsumerConfig maps the kafka section onto the observation-batch consumer.
func ConsumerConfig(cfg config.KafkaConfig) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.GroupID,
		Topics:          []string{cfg.ObservationTopic},
		AutoOffsetReset: "earliest",
		Retry: kafka.RetryConfig{
			MaxRetries:      cfg.MaxRetries,
			RetryBackoff:    cfg.RetryBackoff,
			DeadLetterTopic: cfg.DLQTopic,
		},
	}
}

// ServiceOptions returns one analysis option per enabled adapter.
func (i *Infrastructure) ServiceOptions() []analysis.Option {
	opts := []analysis.Option{analysis.WithMetrics(i.Metrics)}
	if i.Reports != nil {
		opts = append(opts, analysis.WithRepository(i.Reports))
	}
	if i.Cache != nil {
		opts = append(opts, analysis.WithCache(i.Cache))
	}
	if i.Exporter != nil {
		opts = append(opts, analysis.WithExporter(i.Exporter))
	}
	if i.Indexer != nil {
		opts = append(opts, analysis.WithIndexer(i.Indexer))
	}
	if i.Events != nil {
		opts = append(opts, analysis.WithPublisher(i.Events))
	}
	return opts
}

// Checks returns a readiness probe per enabled adapter.
func (i *Infrastructure) Checks() []Check {
	var checks []Check
	if i.DB != nil {
		checks = append(checks, Check{Name: "postgres", Fn: i.DB.HealthCheck})
	}
	if i.Redis != nil {
		checks = append(checks, Check{Name: "redis", Fn: i.Redis.Ping})
	}
	if i.Storage != nil {
		checks = append(checks, Check{Name: "minio", Fn: i.Storage.HealthCheck})
	}
	if i.Search != nil {
		checks = append(checks, Check{Name: "opensearch", Fn: i.Search.Ping})
	}
	return checks
}

// Close releases adapters in reverse opening order.  Safe to call twice.
func (i *Infrastructure) Close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		nc := i.closers[n]
		if err := nc.c.Close(); err != nil {
			i.logger.Warn("close failed", logging.String("component", nc.name), logging.Err(err))
		}
	}
	i.closers = nil
}

// NewService builds the analysis service from cfg over the enabled adapters.
func NewService(cfg *config.Config, infra *Infrastructure, log logging.Logger) (*analysis.Service, error) {
	reg, err := cfg.BuildRegistry()
	if err != nil {
		return nil, err
	}
	scorer, err := cfg.BuildScorer()
	if err != nil {
		return nil, err
	}
	opts := append(infra.ServiceOptions(), analysis.WithConfig(analysis.Config{
		MaxParallelCohorts: cfg.Analysis.MaxParallelCohorts,
		Timeout:            cfg.Analysis.Timeout,
	}))
	return analysis.NewService(reg, scorer, log, opts...)
}

//Personal.AI order the ending
