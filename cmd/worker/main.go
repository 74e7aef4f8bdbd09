// Worker entry point for MarketScope-Intelligence.  It consumes observation
// batches from Kafka, analyses each one and persists the resulting report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/bootstrap"
	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/worker"
)

const (
	defaultHealthPort  = 8081
	topicSetupTimeout  = 30 * time.Second
	defaultReplication = 1
)

var version = "dev"

type options struct {
	configPath  string
	healthPort  int
	consumers   int
	replication int
	createTopic bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to configuration file (default: environment and built-in defaults)")
	flag.IntVar(&o.healthPort, "health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics")
	flag.IntVar(&o.consumers, "consumers", 1, "consumers in the group; each reads its own partitions")
	flag.IntVar(&o.replication, "replication", defaultReplication, "replication factor for created topics")
	flag.BoolVar(&o.createTopic, "create-topics", true, "create missing topics on start")
	flag.Parse()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka.enabled must be true for the worker")
	}
	if o.consumers < 1 {
		o.consumers = 1
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(logging.String("service", "worker"), logging.String("version", version))
	logger.Info("starting MarketScope-Intelligence worker",
		logging.Strings("brokers", cfg.Kafka.Brokers),
		logging.String("topic", cfg.Kafka.ObservationTopic),
		logging.Int("consumers", o.consumers))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.createTopic {
		if err := ensureTopics(ctx, cfg.Kafka, o.replication, logger); err != nil {
			return err
		}
	}

	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("infrastructure initialization failed: %w", err)
	}
	defer infra.Close()

	svc, err := bootstrap.NewService(cfg, infra, logger)
	if err != nil {
		return err
	}
	if o.configPath != "" {
		if err := bootstrap.NewReloader(svc, infra.Invalidator(), logger).Watch(o.configPath); err != nil {
			logger.Warn("config watch disabled", logging.Err(err))
		}
	}

	handler := worker.NewBatchHandler(svc, logger, cfg.Analysis.Timeout)
	consumers := make([]*kafka.Consumer, 0, o.consumers)
	defer func() {
		for _, c := range consumers {
			if err := c.Close(); err != nil {
				logger.Error("consumer close error", logging.Err(err))
			}
		}
	}()
	for n := 0; n < o.consumers; n++ {
		c, err := kafka.NewConsumer(bootstrap.ConsumerConfig(cfg.Kafka), infra.Producer, logger, infra.Metrics)
		if err != nil {
			return err
		}
		consumers = append(consumers, c)
		handler.Register(c, cfg.Kafka.ObservationTopic)
		if err := c.Start(ctx); err != nil {
			return err
		}
	}

	health := healthServer(cfg, o.healthPort, infra, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- health.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("health server error", logging.Err(err))
		}
		stop()
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := health.Stop(context.Background()); err != nil {
		logger.Error("health server shutdown error", logging.Err(err))
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.LoadFromFile(path)
}

func ensureTopics(ctx context.Context, kc config.KafkaConfig, replication int, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(kc.Brokers, logger)
	if err != nil {
		return err
	}
	defer tm.Close()

	ctx, cancel := context.WithTimeout(ctx, topicSetupTimeout)
	defer cancel()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(kc.ObservationTopic, kc.ReportTopic, kc.DLQTopic, replication))
}

// healthServer exposes probes and metrics only; the worker has no API.
func healthServer(cfg *config.Config, port int, infra *bootstrap.Infrastructure, logger logging.Logger) *httpserver.Server {
	checks := infra.Checks()
	checkers := make([]handlers.HealthChecker, 0, len(checks))
	for _, c := range checks {
		checkers = append(checkers, handlers.NewChecker(c.Name, c.Fn))
	}

	gin.SetMode(cfg.Server.Mode)
	rc := httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, infra.Metrics, checkers...),
		Logger:        logger,
		Metrics:       infra.Metrics,
	}
	if infra.Collector != nil {
		rc.MetricsPath = infra.Collector.Handler()
	}

	sc := cfg.Server
	sc.Port = port
	return httpserver.NewServer(sc, httpserver.NewRouter(rc), logger)
}

//Personal.AI order the ending
