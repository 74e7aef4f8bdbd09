// API server entry point for MarketScope-Intelligence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/bootstrap"
	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment and built-in defaults)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(logging.String("service", "apiserver"), logging.String("version", version))
	logger.Info("starting MarketScope-Intelligence API server",
		logging.String("commit", commit),
		logging.String("addr", cfg.Server.Addr()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("infrastructure initialization failed: %w", err)
	}
	defer infra.Close()

	svc, err := bootstrap.NewService(cfg, infra, logger)
	if err != nil {
		return err
	}
	if configPath != "" {
		if err := bootstrap.NewReloader(svc, infra.Invalidator(), logger).Watch(configPath); err != nil {
			logger.Warn("config watch disabled", logging.Err(err))
		}
	}

	gin.SetMode(cfg.Server.Mode)
	srv := httpserver.NewServer(cfg.Server, buildRouter(cfg, infra, svc, logger), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("http server shutdown error", logging.Err(err))
	}
	logger.Info("server stopped")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.LoadFromFile(path)
}

func buildRouter(cfg *config.Config, infra *bootstrap.Infrastructure, svc *analysis.Service, logger logging.Logger) *gin.Engine {
	checks := infra.Checks()
	checkers := make([]handlers.HealthChecker, 0, len(checks))
	for _, c := range checks {
		checkers = append(checkers, handlers.NewChecker(c.Name, c.Fn))
	}

	rc := httpserver.RouterConfig{
		MarketHandler: handlers.NewMarketHandler(svc),
		HealthHandler: handlers.NewHealthHandler(version, infra.Metrics, checkers...),
		Logger:        logger,
		Metrics:       infra.Metrics,
		Logging:       middleware.DefaultLoggingConfig(),
		MaxBodySize:   cfg.Server.MaxBodySize,
	}

	var links handlers.DownloadLinker
	if infra.Exporter != nil {
		links = infra.Exporter
	}
	rc.ReportHandler = handlers.NewReportHandler(svc, links, cfg.MinIO.PresignExpiry)

	if infra.Searcher != nil {
		rc.SearchHandler = handlers.NewSearchHandler(infra.Searcher)
	}
	if infra.Batches != nil {
		rc.ObservationHandler = handlers.NewObservationHandler(infra.Batches)
	}
	if infra.Collector != nil {
		rc.MetricsPath = infra.Collector.Handler()
	}
	if cfg.Server.RateLimit.RPS > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.Server.RateLimit.RPS
		rl.BurstSize = cfg.Server.RateLimit.Burst
		rc.RateLimit = &rl
	}
	if len(cfg.Server.CORS.AllowedOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.CORS.AllowedOrigins
		cors.AllowWildcard = cfg.Server.CORS.AllowWildcard
		rc.CORS = &cors
	}
	return httpserver.NewRouter(rc)
}

//Personal.AI order the ending
