// Package config defines all configuration structures for MarketScope-Intelligence.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	Mode            string          `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64           `mapstructure:"max_body_size"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	CORS            CORSConfig      `mapstructure:"cors"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORSConfig lists the browser origins allowed to call the API.  Empty
// disables CORS.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowWildcard  bool     `mapstructure:"allow_wildcard"`
}

// RateLimitConfig configures the token-bucket middleware.  RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// AnalysisConfig tunes the analysis service.
type AnalysisConfig struct {
	MaxParallelCohorts int           `mapstructure:"max_parallel_cohorts"`
	DefaultIndustry    string        `mapstructure:"default_industry"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// IndustryBenchmark overrides or adds one industry row.
type IndustryBenchmark struct {
	AvgRevenue   float64 `mapstructure:"avg_revenue"`
	AvgEmployees int     `mapstructure:"avg_employees"`
	GrowthRate   float64 `mapstructure:"growth_rate"`
	AvgCPC       float64 `mapstructure:"avg_cpc"`
}

// BenchmarksConfig overrides the built-in benchmark and geo tables.  Keys are
// normalized by the registry, so "HVAC" and "hvac" address the same row.
type BenchmarksConfig struct {
	Industries map[string]IndustryBenchmark `mapstructure:"industries"`
	Regions    map[string]float64           `mapstructure:"regions"`
}

// ScoringConfig overrides the scoring weights.  A zero-valued section means
// "use the standard weights".
type ScoringConfig struct {
	Risk scoring.RiskWeights `mapstructure:"risk"`
	Lead scoring.LeadWeights `mapstructure:"lead"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters.
type KafkaConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Brokers          []string      `mapstructure:"brokers"`
	GroupID          string        `mapstructure:"group_id"`
	ObservationTopic string        `mapstructure:"observation_topic"`
	ReportTopic      string        `mapstructure:"report_topic"`
	DLQTopic         string        `mapstructure:"dlq_topic"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	BatchTimeout     time.Duration `mapstructure:"batch_timeout"`
}

// MinIOConfig holds object-storage parameters for report export.
type MinIOConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	RetentionDays int           `mapstructure:"retention_days"` // 0 keeps exports forever
}

// OpenSearchConfig holds search-cluster parameters for the business index.
type OpenSearchConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	Index              string   `mapstructure:"index"`
	BulkBatchSize      int      `mapstructure:"bulk_batch_size"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration for every binary.
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Log        logging.LogConfig `mapstructure:"log"`
	Analysis   AnalysisConfig    `mapstructure:"analysis"`
	Benchmarks BenchmarksConfig  `mapstructure:"benchmarks"`
	Scoring    ScoringConfig     `mapstructure:"scoring"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Kafka      KafkaConfig       `mapstructure:"kafka"`
	MinIO      MinIOConfig       `mapstructure:"minio"`
	OpenSearch OpenSearchConfig  `mapstructure:"opensearch"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
}

// BuildRegistry merges the configured overrides onto the built-in tables.
func (c *Config) BuildRegistry() (*benchmark.Registry, error) {
	entries := make([]benchmark.Entry, 0, len(c.Benchmarks.Industries))
	for _, key := range sortedKeys(c.Benchmarks.Industries) {
		b := c.Benchmarks.Industries[key]
		entries = append(entries, benchmark.Entry{
			IndustryKey:  key,
			AvgRevenue:   b.AvgRevenue,
			AvgEmployees: b.AvgEmployees,
			GrowthRate:   b.GrowthRate,
			AvgCPC:       b.AvgCPC,
		})
	}
	multipliers := make([]benchmark.GeoMultiplier, 0, len(c.Benchmarks.Regions))
	for _, code := range sortedKeys(c.Benchmarks.Regions) {
		m := c.Benchmarks.Regions[code]
		multipliers = append(multipliers, benchmark.GeoMultiplier{RegionCode: code, Multiplier: m})
	}
	return benchmark.WithOverrides(entries, multipliers, c.Analysis.DefaultIndustry)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildScorer returns a scorer with the configured weights.
func (c *Config) BuildScorer() (*scoring.Scorer, error) {
	return scoring.NewScorer(c.Scoring.Risk, c.Scoring.Lead)
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// Sections for disabled adapters are not checked.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimit.RPS < 0 || c.Server.RateLimit.Burst < 0 {
		return fmt.Errorf("config: server.rate_limit must not be negative")
	}

	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Analysis.MaxParallelCohorts < 1 {
		return fmt.Errorf("config: analysis.max_parallel_cohorts must be ≥ 1, got %d", c.Analysis.MaxParallelCohorts)
	}
	if c.Analysis.CacheTTL < 0 {
		return fmt.Errorf("config: analysis.cache_ttl must not be negative")
	}
	for key, b := range c.Benchmarks.Industries {
		if b.AvgRevenue < 0 || b.AvgCPC < 0 || b.AvgEmployees < 0 || math.IsNaN(b.AvgRevenue) {
			return fmt.Errorf("config: benchmarks.industries.%s has negative values", key)
		}
	}
	for code, m := range c.Benchmarks.Regions {
		if m < 0 || math.IsNaN(m) {
			return fmt.Errorf("config: benchmarks.regions.%s multiplier must be ≥ 0, got %v", code, m)
		}
	}
	if err := c.Scoring.Risk.Validate(); err != nil {
		return fmt.Errorf("config: scoring.risk: %w", err)
	}
	if err := c.Scoring.Lead.Validate(); err != nil {
		return fmt.Errorf("config: scoring.lead: %w", err)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
	}
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
	}
	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required")
	}
	if c.OpenSearch.Enabled && len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}
	return nil
}

//Personal.AI order the ending
