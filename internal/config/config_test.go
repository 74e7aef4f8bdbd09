package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/config"
)

// validConfig returns a Config that passes Validate() with every adapter on.
func validConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Enabled = true
	cfg.Database.User = "marketscope"
	cfg.Database.Password = "secret"
	cfg.Redis.Enabled = true
	cfg.Kafka.Enabled = true
	cfg.MinIO.Enabled = true
	cfg.OpenSearch.Enabled = true
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
	assert.NoError(t, config.Default().Validate(), "defaults alone are valid with adapters off")
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"server port low", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"server port high", func(c *config.Config) { c.Server.Port = 65536 }, "server.port"},
		{"server mode", func(c *config.Config) { c.Server.Mode = "production" }, "server.mode"},
		{"rate limit", func(c *config.Config) { c.Server.RateLimit.RPS = -1 }, "server.rate_limit"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"parallelism", func(c *config.Config) { c.Analysis.MaxParallelCohorts = 0 }, "analysis.max_parallel_cohorts"},
		{"negative benchmark", func(c *config.Config) {
			c.Benchmarks.Industries = map[string]config.IndustryBenchmark{"hvac": {AvgRevenue: -1}}
		}, "benchmarks.industries.hvac"},
		{"negative region", func(c *config.Config) { c.Benchmarks.Regions = map[string]float64{"ca": -0.5} }, "benchmarks.regions.ca"},
		{"risk weights", func(c *config.Config) { c.Scoring.Risk.OwnerAge = 0.9 }, "scoring.risk"},
		{"lead weights", func(c *config.Config) { c.Scoring.Lead.Fragmentation = 0.5 }, "scoring.lead"},
		{"database host", func(c *config.Config) { c.Database.Host = "" }, "database.host"},
		{"database user", func(c *config.Config) { c.Database.User = "" }, "database.user"},
		{"database name", func(c *config.Config) { c.Database.DBName = "" }, "database.db_name"},
		{"redis addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"kafka brokers", func(c *config.Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"kafka group", func(c *config.Config) { c.Kafka.GroupID = "" }, "kafka.group_id"},
		{"minio bucket", func(c *config.Config) { c.MinIO.Bucket = "" }, "minio"},
		{"opensearch", func(c *config.Config) { c.OpenSearch.Addresses = nil }, "opensearch.addresses"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_DisabledAdaptersAreNotChecked(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Database.User = ""
	cfg.Kafka.Brokers = nil
	cfg.OpenSearch.Addresses = nil
	assert.NoError(t, cfg.Validate())
}

func TestConfig_BuildRegistry_MergesOverrides(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Benchmarks.Industries = map[string]config.IndustryBenchmark{
		"HVAC":       {AvgRevenue: 900000, AvgEmployees: 9, GrowthRate: 0.05, AvgCPC: 12},
		"pool_clean": {AvgRevenue: 300000, AvgEmployees: 3, AvgCPC: 4},
	}
	cfg.Benchmarks.Regions = map[string]float64{"ca": 1.5, "wa": 1.2}

	reg, err := cfg.BuildRegistry()
	require.NoError(t, err)

	assert.Equal(t, 900000.0, reg.Benchmark("hvac").AvgRevenue)
	assert.Equal(t, 300000.0, reg.Benchmark("pool clean").AvgRevenue)
	assert.Equal(t, 500000.0, reg.Benchmark("retail").AvgRevenue, "untouched built-in rows survive")
	assert.Equal(t, 1.5, reg.Multiplier("CA"))
	assert.Equal(t, 1.2, reg.Multiplier("wa"))
	assert.Equal(t, 1.35, reg.Multiplier("NY"))
}

func TestConfig_BuildRegistry_UnknownDefaultIndustry(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Analysis.DefaultIndustry = "nope"
	_, err := cfg.BuildRegistry()
	assert.Error(t, err)
}

func TestConfig_BuildScorer(t *testing.T) {
	t.Parallel()
	s, err := config.Default().BuildScorer()
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "127.0.0.1:9000", config.ServerConfig{Host: "127.0.0.1", Port: 9000}.Addr())
}

//Personal.AI order the ending
