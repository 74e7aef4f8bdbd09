package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  host: "127.0.0.1"
  port: 8088
  mode: "test"
  rate_limit:
    rps: 50
    burst: 100
  cors:
    allowed_origins: ["https://dash.example.com"]
log:
  level: "debug"
  format: "console"
analysis:
  max_parallel_cohorts: 8
  cache_ttl: 5m
benchmarks:
  industries:
    hvac:
      avg_revenue: 900000
      avg_employees: 9
      growth_rate: 0.05
      avg_cpc: 12
  regions:
    ca: 1.5
database:
  enabled: true
  host: "db"
  user: "marketscope"
  password: "secret"
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(WithConfigPath(createTempConfigFile(t, validConfigYAML)))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8088", cfg.Server.Addr())
	assert.Equal(t, 50.0, cfg.Server.RateLimit.RPS)
	assert.Equal(t, []string{"https://dash.example.com"}, cfg.Server.CORS.AllowedOrigins)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Analysis.MaxParallelCohorts)
	assert.Equal(t, 5*time.Minute, cfg.Analysis.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultReportTopic, cfg.Kafka.ReportTopic)

	reg, err := cfg.BuildRegistry()
	require.NoError(t, err)
	assert.Equal(t, 900000.0, reg.Benchmark("hvac").AvgRevenue)
	assert.Equal(t, 1.5, reg.Multiplier("CA"))
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	_, err := Load(WithConfigPath(createTempConfigFile(t, "server: [")))
	assert.ErrorIs(t, err, ErrConfigParseError)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	_, err := Load(WithConfigPath(createTempConfigFile(t, "server:\n  mode: \"production\"\n")))
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("MARKETSCOPE_SERVER_PORT", "9999")
	t.Setenv("MARKETSCOPE_DATABASE_HOST", "db-host")

	cfg, err := Load(WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db-host", cfg.Database.Host)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("MARKETSCOPE_REDIS_ENABLED", "true")
	t.Setenv("MARKETSCOPE_REDIS_ADDR", "cache:6380")
	t.Setenv("MARKETSCOPE_ANALYSIS_TIMEOUT", "3s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 3*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadFromEnv_PartialWeightsRejected(t *testing.T) {
	t.Setenv("MARKETSCOPE_SCORING_LEAD_REVENUE", "0.9")

	_, err := LoadFromEnv()
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestLoad_WithSearchPaths(t *testing.T) {
	dir := filepath.Dir(createTempConfigFile(t, validConfigYAML))

	cfg, err := Load(WithSearchPaths(t.TempDir(), dir))
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Server.Port)
}

func TestLoad_WithOverrides(t *testing.T) {
	cfg, err := Load(
		WithConfigPath(createTempConfigFile(t, validConfigYAML)),
		WithOverrides(map[string]interface{}{"server.port": 7777}),
	)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestLoadFromFile_Convenience(t *testing.T) {
	cfg, err := LoadFromFile(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestMustLoad(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() { MustLoad(WithConfigPath(path)) })
	assert.Panics(t, func() { MustLoad(WithConfigPath(filepath.Join(t.TempDir(), "nope.yaml"))) })
}

func TestConfigKeys_CoversNestedSections(t *testing.T) {
	keys := configKeys(reflect.TypeOf(Config{}), "")
	assert.Contains(t, keys, "server.rate_limit.rps")
	assert.Contains(t, keys, "scoring.lead.fragmentation")
	assert.Contains(t, keys, "analysis.cache_ttl")
	assert.Contains(t, keys, "log.output_paths")
	assert.NotContains(t, keys, "benchmarks.industries")
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	var port atomic.Int64
	require.NoError(t, Watch(path, func(c *Config) { port.Store(int64(c.Server.Port)) }, nil))

	updated := strings.Replace(validConfigYAML, "port: 8088", "port: 9191", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool { return port.Load() == 9191 }, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}, nil)
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

//Personal.AI order the ending
