package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

func TestOpen_NothingEnabled(t *testing.T) {
	cfg := config.Default()

	infra, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.Metrics)
	assert.Nil(t, infra.Reports)
	assert.Nil(t, infra.Cache)
	assert.Nil(t, infra.Invalidator())
	assert.Empty(t, infra.Checks())
	assert.Len(t, infra.ServiceOptions(), 1)

	svc, err := NewService(cfg, infra, nil)
	require.NoError(t, err)
	assert.Equal(t, benchmark.DefaultIndustry, svc.Registry().DefaultIndustry())
}

func TestOpen_MetricsAndKafka(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = true
	cfg.Kafka.Enabled = true

	// The writer dials lazily, so no broker is needed here.
	infra, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	require.NotNil(t, infra.Metrics)
	require.NotNil(t, infra.Collector)
	assert.NotNil(t, infra.Producer)
	assert.NotNil(t, infra.Events)
	assert.NotNil(t, infra.Batches)
	assert.Len(t, infra.ServiceOptions(), 2)

	infra.Close()
	infra.Close()
}

func TestOpen_InvalidKafkaConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = nil

	infra, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, infra)
}

func TestKafkaConfigMapping(t *testing.T) {
	kc := config.KafkaConfig{
		Brokers:          []string{"b1:9092", "b2:9092"},
		GroupID:          "g",
		ObservationTopic: "obs",
		ReportTopic:      "rep",
		DLQTopic:         "dlq",
		MaxRetries:       5,
		RetryBackoff:     time.Second,
		BatchTimeout:     20 * time.Millisecond,
	}

	p := ProducerConfig(kc)
	assert.Equal(t, kc.Brokers, p.Brokers)
	assert.Equal(t, "all", p.Acks)
	assert.Equal(t, 5, p.MaxRetries)
	assert.Equal(t, 20*time.Millisecond, p.BatchTimeout)

	c := ConsumerConfig(kc)
	assert.Equal(t, "g", c.GroupID)
	assert.Equal(t, []string{"obs"}, c.Topics)
	assert.Equal(t, "earliest", c.AutoOffsetReset)
	assert.Equal(t, 5, c.Retry.MaxRetries)
	assert.Equal(t, time.Second, c.Retry.RetryBackoff)
	assert.Equal(t, "dlq", c.Retry.DeadLetterTopic)
}

// ─────────────────────────────────────────────────────────────────────────────
// Reloader
// ─────────────────────────────────────────────────────────────────────────────

type fakeReloadable struct {
	registry *benchmark.Registry
	scorer   *scoring.Scorer
}

func (f *fakeReloadable) ReloadRegistry(r *benchmark.Registry) error {
	f.registry = r
	return nil
}

func (f *fakeReloadable) ReloadScorer(s *scoring.Scorer) error {
	f.scorer = s
	return nil
}

type fakeInvalidator struct {
	calls   int
	dropped int64
	err     error
}

func (f *fakeInvalidator) Invalidate(context.Context) (int64, error) {
	f.calls++
	return f.dropped, f.err
}

func TestReloader_Apply(t *testing.T) {
	cfg := config.Default()
	cfg.Benchmarks.Industries = map[string]config.IndustryBenchmark{
		"pool_service": {AvgRevenue: 400000, AvgEmployees: 4, GrowthRate: 0.03, AvgCPC: 6},
	}

	svc := &fakeReloadable{}
	inv := &fakeInvalidator{dropped: 3}
	require.NoError(t, NewReloader(svc, inv, nil).Apply(cfg))

	require.NotNil(t, svc.registry)
	require.NotNil(t, svc.scorer)
	e, ok := svc.registry.Lookup("pool_service")
	require.True(t, ok)
	assert.Equal(t, 400000.0, e.AvgRevenue)
	assert.Equal(t, 1, inv.calls)
}

func TestReloader_RejectsInvalidWeights(t *testing.T) {
	cfg := config.Default()
	cfg.Scoring.Risk.OwnerAge = 0.9

	svc := &fakeReloadable{}
	inv := &fakeInvalidator{}
	err := NewReloader(svc, inv, nil).Apply(cfg)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWeightsInvalid, errors.GetCode(err))
	assert.Nil(t, svc.registry)
	assert.Nil(t, svc.scorer)
	assert.Zero(t, inv.calls)
}

func TestReloader_CacheFailureIsNotFatal(t *testing.T) {
	svc := &fakeReloadable{}
	inv := &fakeInvalidator{err: errors.New(errors.ErrCodeCacheError, "down")}
	require.NoError(t, NewReloader(svc, inv, nil).Apply(config.Default()))
	assert.NotNil(t, svc.registry)
}

func TestReloader_NilCache(t *testing.T) {
	svc := &fakeReloadable{}
	require.NoError(t, NewReloader(svc, nil, nil).Apply(config.Default()))
	assert.NotNil(t, svc.scorer)
}

//Personal.AI order the ending
