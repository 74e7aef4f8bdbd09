package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultMaxParallelCohorts, cfg.Analysis.MaxParallelCohorts)
	assert.Equal(t, "retail", cfg.Analysis.DefaultIndustry)
	assert.Equal(t, DefaultObservationTopic, cfg.Kafka.ObservationTopic)
	assert.Equal(t, DefaultDLQTopic, cfg.Kafka.DLQTopic)
	assert.Equal(t, scoring.DefaultRiskWeights(), cfg.Scoring.Risk)
	assert.Equal(t, scoring.DefaultLeadWeights(), cfg.Scoring.Lead)
	assert.False(t, cfg.Database.Enabled)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Analysis.CacheTTL = time.Minute
	cfg.Scoring.Risk = scoring.RiskWeights{OwnerAge: 1}
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Analysis.CacheTTL)
	assert.Equal(t, 1.0, cfg.Scoring.Risk.OwnerAge)
	assert.Zero(t, cfg.Scoring.Risk.YearsInBusiness, "partial weights are not topped up")
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
