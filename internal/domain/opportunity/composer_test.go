package opportunity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

func metrics(count int, hhi, tam float64) market.Metrics {
	return market.Metrics{
		BusinessCount:      count,
		HHIScore:           hhi,
		TAM:                tam,
		SAM:                tam * market.SAMFraction,
		SOM:                tam * market.SAMFraction * market.SOMFraction,
		FragmentationLevel: market.Classify(hhi),
	}
}

func TestAdSpend(t *testing.T) {
	c := NewComposer(benchmark.Defaults())

	assert.InDelta(t, 2300.0, c.AdSpend(10, "hvac"), 1e-9)
	assert.InDelta(t, 10*50*0.4*FallbackCPC, c.AdSpend(10, "underwater basket weaving"), 1e-9)
	assert.Zero(t, c.AdSpend(0, "hvac"))
	assert.Zero(t, c.AdSpend(-3, "hvac"))
}

func TestAdSpend_ZeroCPCIsNotUnknown(t *testing.T) {
	reg, err := benchmark.NewRegistry([]benchmark.Entry{
		{IndustryKey: "retail", AvgRevenue: 1, AvgCPC: 2},
		{IndustryKey: "organic", AvgRevenue: 1, AvgCPC: 0},
	}, nil, "retail")
	require.NoError(t, err)
	c := NewComposer(reg)

	assert.Zero(t, c.AdSpend(10, "organic"))
	assert.InDelta(t, 10*50*0.4*FallbackCPC, c.AdSpend(10, "plumbing"), 1e-9)
}

func TestRollUpScore(t *testing.T) {
	cases := []struct {
		name string
		m    market.Metrics
		want float64
	}{
		{"reference", metrics(10, 0.1, 11_900_000), 55},
		{"saturated", metrics(60, 0, 50_000_000), 100},
		{"consolidated small", metrics(3, 0.6, 1_000_000), 100 * (0.3*0.1 + 0.2*0.1)},
		{"unknown fragmentation", market.Metrics{BusinessCount: 15, TAM: 5_000_000, FragmentationLevel: market.Unknown}, 100 * (0.3*0.5 + 0.2*0.5)},
		{"empty", market.Metrics{FragmentationLevel: market.Unknown}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, RollUpScore(tc.m), 1e-9)
		})
	}
}

func TestSynergy(t *testing.T) {
	assert.InDelta(t, 65.0, Synergy(metrics(10, 0.1, 1)), 1e-9)
	assert.Equal(t, 100.0, Synergy(metrics(80, 0.05, 1)))
	assert.InDelta(t, 6.0, Synergy(market.Metrics{BusinessCount: 3, FragmentationLevel: market.Unknown}), 1e-9)
}

func TestTimeline(t *testing.T) {
	cases := []struct {
		hhi  float64
		want string
	}{
		{0, TimelineShort},
		{0.0999, TimelineShort},
		{0.10, TimelineMedium},
		{0.1999, TimelineMedium},
		{0.20, TimelineLong},
		{0.9, TimelineLong},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Timeline(metrics(5, tc.hhi, 1)), "hhi=%v", tc.hhi)
	}
	assert.Equal(t, TimelineLong, Timeline(market.Metrics{FragmentationLevel: market.Unknown}))
}

func TestCompose_RanksByTAMThenScoreThenLocation(t *testing.T) {
	c := NewComposer(benchmark.Defaults())

	opps, err := c.Compose([]MarketInput{
		{Location: "Dallas, TX", Industry: "hvac", Metrics: metrics(10, 0.3, 5_000_000)},
		{Location: "Austin, TX", Industry: "hvac", Metrics: metrics(10, 0.1, 11_900_000)},
		{Location: "Boise, ID", Industry: "hvac", Metrics: metrics(10, 0.05, 5_000_000)},
		{Location: "Albany, NY", Industry: "hvac", Metrics: metrics(10, 0.05, 5_000_000)},
	})
	require.NoError(t, err)
	require.Len(t, opps, 4)

	got := make([]string, len(opps))
	for i, o := range opps {
		got[i] = o.Location
		assert.Equal(t, i+1, o.Rank)
	}
	assert.Equal(t, []string{"Austin, TX", "Albany, NY", "Boise, ID", "Dallas, TX"}, got)

	top := opps[0]
	assert.InDelta(t, 55.0, top.RollUpScore, 1e-9)
	assert.InDelta(t, 3_570_000.0, top.EstimatedAcquisitionCost, 1e-6)
	assert.InDelta(t, 65.0, top.SynergyPotential, 1e-9)
	assert.Equal(t, TimelineMedium, top.ConsolidationTimeline)
	assert.InDelta(t, 2300.0, top.MonthlyAdSpend, 1e-9)
}

func TestCompose_RejectsStructuralErrors(t *testing.T) {
	c := NewComposer(benchmark.Defaults())

	_, err := c.Compose([]MarketInput{
		{Location: "ok", Metrics: metrics(1, 0, 1)},
		{Location: "bad", Metrics: market.Metrics{BusinessCount: -2}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNegativeCount))
	assert.Contains(t, err.Error(), "markets[1] bad")

	_, err = c.Compose([]MarketInput{{Location: "neg", Metrics: market.Metrics{TAM: -1}}})
	assert.True(t, errors.IsCode(err, errors.ErrCodeNegativeMetric))
}

func TestCompose_Empty(t *testing.T) {
	opps, err := NewComposer(benchmark.Defaults()).Compose(nil)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

//Personal.AI order the ending
