package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

type recordOpt func(*business.BusinessRecord)

func withAge(a int) recordOpt { return func(r *business.BusinessRecord) { r.OwnerAge = business.Int(a) } }
func withYears(y int) recordOpt {
	return func(r *business.BusinessRecord) { r.Financials.YearsInBusiness.Value = business.Int(y) }
}
func withReviews(rating float64, count int) recordOpt {
	return func(r *business.BusinessRecord) {
		r.Reputation.Rating = business.Float(rating)
		r.Reputation.ReviewCount = business.Int(count)
	}
}
func withActivity(a float64) recordOpt {
	return func(r *business.BusinessRecord) { r.WebsiteActivity = business.Float(a) }
}
func withRevenue(v float64) recordOpt {
	return func(r *business.BusinessRecord) { r.Financials.EstimatedRevenue.Value = business.Float(v) }
}

func record(opts ...recordOpt) *business.BusinessRecord {
	r := &business.BusinessRecord{}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ─────────────────────────────────────────────────────────────────────────────
// Weights
// ─────────────────────────────────────────────────────────────────────────────

func TestDefaultWeights_AreValid(t *testing.T) {
	assert.NoError(t, DefaultRiskWeights().Validate())
	assert.NoError(t, DefaultLeadWeights().Validate())
}

func TestNewScorer_RejectsInvalidWeights(t *testing.T) {
	bad := DefaultRiskWeights()
	bad.OwnerAge = 0.5
	_, err := NewScorer(bad, DefaultLeadWeights())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeWeightsInvalid))

	neg := DefaultLeadWeights()
	neg.Revenue = -0.1
	neg.SuccessionRisk = 0.65
	_, err = NewScorer(DefaultRiskWeights(), neg)
	assert.True(t, errors.IsCode(err, errors.ErrCodeWeightsInvalid))

	s, err := NewScorer(DefaultRiskWeights(), DefaultLeadWeights())
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestScorer_VersionTracksWeights(t *testing.T) {
	s, err := NewScorer(DefaultRiskWeights(), DefaultLeadWeights())
	require.NoError(t, err)
	assert.Equal(t, NewDefaultScorer().Version(), s.Version())
	assert.Len(t, s.Version(), 12)

	lead := DefaultLeadWeights()
	lead.Revenue, lead.Fragmentation = 0.35, 0.05
	other, err := NewScorer(DefaultRiskWeights(), lead)
	require.NoError(t, err)
	assert.NotEqual(t, s.Version(), other.Version())
}

// ─────────────────────────────────────────────────────────────────────────────
// Succession risk
// ─────────────────────────────────────────────────────────────────────────────

func TestSuccessionRisk_ReferenceExample(t *testing.T) {
	s := NewDefaultScorer()
	rec := record(withAge(70), withYears(35), withReviews(4.8, 150), withActivity(0.8))

	b := s.SuccessionRiskBreakdown(rec)

	assert.Equal(t, 100.0, b.OwnerAge)
	assert.Equal(t, 80.0, b.YearsInBusiness)
	assert.Equal(t, 20.0, b.OnlinePresence)
	assert.Equal(t, 20.0, b.WebsiteActivity)
	assert.InDelta(t, 64.0, b.Score, 1e-9)
	assert.InDelta(t, 64.0, s.SuccessionRisk(rec), 1e-9)
}

func TestOwnerAgeFactor(t *testing.T) {
	cases := []struct {
		age  *int
		want float64
	}{
		{business.Int(80), 100}, {business.Int(65), 100}, {business.Int(64), 80},
		{business.Int(60), 80}, {business.Int(55), 60}, {business.Int(50), 40},
		{business.Int(49), 20}, {business.Int(25), 20}, {nil, NeutralOwnerAgeFactor},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ownerAgeFactor(tc.age))
	}
}

func TestYearsFactor(t *testing.T) {
	cases := []struct {
		years *int
		want  float64
	}{
		{business.Int(30), 80}, {business.Int(29), 60}, {business.Int(20), 60},
		{business.Int(10), 40}, {business.Int(9), 20}, {business.Int(0), 20}, {nil, NeutralYearsFactor},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, yearsFactor(tc.years))
	}
}

func TestRiskOnlineFactor_OrderMatters(t *testing.T) {
	cases := []struct {
		name string
		rep  business.Reputation
		want float64
	}{
		{"few reviews with bad rating short-circuits", business.Reputation{Rating: business.Float(1.0), ReviewCount: business.Int(9)}, 70},
		{"unknown reviews", business.Reputation{Rating: business.Float(4.9)}, 70},
		{"low rating", business.Reputation{Rating: business.Float(3.4), ReviewCount: business.Int(200)}, 60},
		{"unknown rating mid reviews", business.Reputation{ReviewCount: business.Int(30)}, 40},
		{"mid reviews", business.Reputation{Rating: business.Float(4.0), ReviewCount: business.Int(49)}, 40},
		{"established", business.Reputation{Rating: business.Float(3.5), ReviewCount: business.Int(50)}, 20},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, riskOnlineFactor(tc.rep), tc.name)
	}
}

func TestWebsiteActivityFactor(t *testing.T) {
	assert.Equal(t, AbsentWebsiteActivityFactor, websiteActivityFactor(nil))
	assert.Equal(t, 80.0, websiteActivityFactor(business.Float(0.29)))
	assert.Equal(t, 50.0, websiteActivityFactor(business.Float(0.3)))
	assert.Equal(t, 50.0, websiteActivityFactor(business.Float(0.59)))
	assert.Equal(t, 20.0, websiteActivityFactor(business.Float(0.6)))
}

func TestSuccessionRisk_UnknownInputsAreNeutral(t *testing.T) {
	score := NewDefaultScorer().SuccessionRisk(record())
	// 60×0.40 + 50×0.20 + 70×0.25 + 50×0.15
	assert.InDelta(t, 59.0, score, 1e-9)
}

// ─────────────────────────────────────────────────────────────────────────────
// Lead score
// ─────────────────────────────────────────────────────────────────────────────

func TestMarketShare(t *testing.T) {
	assert.InDelta(t, 25.0, MarketShare(record(withRevenue(250)), 1000), 1e-9)
	assert.Zero(t, MarketShare(record(withRevenue(250)), 0))
	assert.Zero(t, MarketShare(record(), 1000))
	assert.Zero(t, MarketShare(record(withRevenue(1)), math.NaN()))
	assert.Equal(t, 100.0, MarketShare(record(withRevenue(5000)), 1000))
}

func TestRevenueFactor(t *testing.T) {
	assert.Zero(t, revenueFactor(record()))
	assert.InDelta(t, 50.0, revenueFactor(record(withRevenue(1_000_000))), 1e-9)
	assert.Equal(t, 100.0, revenueFactor(record(withRevenue(2_000_000))))
	assert.Equal(t, 100.0, revenueFactor(record(withRevenue(math.MaxFloat64))))
}

func TestLeadOnlineFactor(t *testing.T) {
	cases := []struct {
		rep  business.Reputation
		want float64
	}{
		{business.Reputation{Rating: business.Float(4.0), ReviewCount: business.Int(100)}, 100},
		{business.Reputation{Rating: business.Float(3.9), ReviewCount: business.Int(100)}, 75},
		{business.Reputation{Rating: business.Float(3.5), ReviewCount: business.Int(50)}, 75},
		{business.Reputation{Rating: business.Float(3.4), ReviewCount: business.Int(50)}, 50},
		{business.Reputation{ReviewCount: business.Int(150)}, 50},
		{business.Reputation{Rating: business.Float(5), ReviewCount: business.Int(19)}, 25},
		{business.Reputation{}, 25},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, leadOnlineFactor(tc.rep))
	}
}

func TestFragmentationFactor(t *testing.T) {
	assert.Equal(t, 100.0, fragmentationFactor(market.HighlyFragmented))
	assert.Equal(t, 75.0, fragmentationFactor(market.ModeratelyFragmented))
	assert.Equal(t, 25.0, fragmentationFactor(market.Consolidated))
	assert.Equal(t, 25.0, fragmentationFactor(market.Unknown))
}

func TestLead_WeightedSum(t *testing.T) {
	s := NewDefaultScorer()
	rec := record(withRevenue(1_000_000), withReviews(4.5, 120))

	b := s.LeadBreakdown(rec, 64, 5, market.HighlyFragmented)

	assert.InDelta(t, 50, b.Revenue, 1e-9)
	assert.InDelta(t, 64, b.SuccessionRisk, 1e-9)
	assert.InDelta(t, 50, b.MarketPosition, 1e-9)
	assert.Equal(t, 100.0, b.OnlinePresence)
	assert.Equal(t, 100.0, b.Fragmentation)
	// 50×0.30 + 64×0.25 + 50×0.20 + 100×0.15 + 100×0.10
	assert.InDelta(t, 66.0, b.Score, 1e-9)
}

func TestLead_ClampsExtremeInputs(t *testing.T) {
	s := NewDefaultScorer()
	rec := record(withRevenue(math.MaxFloat64), withReviews(5, math.MaxInt32))

	score := s.Lead(rec, 1e9, 1e9, market.HighlyFragmented)
	assert.Equal(t, 100.0, score)

	score = s.Lead(record(), math.NaN(), -50, market.Unknown)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.False(t, math.IsNaN(score))
}

// ─────────────────────────────────────────────────────────────────────────────
// Cohort
// ─────────────────────────────────────────────────────────────────────────────

func TestScoreCohort_UsesAnalyzerOutput(t *testing.T) {
	res := business.NewNormalizer().Merge([]business.RawObservation{
		{SourceID: "a", Name: "Alpha", RevenueEstimate: business.Float(1_200_000), OwnerAgeEstimate: business.Int(68)},
		{SourceID: "a", Name: "Bravo", RevenueEstimate: business.Float(800_000)},
		{SourceID: "a", Name: "Charlie"},
	})
	metrics := market.NewAnalyzer(benchmark.Defaults()).Analyze(res.Records, "hvac", "TX", nil)

	scored := NewDefaultScorer().ScoreCohort(res.Records, metrics)

	require.Len(t, scored, 3)
	assert.Equal(t, "Alpha", scored[0].Identity.Name)
	assert.InDelta(t, 60.0, scored[0].Derived.MarketSharePercent, 1e-9)
	assert.InDelta(t, 40.0, scored[1].Derived.MarketSharePercent, 1e-9)
	assert.Zero(t, scored[2].Derived.MarketSharePercent)
	assert.Equal(t, scored[0].RiskFactors.Score, scored[0].Derived.SuccessionRiskScore)
	assert.Equal(t, scored[0].LeadFactors.Score, scored[0].Derived.LeadScore)
	assert.Equal(t, 25.0, scored[0].LeadFactors.Fragmentation, "two records at 60/40 are consolidated")

	assert.Zero(t, res.Records[0].Derived.LeadScore, "input records are not mutated")
}

//Personal.AI order the ending
