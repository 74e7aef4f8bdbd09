// Package market computes market-size and concentration metrics for a cohort
// of canonical business records sharing one (location, industry) key.
package market

import (
	"math"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
)

// Market sizing fractions.
const (
	// SAMFraction is the share of TAM a realistic entrant can address.
	SAMFraction = 0.25
	// SOMFraction is the share of SAM a single new entrant can capture.
	SOMFraction = 0.10
)

// Fragmentation thresholds on the [0,1] HHI scale.
const (
	HighlyFragmentedBelow     = 0.15
	ModeratelyFragmentedBelow = 0.25
)

// FragmentationLevel is the qualitative label derived from the HHI.
type FragmentationLevel string

const (
	HighlyFragmented     FragmentationLevel = "highly_fragmented"
	ModeratelyFragmented FragmentationLevel = "moderately_fragmented"
	Consolidated         FragmentationLevel = "consolidated"
	Unknown              FragmentationLevel = "unknown"
)

// Metrics is the flat, immutable result of analysing one cohort.
type Metrics struct {
	TAM                   float64            `json:"tam"`
	SAM                   float64            `json:"sam"`
	SOM                   float64            `json:"som"`
	BusinessCount         int                `json:"business_count"`
	HHIScore              float64            `json:"hhi_score"`
	FragmentationLevel    FragmentationLevel `json:"fragmentation_level"`
	AvgRevenuePerBusiness float64            `json:"avg_revenue_per_business"`
	RollUpPotential       float64            `json:"roll_up_potential"`

	AdjustedAvgRevenue float64 `json:"adjusted_avg_revenue"`
	TotalKnownRevenue  float64 `json:"total_known_revenue"`
	KnownRevenueCount  int     `json:"known_revenue_count"`
}

// Analyzer prices cohorts against a benchmark registry.
type Analyzer struct {
	registry *benchmark.Registry
}

// NewAnalyzer returns an Analyzer bound to registry.
func NewAnalyzer(registry *benchmark.Registry) *Analyzer {
	return &Analyzer{registry: registry}
}

// Analyze computes Metrics for cohort.
//
// adjusted_avg_revenue = (override or benchmark avg_revenue) × region multiplier
// tam = business_count × adjusted_avg_revenue, sam = 0.25·tam, som = 0.10·sam
//
// A nil or non-positive override uses the benchmark.  An empty cohort yields
// zeroed metrics with FragmentationLevel Unknown; it is not an error.
func (a *Analyzer) Analyze(cohort []business.BusinessRecord, industry, region string, avgRevenueOverride *float64) Metrics {
	m := Metrics{
		BusinessCount:      len(cohort),
		FragmentationLevel: Unknown,
	}
	if len(cohort) == 0 {
		return m
	}

	base := a.registry.Benchmark(industry).AvgRevenue
	if avgRevenueOverride != nil && finite(*avgRevenueOverride) && *avgRevenueOverride > 0 {
		base = *avgRevenueOverride
	}
	m.AdjustedAvgRevenue = nonNegative(base * a.registry.Multiplier(region))

	m.TAM = nonNegative(float64(m.BusinessCount) * m.AdjustedAvgRevenue)
	m.SAM = m.TAM * SAMFraction
	m.SOM = m.SAM * SOMFraction
	m.AvgRevenuePerBusiness = m.TAM / float64(m.BusinessCount)

	revenues := KnownRevenues(cohort)
	m.KnownRevenueCount = len(revenues)
	m.TotalKnownRevenue = nonNegative(sum(revenues))

	hhi, ok := HHI(revenues)
	if !ok {
		return m
	}
	m.HHIScore = hhi
	m.FragmentationLevel = Classify(hhi)
	m.RollUpPotential = RollUpPotential(hhi)
	return m
}

// KnownRevenues returns the finite, non-negative revenue estimates of cohort
// in cohort order.
func KnownRevenues(cohort []business.BusinessRecord) []float64 {
	out := make([]float64, 0, len(cohort))
	for i := range cohort {
		if rev, ok := cohort[i].Revenue(); ok && finite(rev) && rev >= 0 {
			out = append(out, rev)
		}
	}
	return out
}

// HHI returns Σ(rev_i/total)² on the [0,1] scale.  The boolean is false when
// revenues is empty or sums to zero, in which case the index is 0.
func HHI(revenues []float64) (float64, bool) {
	// Scaling by the largest value keeps the total finite for extreme inputs.
	var peak float64
	for _, r := range revenues {
		peak = math.Max(peak, r)
	}
	if len(revenues) == 0 || peak <= 0 || !finite(peak) {
		return 0, false
	}
	var total float64
	for _, r := range revenues {
		total += r / peak
	}
	var hhi float64
	for _, r := range revenues {
		share := (r / peak) / total
		hhi += share * share
	}
	return clamp(hhi, 0, 1), true
}

// Classify maps an HHI to its fragmentation level.  Lower bounds are
// inclusive: 0.15 is moderately fragmented and 0.25 is consolidated.
func Classify(hhi float64) FragmentationLevel {
	switch {
	case hhi < HighlyFragmentedBelow:
		return HighlyFragmented
	case hhi < ModeratelyFragmentedBelow:
		return ModeratelyFragmented
	default:
		return Consolidated
	}
}

// RollUpPotential scores consolidation attractiveness on [0,100].  The
// penalty is steep inside the highly fragmented band and gentler above it.
func RollUpPotential(hhi float64) float64 {
	if hhi < HighlyFragmentedBelow {
		return clamp(100-hhi*500, 0, 100)
	}
	return clamp(math.Max(0, 100-hhi*200), 0, 100)
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(v float64) float64 {
	if !finite(v) || v < 0 {
		if math.IsInf(v, 1) {
			return math.MaxFloat64
		}
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

//Personal.AI order the ending
