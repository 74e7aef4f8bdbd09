// Package opportunity composes cross-market acquisition opportunities from
// per-cohort market metrics and ranks them.
package opportunity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// Ad spend model.
const (
	// ClicksPerBusiness is the monthly click volume needed per competitor.
	ClicksPerBusiness = 50.0
	// ConversionShare is the fraction of those clicks that must be bought.
	ConversionShare = 0.4
	// FallbackCPC is used when the industry has no benchmark cpc.
	FallbackCPC = 5.0
)

// Roll-up score model.
const (
	rollUpFragmentationWeight = 0.5
	rollUpCountWeight         = 0.3
	rollUpSizeWeight          = 0.2
	rollUpCountSaturation     = 30.0
	rollUpTAMSaturation       = 10_000_000.0
)

// AcquisitionCostFraction prices a market roll-up as a share of TAM.
const AcquisitionCostFraction = 0.3

// Consolidation timelines.
const (
	TimelineShort  = "6-12 months"
	TimelineMedium = "12-18 months"
	TimelineLong   = "18-24 months"
)

// MarketInput is one analysed market fed to Compose.
type MarketInput struct {
	Location string         `json:"location"`
	Industry string         `json:"industry"`
	Metrics  market.Metrics `json:"metrics"`
}

// Opportunity is a ranked acquisition target market.
type Opportunity struct {
	Rank                     int            `json:"rank"`
	Location                 string         `json:"location"`
	Industry                 string         `json:"industry"`
	Metrics                  market.Metrics `json:"metrics"`
	RollUpScore              float64        `json:"roll_up_score"`
	EstimatedAcquisitionCost float64        `json:"estimated_acquisition_cost"`
	SynergyPotential         float64        `json:"synergy_potential"`
	ConsolidationTimeline    string         `json:"consolidation_timeline"`
	MonthlyAdSpend           float64        `json:"monthly_ad_spend"`
}

// Composer builds opportunities.  Safe for concurrent use.
type Composer struct {
	registry *benchmark.Registry
}

// NewComposer returns a Composer reading cpc values from registry.
func NewComposer(registry *benchmark.Registry) *Composer {
	return &Composer{registry: registry}
}

// AdSpend returns business_count × 50 × 0.4 × cpc.  FallbackCPC applies only
// to industries missing from the registry; a listed cpc of 0 is kept.
func (c *Composer) AdSpend(businessCount int, industry string) float64 {
	cpc, ok := c.registry.CPC(industry)
	if !ok {
		cpc = FallbackCPC
	}
	return float64(max(businessCount, 0)) * ClicksPerBusiness * ConversionShare * cpc
}

// RollUpScore blends fragmentation, competitor count and market size into
// [0,100].  An unknown fragmentation level zeroes the HHI term instead of
// reading hhi_score=0 as a perfectly fragmented market; Synergy and Timeline
// treat it the same way.
func RollUpScore(m market.Metrics) float64 {
	var frag float64
	if m.FragmentationLevel != market.Unknown {
		frag = math.Max(0, 1-5*m.HHIScore)
	}
	count := math.Min(1, float64(max(m.BusinessCount, 0))/rollUpCountSaturation)
	size := math.Min(1, math.Max(0, m.TAM)/rollUpTAMSaturation)
	return clamp100(100 * (rollUpFragmentationWeight*frag + rollUpCountWeight*count + rollUpSizeWeight*size))
}

// Synergy returns min(100, 2·count + (1−hhi)·50).
func Synergy(m market.Metrics) float64 {
	var dispersion float64
	if m.FragmentationLevel != market.Unknown {
		dispersion = (1 - m.HHIScore) * 50
	}
	return clamp100(2*float64(max(m.BusinessCount, 0)) + dispersion)
}

// Timeline estimates how long a roll-up of the market would take.
func Timeline(m market.Metrics) string {
	if m.FragmentationLevel == market.Unknown {
		return TimelineLong
	}
	switch {
	case m.HHIScore < 0.10:
		return TimelineShort
	case m.HHIScore < 0.20:
		return TimelineMedium
	default:
		return TimelineLong
	}
}

// Compose validates every market and returns the opportunities ranked by
// tam desc, roll_up_score desc, location asc.  Ranks are 1-based.
func (c *Composer) Compose(markets []MarketInput) ([]Opportunity, error) {
	out := make([]Opportunity, 0, len(markets))
	for i, in := range markets {
		if err := in.Metrics.Validate(); err != nil {
			var appErr *errors.AppError
			if errors.As(err, &appErr) {
				return nil, appErr.WithDetail(fmt.Sprintf("markets[%d] %s: %s", i, in.Location, appErr.Detail))
			}
			return nil, err
		}
		out = append(out, c.compose(in))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Metrics.TAM != b.Metrics.TAM {
			return a.Metrics.TAM > b.Metrics.TAM
		}
		if a.RollUpScore != b.RollUpScore {
			return a.RollUpScore > b.RollUpScore
		}
		return strings.Compare(a.Location, b.Location) < 0
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (c *Composer) compose(in MarketInput) Opportunity {
	m := in.Metrics
	return Opportunity{
		Location:                 in.Location,
		Industry:                 in.Industry,
		Metrics:                  m,
		RollUpScore:              RollUpScore(m),
		EstimatedAcquisitionCost: m.TAM * AcquisitionCostFraction,
		SynergyPotential:         Synergy(m),
		ConsolidationTimeline:    Timeline(m),
		MonthlyAdSpend:           c.AdSpend(m.BusinessCount, in.Industry),
	}
}

func clamp100(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

//Personal.AI order the ending
