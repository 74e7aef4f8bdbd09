package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
)

// Neutral factor values for unknown inputs.  They sit mid-scale so that
// missing data neither inflates nor deflates a score.
const (
	// NeutralOwnerAgeFactor is the owner-age factor used when age is unknown.
	// It equals the 55-59 bucket.
	NeutralOwnerAgeFactor = 60.0
	// NeutralYearsFactor is the years-in-business factor used when tenure is
	// unknown, midway between the 10-19 and 20-29 buckets.
	NeutralYearsFactor = 50.0
	// AbsentWebsiteActivityFactor is used when no activity signal exists.
	AbsentWebsiteActivityFactor = 50.0
)

// revenueSaturation is the revenue at which the lead revenue factor reaches 100.
const revenueSaturation = 2_000_000.0

// RiskBreakdown exposes the unweighted factor values behind a succession-risk
// score.
type RiskBreakdown struct {
	OwnerAge        float64 `json:"owner_age"`
	YearsInBusiness float64 `json:"years_in_business"`
	OnlinePresence  float64 `json:"online_presence"`
	WebsiteActivity float64 `json:"website_activity"`
	Score           float64 `json:"score"`
}

// LeadBreakdown exposes the unweighted factor values behind a lead score.
type LeadBreakdown struct {
	Revenue        float64 `json:"revenue"`
	SuccessionRisk float64 `json:"succession_risk"`
	MarketPosition float64 `json:"market_position"`
	OnlinePresence float64 `json:"online_presence"`
	Fragmentation  float64 `json:"fragmentation"`
	Score          float64 `json:"score"`
}

// ScoredBusiness is a canonical record with its derived scores filled in.
type ScoredBusiness struct {
	business.BusinessRecord
	RiskFactors RiskBreakdown `json:"risk_factors"`
	LeadFactors LeadBreakdown `json:"lead_factors"`
}

// Scorer computes succession-risk and lead scores.  Immutable after
// construction and safe for concurrent use.
type Scorer struct {
	risk    RiskWeights
	lead    LeadWeights
	version string
}

// NewScorer validates both weight sets.
func NewScorer(risk RiskWeights, lead LeadWeights) (*Scorer, error) {
	if err := risk.Validate(); err != nil {
		return nil, err
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return newScorer(risk, lead), nil
}

// NewDefaultScorer returns a Scorer with the standard weights.
func NewDefaultScorer() *Scorer {
	return newScorer(DefaultRiskWeights(), DefaultLeadWeights())
}

func newScorer(risk RiskWeights, lead LeadWeights) *Scorer {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v|%v", risk, lead)))
	return &Scorer{risk: risk, lead: lead, version: hex.EncodeToString(sum[:6])}
}

// Version identifies the weights.  Scorers with equal weights share a version.
func (s *Scorer) Version() string {
	return s.version
}

// ─────────────────────────────────────────────────────────────────────────────
// Succession risk
// ─────────────────────────────────────────────────────────────────────────────

// SuccessionRisk returns the weighted succession-risk score in [0,100].
func (s *Scorer) SuccessionRisk(rec *business.BusinessRecord) float64 {
	return s.SuccessionRiskBreakdown(rec).Score
}

// SuccessionRiskBreakdown returns the score with its factor values.
func (s *Scorer) SuccessionRiskBreakdown(rec *business.BusinessRecord) RiskBreakdown {
	b := RiskBreakdown{
		OwnerAge:        ownerAgeFactor(rec.OwnerAge),
		YearsInBusiness: yearsFactor(rec.Financials.YearsInBusiness.Value),
		OnlinePresence:  riskOnlineFactor(rec.Reputation),
		WebsiteActivity: websiteActivityFactor(rec.WebsiteActivity),
	}
	b.Score = clamp100(
		s.risk.OwnerAge*b.OwnerAge +
			s.risk.YearsInBusiness*b.YearsInBusiness +
			s.risk.OnlinePresence*b.OnlinePresence +
			s.risk.WebsiteActivity*b.WebsiteActivity,
	)
	return b
}

func ownerAgeFactor(age *int) float64 {
	if age == nil {
		return NeutralOwnerAgeFactor
	}
	switch a := *age; {
	case a >= 65:
		return 100
	case a >= 60:
		return 80
	case a >= 55:
		return 60
	case a >= 50:
		return 40
	default:
		return 20
	}
}

func yearsFactor(years *int) float64 {
	if years == nil {
		return NeutralYearsFactor
	}
	switch y := *years; {
	case y >= 30:
		return 80
	case y >= 20:
		return 60
	case y >= 10:
		return 40
	default:
		return 20
	}
}

// riskOnlineFactor checks review volume before rating: too few reviews is
// treated as elevated risk whatever the rating says.
func riskOnlineFactor(rep business.Reputation) float64 {
	reviews := 0
	if rep.ReviewCount != nil {
		reviews = *rep.ReviewCount
	}
	switch {
	case reviews < 10:
		return 70
	case rep.Rating != nil && *rep.Rating < 3.5:
		return 60
	case reviews < 50:
		return 40
	default:
		return 20
	}
}

func websiteActivityFactor(activity *float64) float64 {
	if activity == nil || math.IsNaN(*activity) {
		return AbsentWebsiteActivityFactor
	}
	switch a := *activity; {
	case a < 0.3:
		return 80
	case a < 0.6:
		return 50
	default:
		return 20
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Lead score
// ─────────────────────────────────────────────────────────────────────────────

// MarketShare returns rec's share of cohortTotal as a percentage in [0,100].
// Unknown revenue or a zero total yields 0.
func MarketShare(rec *business.BusinessRecord, cohortTotal float64) float64 {
	rev, ok := rec.Revenue()
	if !ok || cohortTotal <= 0 || math.IsNaN(cohortTotal) || math.IsInf(cohortTotal, 0) {
		return 0
	}
	return clamp100(rev / cohortTotal * 100)
}

// Lead returns the weighted lead score in [0,100].
func (s *Scorer) Lead(rec *business.BusinessRecord, successionRisk, marketShare float64, level market.FragmentationLevel) float64 {
	return s.LeadBreakdown(rec, successionRisk, marketShare, level).Score
}

// LeadBreakdown returns the lead score with its factor values.
func (s *Scorer) LeadBreakdown(rec *business.BusinessRecord, successionRisk, marketShare float64, level market.FragmentationLevel) LeadBreakdown {
	b := LeadBreakdown{
		Revenue:        revenueFactor(rec),
		SuccessionRisk: clamp100(successionRisk),
		MarketPosition: clamp100(marketShare * 10),
		OnlinePresence: leadOnlineFactor(rec.Reputation),
		Fragmentation:  fragmentationFactor(level),
	}
	b.Score = clamp100(
		s.lead.Revenue*b.Revenue +
			s.lead.SuccessionRisk*b.SuccessionRisk +
			s.lead.MarketPosition*b.MarketPosition +
			s.lead.OnlinePresence*b.OnlinePresence +
			s.lead.Fragmentation*b.Fragmentation,
	)
	return b
}

// revenueFactor saturates at revenueSaturation.
func revenueFactor(rec *business.BusinessRecord) float64 {
	rev, ok := rec.Revenue()
	if !ok {
		return 0
	}
	return clamp100(rev / revenueSaturation * 100)
}

func leadOnlineFactor(rep business.Reputation) float64 {
	reviews := 0
	if rep.ReviewCount != nil {
		reviews = *rep.ReviewCount
	}
	rating := math.Inf(-1)
	if rep.Rating != nil {
		rating = *rep.Rating
	}
	switch {
	case reviews >= 100 && rating >= 4.0:
		return 100
	case reviews >= 50 && rating >= 3.5:
		return 75
	case reviews >= 20:
		return 50
	default:
		return 25
	}
}

func fragmentationFactor(level market.FragmentationLevel) float64 {
	switch level {
	case market.HighlyFragmented:
		return 100
	case market.ModeratelyFragmented:
		return 75
	default:
		return 25
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Cohort scoring
// ─────────────────────────────────────────────────────────────────────────────

// ScoreCohort scores every record of a cohort against metrics, which must be
// the analyzer's output for that same cohort.  Input records are not
// modified; output order matches input order.
func (s *Scorer) ScoreCohort(records []business.BusinessRecord, metrics market.Metrics) []ScoredBusiness {
	out := make([]ScoredBusiness, len(records))
	for i := range records {
		rec := records[i]
		risk := s.SuccessionRiskBreakdown(&rec)
		share := MarketShare(&rec, metrics.TotalKnownRevenue)
		lead := s.LeadBreakdown(&rec, risk.Score, share, metrics.FragmentationLevel)

		rec.Derived = business.Derived{
			SuccessionRiskScore: risk.Score,
			LeadScore:           lead.Score,
			MarketSharePercent:  share,
		}
		out[i] = ScoredBusiness{BusinessRecord: rec, RiskFactors: risk, LeadFactors: lead}
	}
	return out
}

func clamp100(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

//Personal.AI order the ending
