// Package scoring derives per-business succession-risk and lead-quality scores
// from weighted step-function factor models.
package scoring

import (
	"fmt"
	"math"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// weightSumTolerance absorbs floating-point error when checking that weights
// sum to one.
const weightSumTolerance = 1e-6

// RiskWeights weights the four succession-risk factors.
type RiskWeights struct {
	OwnerAge        float64 `json:"owner_age" mapstructure:"owner_age"`
	YearsInBusiness float64 `json:"years_in_business" mapstructure:"years_in_business"`
	OnlinePresence  float64 `json:"online_presence" mapstructure:"online_presence"`
	WebsiteActivity float64 `json:"website_activity" mapstructure:"website_activity"`
}

// DefaultRiskWeights returns the standard succession-risk weights.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		OwnerAge:        0.40,
		YearsInBusiness: 0.20,
		OnlinePresence:  0.25,
		WebsiteActivity: 0.15,
	}
}

// Validate checks each weight is in [0,1] and that they sum to 1.
func (w RiskWeights) Validate() error {
	return validateWeights("risk", map[string]float64{
		"owner_age":         w.OwnerAge,
		"years_in_business": w.YearsInBusiness,
		"online_presence":   w.OnlinePresence,
		"website_activity":  w.WebsiteActivity,
	})
}

// LeadWeights weights the five lead-quality factors.
type LeadWeights struct {
	Revenue        float64 `json:"revenue" mapstructure:"revenue"`
	SuccessionRisk float64 `json:"succession_risk" mapstructure:"succession_risk"`
	MarketPosition float64 `json:"market_position" mapstructure:"market_position"`
	OnlinePresence float64 `json:"online_presence" mapstructure:"online_presence"`
	Fragmentation  float64 `json:"fragmentation" mapstructure:"fragmentation"`
}

// DefaultLeadWeights returns the standard lead weights.
func DefaultLeadWeights() LeadWeights {
	return LeadWeights{
		Revenue:        0.30,
		SuccessionRisk: 0.25,
		MarketPosition: 0.20,
		OnlinePresence: 0.15,
		Fragmentation:  0.10,
	}
}

// Validate checks each weight is in [0,1] and that they sum to 1.
func (w LeadWeights) Validate() error {
	return validateWeights("lead", map[string]float64{
		"revenue":         w.Revenue,
		"succession_risk": w.SuccessionRisk,
		"market_position": w.MarketPosition,
		"online_presence": w.OnlinePresence,
		"fragmentation":   w.Fragmentation,
	})
}

func validateWeights(model string, weights map[string]float64) error {
	var total float64
	for name, w := range weights {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return errors.New(errors.ErrCodeWeightsInvalid, "weight must be within [0,1]").
				WithDetail(fmt.Sprintf("%s.%s=%v", model, name, w))
		}
		total += w
	}
	if math.Abs(total-1.0) > weightSumTolerance {
		return errors.New(errors.ErrCodeWeightsInvalid, "weights must sum to 1.0").
			WithDetail(fmt.Sprintf("%s total=%.6f", model, total))
	}
	return nil
}

//Personal.AI order the ending
