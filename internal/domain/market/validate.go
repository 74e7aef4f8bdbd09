package market

import (
	"fmt"
	"math"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// Validate rejects structurally impossible metrics supplied from outside the
// analyzer, such as a negative business count or a negative market size.
func (m Metrics) Validate() error {
	if m.BusinessCount < 0 {
		return errors.New(errors.ErrCodeNegativeCount, "business_count must not be negative").
			WithDetail(fmt.Sprintf("business_count=%d", m.BusinessCount))
	}
	monetary := map[string]float64{
		"tam":                      m.TAM,
		"sam":                      m.SAM,
		"som":                      m.SOM,
		"avg_revenue_per_business": m.AvgRevenuePerBusiness,
	}
	for name, v := range monetary {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeNegativeMetric, "market metric must be finite and non-negative").
				WithDetail(fmt.Sprintf("%s=%v", name, v))
		}
	}
	if m.HHIScore < 0 || m.HHIScore > 1 || math.IsNaN(m.HHIScore) {
		return errors.New(errors.ErrCodeNegativeMetric, "hhi_score must be within [0,1]").
			WithDetail(fmt.Sprintf("hhi_score=%v", m.HHIScore))
	}
	return nil
}

// ParseFragmentationLevel returns the level for s, or Unknown.
func ParseFragmentationLevel(s string) FragmentationLevel {
	switch FragmentationLevel(s) {
	case HighlyFragmented, ModeratelyFragmented, Consolidated:
		return FragmentationLevel(s)
	default:
		return Unknown
	}
}

//Personal.AI order the ending
