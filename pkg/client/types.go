package client

import "time"

// Observation is one raw sighting of a business from one source.
type Observation struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Website  string `json:"website,omitempty"`

	RevenueEstimate  *float64 `json:"revenue_estimate,omitempty"`
	EmployeeCount    *int     `json:"employee_count,omitempty"`
	YearsInBusiness  *int     `json:"years_in_business,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	ReviewCount      *int     `json:"review_count,omitempty"`
	OwnerAgeEstimate *int     `json:"owner_age_estimate,omitempty"`
	WebsiteActivity  *float64 `json:"website_activity,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
}

// Float returns a pointer to v for the optional numeric fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v for the optional numeric fields.
func Int(v int) *int { return &v }

// MarketRequest asks for one (location, industry) cohort to be analysed.
type MarketRequest struct {
	Location           string        `json:"location"`
	Industry           string        `json:"industry,omitempty"`
	Region             string        `json:"region,omitempty"`
	AvgRevenueOverride *float64      `json:"avg_revenue_override,omitempty"`
	Observations       []Observation `json:"observations"`
}

// Metrics are the market-level figures of one cohort.
type Metrics struct {
	TAM                   float64 `json:"tam"`
	SAM                   float64 `json:"sam"`
	SOM                   float64 `json:"som"`
	BusinessCount         int     `json:"business_count"`
	HHIScore              float64 `json:"hhi_score"`
	FragmentationLevel    string  `json:"fragmentation_level"`
	AvgRevenuePerBusiness float64 `json:"avg_revenue_per_business"`
	RollUpPotential       float64 `json:"roll_up_potential"`
	AdjustedAvgRevenue    float64 `json:"adjusted_avg_revenue"`
	TotalKnownRevenue     float64 `json:"total_known_revenue"`
	KnownRevenueCount     int     `json:"known_revenue_count"`
}

// Fragmentation levels.
const (
	HighlyFragmented     = "highly_fragmented"
	ModeratelyFragmented = "moderately_fragmented"
	Consolidated         = "consolidated"
	Unknown              = "unknown"
)

// Business is one canonical business with its scores.
type Business struct {
	ID       string `json:"id"`
	Identity struct {
		Name        string `json:"name"`
		Address     string `json:"address,omitempty"`
		Fingerprint string `json:"fingerprint"`
	} `json:"identity"`
	Financials struct {
		EstimatedRevenue struct {
			Value   *float64 `json:"value,omitempty"`
			Sources int      `json:"sources"`
		} `json:"estimated_revenue"`
	} `json:"financials"`
	Provenance []string `json:"provenance"`
	Derived    struct {
		SuccessionRiskScore float64 `json:"succession_risk_score"`
		LeadScore           float64 `json:"lead_score"`
		MarketSharePercent  float64 `json:"market_share_percent"`
	} `json:"derived"`
	RiskFactors map[string]float64 `json:"risk_factors"`
	LeadFactors map[string]float64 `json:"lead_factors"`
}

// MergeSummary counts what happened to a batch of observations.
type MergeSummary struct {
	Input      int `json:"input"`
	Accepted   int `json:"accepted"`
	Skipped    int `json:"skipped"`
	Degraded   int `json:"degraded"`
	Records    int `json:"records"`
	Duplicates int `json:"duplicates"`
}

// Skip is one rejected observation.
type Skip struct {
	Index    int    `json:"index"`
	SourceID string `json:"source_id,omitempty"`
	Reason   string `json:"reason"`
	Code     string `json:"code"`
}

// Report is an analysed cohort.
type Report struct {
	ID                string       `json:"id"`
	CreatedAt         time.Time    `json:"created_at"`
	Location          string       `json:"location"`
	Industry          string       `json:"industry"`
	Region            string       `json:"region"`
	ObservationDigest string       `json:"observation_digest"`
	Metrics           Metrics      `json:"metrics"`
	Businesses        []Business   `json:"businesses"`
	Merge             MergeSummary `json:"merge"`
	Skipped           []Skip       `json:"skipped,omitempty"`
	ExportKey         string       `json:"export_key,omitempty"`
}

// ReportSummary is the list view of a report.
type ReportSummary struct {
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	Location           string    `json:"location"`
	Industry           string    `json:"industry"`
	Region             string    `json:"region"`
	BusinessCount      int       `json:"business_count"`
	TAM                float64   `json:"tam"`
	HHIScore           float64   `json:"hhi_score"`
	FragmentationLevel string    `json:"fragmentation_level"`
}

// ReportList is one page of summaries.
type ReportList struct {
	Reports []ReportSummary `json:"reports"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
}

// DownloadLink is a time-limited URL to an exported report document.
type DownloadLink struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Opportunity is one ranked market.
type Opportunity struct {
	Rank                     int     `json:"rank"`
	Location                 string  `json:"location"`
	Industry                 string  `json:"industry"`
	Metrics                  Metrics `json:"metrics"`
	RollUpScore              float64 `json:"roll_up_score"`
	EstimatedAcquisitionCost float64 `json:"estimated_acquisition_cost"`
	SynergyPotential         float64 `json:"synergy_potential"`
	ConsolidationTimeline    string  `json:"consolidation_timeline"`
	MonthlyAdSpend           float64 `json:"monthly_ad_spend"`
}

// CohortFailure is one market of a comparison that produced no report.
type CohortFailure struct {
	Index    int    `json:"index"`
	Location string `json:"location"`
	Industry string `json:"industry"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Comparison ranks several markets.  Reports keeps request order with nil
// for failed markets.
type Comparison struct {
	Opportunities []Opportunity   `json:"opportunities"`
	Reports       []*Report       `json:"reports"`
	Failed        []CohortFailure `json:"failed,omitempty"`
	Partial       bool            `json:"partial"`
}

// MergeResult is the output of a standalone merge.
type MergeResult struct {
	Records []Business   `json:"records"`
	Skipped []Skip       `json:"skipped"`
	Summary MergeSummary `json:"summary"`
}

// Benchmark is one industry's baseline figures.
type Benchmark struct {
	IndustryKey  string  `json:"industry_key"`
	AvgRevenue   float64 `json:"avg_revenue"`
	AvgEmployees int     `json:"avg_employees"`
	GrowthRate   float64 `json:"growth_rate"`
	AvgCPC       float64 `json:"avg_cpc"`
}

// RegionMultiplier is one region's cost-of-living adjustment.
type RegionMultiplier struct {
	RegionCode string  `json:"region_code"`
	Multiplier float64 `json:"multiplier"`
}

// BenchmarkTable lists every industry and region the server knows.
type BenchmarkTable struct {
	DefaultIndustry string             `json:"default_industry"`
	Industries      []Benchmark        `json:"industries"`
	Regions         []RegionMultiplier `json:"regions"`
}

// BatchAccepted acknowledges an asynchronously queued batch.
type BatchAccepted struct {
	EventID string `json:"event_id"`
	Cohort  string `json:"cohort"`
}

// SearchQuery filters indexed businesses.
type SearchQuery struct {
	Text         string
	Industry     string
	Location     string
	MinLeadScore float64
	Offset       int
	Limit        int
}

// BusinessHit is one search result.
type BusinessHit struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Document struct {
		ReportID           string    `json:"report_id"`
		RecordID           string    `json:"record_id"`
		Name               string    `json:"name"`
		Address            string    `json:"address,omitempty"`
		Location           string    `json:"location"`
		Industry           string    `json:"industry"`
		Region             string    `json:"region"`
		Sources            []string  `json:"sources"`
		Revenue            *float64  `json:"revenue,omitempty"`
		SuccessionRisk     float64   `json:"succession_risk"`
		LeadScore          float64   `json:"lead_score"`
		MarketShare        float64   `json:"market_share"`
		FragmentationLevel string    `json:"fragmentation_level"`
		ReportCreatedAt    time.Time `json:"report_created_at"`
	} `json:"document"`
}

// SearchResult is one page of hits, best leads first.
type SearchResult struct {
	Total int64         `json:"total"`
	Hits  []BusinessHit `json:"hits"`
}

//Personal.AI order the ending
