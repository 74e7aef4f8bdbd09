// Package business defines the raw and canonical business models and the
// normalizer that folds multi-source observations into one record per
// real-world business.
package business

import "math"

// RawObservation is one sighting of a business from one source.
//
// Every numeric field is optional: nil means unknown and is never read as 0.
type RawObservation struct {
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

	// Confidence is the source type's trust in its own numeric estimates,
	// in [0,1].  When any observation in a group carries one, numeric fields
	// are taken from the most confident observation.
	Confidence *float64 `json:"confidence,omitempty"`

	// Provenance lists earlier sources when an already merged record is fed
	// back in as an observation.
	Provenance []string `json:"provenance,omitempty"`

	// Support carries the per-field corroboration of an already merged record
	// fed back in as an observation.  Nil means the observation stands for one
	// source.
	Support *Support `json:"support,omitempty"`
}

// Support is the number of observations behind each field of a merged record.
type Support struct {
	EstimatedRevenue int            `json:"estimated_revenue,omitempty"`
	EmployeeCount    int            `json:"employee_count,omitempty"`
	YearsInBusiness  int            `json:"years_in_business,omitempty"`
	Phone            ContactSupport `json:"phone"`
	Email            ContactSupport `json:"email"`
	Website          ContactSupport `json:"website"`
}

// ContactSupport counts the observations that supplied a contact field and
// how many of them agreed with the chosen value.
type ContactSupport struct {
	Sources  int `json:"sources,omitempty"`
	Agreeing int `json:"agreeing,omitempty"`
}

// Identity is the stable identity of a canonical record.
type Identity struct {
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// ContactField is a best-known contact value.  Confidence is the share of the
// Sources observations with a non-empty value that agree with Value.
type ContactField struct {
	Value      string  `json:"value,omitempty"`
	Confidence float64 `json:"confidence"`
	Sources    int     `json:"sources"`
}

// Contact groups the best-known contact channels.
type Contact struct {
	Phone   ContactField `json:"phone"`
	Email   ContactField `json:"email"`
	Website ContactField `json:"website"`
}

// Estimate is a best-available numeric value plus the number of observations
// that supplied the field.
type Estimate[T int | float64] struct {
	Value   *T  `json:"value,omitempty"`
	Sources int `json:"sources"`
}

// Known reports whether the estimate has a value.
func (e Estimate[T]) Known() bool { return e.Value != nil }

// Financials groups the numeric business-size estimates.
type Financials struct {
	EstimatedRevenue Estimate[float64] `json:"estimated_revenue"`
	EmployeeCount    Estimate[int]     `json:"employee_count"`
	YearsInBusiness  Estimate[int]     `json:"years_in_business"`
}

// Reputation carries the review signal, both values from the same source.
type Reputation struct {
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
}

// Derived holds values filled in by the scoring stage.
type Derived struct {
	SuccessionRiskScore float64 `json:"succession_risk_score"`
	LeadScore           float64 `json:"lead_score"`
	MarketSharePercent  float64 `json:"market_share_percent"`
}

// BusinessRecord is the canonical post-merge view of one business.
type BusinessRecord struct {
	ID              string     `json:"id"`
	Identity        Identity   `json:"identity"`
	Contact         Contact    `json:"contact"`
	Financials      Financials `json:"financials"`
	OwnerAge        *int       `json:"owner_age,omitempty"`
	WebsiteActivity *float64   `json:"website_activity,omitempty"`
	Reputation      Reputation `json:"reputation"`
	Provenance      []string   `json:"provenance"`
	Derived         Derived    `json:"derived"`
}

// Revenue returns the estimated revenue and whether it is known.
func (r *BusinessRecord) Revenue() (float64, bool) {
	if r.Financials.EstimatedRevenue.Value == nil {
		return 0, false
	}
	return *r.Financials.EstimatedRevenue.Value, true
}

// ToObservation converts a canonical record back into a single observation so
// that already merged output can be fed through Merge again.
func ToObservation(r BusinessRecord) RawObservation {
	obs := RawObservation{
		Name:             r.Identity.Name,
		Address:          r.Identity.Address,
		Phone:            r.Contact.Phone.Value,
		Email:            r.Contact.Email.Value,
		Website:          r.Contact.Website.Value,
		RevenueEstimate:  cloneFloat(r.Financials.EstimatedRevenue.Value),
		EmployeeCount:    cloneInt(r.Financials.EmployeeCount.Value),
		YearsInBusiness:  cloneInt(r.Financials.YearsInBusiness.Value),
		Rating:           cloneFloat(r.Reputation.Rating),
		ReviewCount:      cloneInt(r.Reputation.ReviewCount),
		OwnerAgeEstimate: cloneInt(r.OwnerAge),
		WebsiteActivity:  cloneFloat(r.WebsiteActivity),
		Provenance:       append([]string(nil), r.Provenance...),
		Support: &Support{
			EstimatedRevenue: r.Financials.EstimatedRevenue.Sources,
			EmployeeCount:    r.Financials.EmployeeCount.Sources,
			YearsInBusiness:  r.Financials.YearsInBusiness.Sources,
			Phone:            contactSupport(r.Contact.Phone),
			Email:            contactSupport(r.Contact.Email),
			Website:          contactSupport(r.Contact.Website),
		},
	}
	if len(r.Provenance) > 0 {
		obs.SourceID = r.Provenance[0]
	}
	return obs
}

func contactSupport(f ContactField) ContactSupport {
	if f.Value == "" {
		return ContactSupport{}
	}
	n := max(f.Sources, 1)
	agreeing := int(math.Round(f.Confidence * float64(n)))
	return ContactSupport{Sources: n, Agreeing: min(max(agreeing, 1), n)}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

//Personal.AI order the ending
