package business

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// recordNamespace seeds the name-based UUIDs of canonical records so that a
// fingerprint always maps to the same record id.
var recordNamespace = uuid.MustParse("6f1c7a8e-3f0b-5a57-9a43-0d6e2c1b4d10")

// Skip reasons.
const (
	SkipReasonMissingName = "missing name"
)

// Skip records an observation dropped from a batch.
type Skip struct {
	Index    int              `json:"index"`
	SourceID string           `json:"source_id,omitempty"`
	Reason   string           `json:"reason"`
	Code     errors.ErrorCode `json:"code"`
}

// MergeSummary counts what happened to a batch.
type MergeSummary struct {
	Input      int `json:"input"`
	Accepted   int `json:"accepted"`
	Skipped    int `json:"skipped"`
	Degraded   int `json:"degraded"`
	Records    int `json:"records"`
	Duplicates int `json:"duplicates"`
}

// MergeResult is the output of Normalizer.Merge.
type MergeResult struct {
	Records []BusinessRecord `json:"records"`
	Skipped []Skip           `json:"skipped"`
	Summary MergeSummary     `json:"summary"`
}

// Normalizer folds raw observations into canonical records.  It holds no
// state and is safe for concurrent use.
type Normalizer struct{}

// NewNormalizer returns a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Merge folds observations into one BusinessRecord per fingerprint.
//
// Records come out in first-occurrence order of their fingerprints.
// Observations without a usable name are skipped and reported; out-of-range
// optional numerics are dropped to unknown and counted as degraded.
func (n *Normalizer) Merge(observations []RawObservation) MergeResult {
	result := MergeResult{
		Records: make([]BusinessRecord, 0, len(observations)),
		Skipped: make([]Skip, 0),
	}
	result.Summary.Input = len(observations)

	index := make(map[string]int)
	var groups [][]RawObservation

	for i, raw := range observations {
		if NormalizeName(raw.Name) == "" {
			result.Skipped = append(result.Skipped, Skip{
				Index:    i,
				SourceID: raw.SourceID,
				Reason:   SkipReasonMissingName,
				Code:     errors.ErrCodeObservationInvalid,
			})
			continue
		}

		obs, degraded := sanitize(raw)
		result.Summary.Degraded += degraded
		result.Summary.Accepted++

		fp := Fingerprint(obs.Name, obs.Address)
		g, ok := index[fp]
		if !ok {
			g = len(groups)
			index[fp] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], obs)
	}

	for _, group := range groups {
		result.Records = append(result.Records, fold(group))
	}

	result.Summary.Skipped = len(result.Skipped)
	result.Summary.Records = len(result.Records)
	result.Summary.Duplicates = result.Summary.Accepted - result.Summary.Records
	return result
}

// ─────────────────────────────────────────────────────────────────────────────
// Field validation
// ─────────────────────────────────────────────────────────────────────────────

// sanitize returns a copy of obs with out-of-range optional numerics cleared,
// plus the number of fields cleared.
func sanitize(obs RawObservation) (RawObservation, int) {
	degraded := 0
	dropFloat := func(p **float64, lo, hi float64) {
		if *p == nil {
			return
		}
		v := **p
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			*p = nil
			degraded++
		}
	}
	dropInt := func(p **int) {
		if *p != nil && **p < 0 {
			*p = nil
			degraded++
		}
	}

	obs.RevenueEstimate = cloneFloat(obs.RevenueEstimate)
	obs.Rating = cloneFloat(obs.Rating)
	obs.WebsiteActivity = cloneFloat(obs.WebsiteActivity)
	obs.Confidence = cloneFloat(obs.Confidence)
	obs.EmployeeCount = cloneInt(obs.EmployeeCount)
	obs.YearsInBusiness = cloneInt(obs.YearsInBusiness)
	obs.ReviewCount = cloneInt(obs.ReviewCount)
	obs.OwnerAgeEstimate = cloneInt(obs.OwnerAgeEstimate)

	dropFloat(&obs.RevenueEstimate, 0, math.MaxFloat64)
	dropFloat(&obs.Rating, 1, 5)
	dropFloat(&obs.WebsiteActivity, 0, 1)
	dropFloat(&obs.Confidence, 0, 1)
	dropInt(&obs.EmployeeCount)
	dropInt(&obs.YearsInBusiness)
	dropInt(&obs.ReviewCount)
	dropInt(&obs.OwnerAgeEstimate)

	obs.Support = sanitizeSupport(obs.Support)

	obs.Name = strings.TrimSpace(obs.Name)
	obs.Address = strings.TrimSpace(obs.Address)
	obs.SourceID = strings.TrimSpace(obs.SourceID)
	return obs, degraded
}

// sanitizeSupport copies s, treating negative counts as unset and capping
// agreement at the source count.
func sanitizeSupport(s *Support) *Support {
	if s == nil {
		return nil
	}
	out := *s
	for _, n := range []*int{&out.EstimatedRevenue, &out.EmployeeCount, &out.YearsInBusiness} {
		*n = max(*n, 0)
	}
	for _, c := range []*ContactSupport{&out.Phone, &out.Email, &out.Website} {
		c.Sources = max(c.Sources, 0)
		c.Agreeing = min(max(c.Agreeing, 0), c.Sources)
	}
	return &out
}

// ─────────────────────────────────────────────────────────────────────────────
// Group folding
// ─────────────────────────────────────────────────────────────────────────────

func fold(group []RawObservation) BusinessRecord {
	first := group[0]
	fp := Fingerprint(first.Name, first.Address)

	rec := BusinessRecord{
		ID: uuid.NewSHA1(recordNamespace, []byte(fp)).String(),
		Identity: Identity{
			Name:        first.Name,
			Address:     firstNonEmpty(group, func(o *RawObservation) string { return o.Address }),
			Fingerprint: fp,
		},
		Contact: Contact{
			Phone: pickContact(group, func(o *RawObservation) string { return o.Phone },
				func(s *Support) ContactSupport { return s.Phone }),
			Email: pickContact(group, func(o *RawObservation) string { return o.Email },
				func(s *Support) ContactSupport { return s.Email }),
			Website: pickContact(group, func(o *RawObservation) string { return o.Website },
				func(s *Support) ContactSupport { return s.Website }),
		},
		Financials: Financials{
			EstimatedRevenue: pickEstimate(group, func(o *RawObservation) *float64 { return o.RevenueEstimate },
				func(s *Support) int { return s.EstimatedRevenue }),
			EmployeeCount: pickEstimate(group, func(o *RawObservation) *int { return o.EmployeeCount },
				func(s *Support) int { return s.EmployeeCount }),
			YearsInBusiness: pickEstimate(group, func(o *RawObservation) *int { return o.YearsInBusiness },
				func(s *Support) int { return s.YearsInBusiness }),
		},
		OwnerAge:        pickEstimate(group, func(o *RawObservation) *int { return o.OwnerAgeEstimate }, nil).Value,
		WebsiteActivity: pickEstimate(group, func(o *RawObservation) *float64 { return o.WebsiteActivity }, nil).Value,
		Reputation:      pickReputation(group),
		Provenance:      provenance(group),
	}
	return rec
}

// pickEstimate takes the value from the most confident observation that has
// the field.  Observations without a confidence rank below any with one, and
// ties keep the earliest, so with no confidences at all the first non-nil
// value wins.  Values are never averaged.  Sources counts every observation
// with the field, using the carried count of a re-merged record.
func pickEstimate[T int | float64](group []RawObservation, get func(*RawObservation) *T, support func(*Support) int) Estimate[T] {
	var (
		est      Estimate[T]
		bestConf = math.Inf(-1)
	)
	for i := range group {
		v := get(&group[i])
		if v == nil {
			continue
		}
		n := 1
		if support != nil && group[i].Support != nil {
			n = max(support(group[i].Support), 1)
		}
		est.Sources += n
		conf := -1.0
		if group[i].Confidence != nil {
			conf = *group[i].Confidence
		}
		if est.Value == nil || conf > bestConf {
			val := *v
			est.Value = &val
			bestConf = conf
		}
	}
	return est
}

// pickContact keeps the first non-empty value.  A re-merged record counts for
// the sources and agreement it carries.
func pickContact(group []RawObservation, get func(*RawObservation) string, support func(*Support) ContactSupport) ContactField {
	var (
		chosen   string
		provided int
		agreeing int
	)
	for i := range group {
		v := strings.TrimSpace(get(&group[i]))
		if v == "" {
			continue
		}
		n, agree := 1, 1
		if s := group[i].Support; s != nil {
			if cs := support(s); cs.Sources > 0 {
				n, agree = cs.Sources, min(max(cs.Agreeing, 1), cs.Sources)
			}
		}
		provided += n
		if chosen == "" {
			chosen = v
		}
		if strings.EqualFold(v, chosen) {
			agreeing += agree
		}
	}
	if provided == 0 {
		return ContactField{}
	}
	return ContactField{Value: chosen, Confidence: float64(agreeing) / float64(provided), Sources: provided}
}

// pickReputation takes review count and rating together from the observation
// with the most reviews.  If that observation has no rating, or no observation
// has a review count, the first known rating is used.
func pickReputation(group []RawObservation) Reputation {
	best := -1
	for i := range group {
		rc := group[i].ReviewCount
		if rc == nil {
			continue
		}
		if best < 0 || *rc > *group[best].ReviewCount {
			best = i
		}
	}

	var rep Reputation
	if best >= 0 {
		rep.ReviewCount = cloneInt(group[best].ReviewCount)
		rep.Rating = cloneFloat(group[best].Rating)
	}
	if rep.Rating == nil {
		for i := range group {
			if group[i].Rating != nil {
				rep.Rating = cloneFloat(group[i].Rating)
				break
			}
		}
	}
	return rep
}

func provenance(group []RawObservation) []string {
	seen := make(map[string]struct{})
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id != "" {
			seen[id] = struct{}{}
		}
	}
	for i := range group {
		add(group[i].SourceID)
		for _, p := range group[i].Provenance {
			add(p)
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func firstNonEmpty(group []RawObservation, get func(*RawObservation) string) string {
	for i := range group {
		if v := strings.TrimSpace(get(&group[i])); v != "" {
			return v
		}
	}
	return ""
}

// String implements fmt.Stringer for log output.
func (s MergeSummary) String() string {
	return fmt.Sprintf("input=%d accepted=%d skipped=%d degraded=%d records=%d duplicates=%d",
		s.Input, s.Accepted, s.Skipped, s.Degraded, s.Records, s.Duplicates)
}

//Personal.AI order the ending
