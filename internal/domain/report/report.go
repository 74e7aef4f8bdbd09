// Package report defines the persisted market report, its identity and the
// events emitted when one completes.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
)

// MarketReport is the analysed result for one (location, industry) cohort.
type MarketReport struct {
	ID                uuid.UUID                `json:"id"`
	CreatedAt         time.Time                `json:"created_at"`
	Location          string                   `json:"location"`
	Industry          string                   `json:"industry"`
	Region            string                   `json:"region"`
	ObservationDigest string                   `json:"observation_digest"`
	Metrics           market.Metrics           `json:"metrics"`
	Businesses        []scoring.ScoredBusiness `json:"businesses"`
	Merge             business.MergeSummary    `json:"merge"`
	Skipped           []business.Skip          `json:"skipped,omitempty"`
	ExportKey         string                   `json:"export_key,omitempty"`
}

// Summary is the list-view projection of a report.
type Summary struct {
	ID                 uuid.UUID                 `json:"id"`
	CreatedAt          time.Time                 `json:"created_at"`
	Location           string                    `json:"location"`
	Industry           string                    `json:"industry"`
	Region             string                    `json:"region"`
	BusinessCount      int                       `json:"business_count"`
	TAM                float64                   `json:"tam"`
	HHIScore           float64                   `json:"hhi_score"`
	FragmentationLevel market.FragmentationLevel `json:"fragmentation_level"`
}

// Summarize projects r to a Summary.
func (r *MarketReport) Summarize() Summary {
	return Summary{
		ID:                 r.ID,
		CreatedAt:          r.CreatedAt,
		Location:           r.Location,
		Industry:           r.Industry,
		Region:             r.Region,
		BusinessCount:      r.Metrics.BusinessCount,
		TAM:                r.Metrics.TAM,
		HHIScore:           r.Metrics.HHIScore,
		FragmentationLevel: r.Metrics.FragmentationLevel,
	}
}

// CompletedEvent is published once a report has been persisted.
type CompletedEvent struct {
	ReportID           uuid.UUID                 `json:"report_id"`
	Location           string                    `json:"location"`
	Industry           string                    `json:"industry"`
	Region             string                    `json:"region"`
	BusinessCount      int                       `json:"business_count"`
	TAM                float64                   `json:"tam"`
	HHIScore           float64                   `json:"hhi_score"`
	FragmentationLevel market.FragmentationLevel `json:"fragmentation_level"`
	ExportKey          string                    `json:"export_key,omitempty"`
	CompletedAt        time.Time                 `json:"completed_at"`
}

// Event builds the completion event for r.
func (r *MarketReport) Event(now time.Time) CompletedEvent {
	return CompletedEvent{
		ReportID:           r.ID,
		Location:           r.Location,
		Industry:           r.Industry,
		Region:             r.Region,
		BusinessCount:      r.Metrics.BusinessCount,
		TAM:                r.Metrics.TAM,
		HHIScore:           r.Metrics.HHIScore,
		FragmentationLevel: r.Metrics.FragmentationLevel,
		ExportKey:          r.ExportKey,
		CompletedAt:        now.UTC(),
	}
}

// Digest is the hex SHA-256 of a canonical encoding of observations.  Equal
// batches in equal order share a digest.  Every field is written, absent
// values as "~" and non-finite floats as NaN, +Inf or -Inf, so no observation
// is ever left out of the hash.
func Digest(observations []business.RawObservation) string {
	buf := make([]byte, 0, 256)
	buf = strconv.AppendInt(append(buf, "n="...), int64(len(observations)), 10)

	h := sha256.New()
	for i := range observations {
		buf = appendObservation(append(buf, '\n'), &observations[i])
		// hash.Hash.Write never returns an error.
		h.Write(buf)
		buf = buf[:0]
	}
	h.Write(buf)
	return hex.EncodeToString(h.Sum(nil))
}

func appendObservation(b []byte, o *business.RawObservation) []byte {
	for _, s := range []string{o.SourceID, o.Name, o.Address, o.Phone, o.Email, o.Website} {
		b = strconv.AppendQuote(b, s)
		b = append(b, ' ')
	}
	for _, f := range []*float64{o.RevenueEstimate, o.Rating, o.WebsiteActivity, o.Confidence} {
		if f == nil {
			b = append(b, '~')
		} else {
			b = strconv.AppendFloat(b, *f, 'g', -1, 64)
		}
		b = append(b, ' ')
	}
	for _, n := range []*int{o.EmployeeCount, o.YearsInBusiness, o.ReviewCount, o.OwnerAgeEstimate} {
		b = appendInt(b, n)
	}
	b = append(b, '[')
	for _, p := range o.Provenance {
		b = strconv.AppendQuote(b, p)
		b = append(b, ' ')
	}
	b = append(b, "] "...)
	if s := o.Support; s == nil {
		b = append(b, '~')
	} else {
		for _, n := range []int{
			s.EstimatedRevenue, s.EmployeeCount, s.YearsInBusiness,
			s.Phone.Sources, s.Phone.Agreeing,
			s.Email.Sources, s.Email.Agreeing,
			s.Website.Sources, s.Website.Agreeing,
		} {
			b = appendInt(b, &n)
		}
	}
	return b
}

func appendInt(b []byte, n *int) []byte {
	if n == nil {
		return append(b, "~ "...)
	}
	return append(strconv.AppendInt(b, int64(*n), 10), ' ')
}

// CacheKey identifies a report by its cohort, its input batch and the
// version of the benchmarks and weights it was computed with.
func CacheKey(version, location, industry, region, digest string, avgRevenueOverride *float64) string {
	override := "-"
	if avgRevenueOverride != nil {
		override = fmt.Sprintf("%g", *avgRevenueOverride)
	}
	return strings.Join([]string{
		"report",
		version,
		Slug(location),
		benchmark.NormalizeIndustry(industry),
		benchmark.NormalizeRegion(region),
		override,
		digest,
	}, ":")
}

// Slug lower-cases s, strips diacritics and reduces every run of other
// non-ASCII-alphanumerics to one "-".
func Slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

//Personal.AI order the ending
