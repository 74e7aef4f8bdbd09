// Package benchmark holds the industry and regional reference tables that the
// market analyzer and opportunity composer price cohorts against.
//
// A Registry is immutable once built.  It is constructed at process start
// (from the built-in table, a config file, or a test fixture) and injected
// into every component that needs it; there is no package-level registry.
package benchmark

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// DefaultIndustry is the fallback entry used for unknown industries.
const DefaultIndustry = "retail"

// NeutralMultiplier is returned for unknown regions.
const NeutralMultiplier = 1.0

// Entry is the benchmark profile of one industry.
type Entry struct {
	IndustryKey  string  `json:"industry_key"`
	AvgRevenue   float64 `json:"avg_revenue"`
	AvgEmployees int     `json:"avg_employees"`
	GrowthRate   float64 `json:"growth_rate"`
	AvgCPC       float64 `json:"avg_cpc"`
}

// GeoMultiplier is the cost-of-living adjustment for one region.
type GeoMultiplier struct {
	RegionCode string  `json:"region_code"`
	Multiplier float64 `json:"multiplier"`
}

// Registry is a read-only lookup over industry benchmarks and regional
// multipliers.  Safe for concurrent use.
type Registry struct {
	entries         map[string]Entry
	multipliers     map[string]float64
	defaultIndustry string
	version         string
}

// NormalizeIndustry returns the lookup key for an industry name.
func NormalizeIndustry(industry string) string {
	key := strings.ToLower(strings.TrimSpace(industry))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	return key
}

// NormalizeRegion returns the lookup key for a region code.
func NormalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}

// NewRegistry validates and copies the supplied tables.
//
// Returns ErrCodeBenchmarkInvalid if entries is empty, defaultIndustry has no
// entry, or any value is negative or not finite.
func NewRegistry(entries []Entry, multipliers []GeoMultiplier, defaultIndustry string) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeBenchmarkInvalid, "benchmark table must not be empty")
	}
	if defaultIndustry == "" {
		defaultIndustry = DefaultIndustry
	}

	r := &Registry{
		entries:         make(map[string]Entry, len(entries)),
		multipliers:     make(map[string]float64, len(multipliers)),
		defaultIndustry: NormalizeIndustry(defaultIndustry),
	}

	for _, e := range entries {
		key := NormalizeIndustry(e.IndustryKey)
		if key == "" {
			return nil, errors.New(errors.ErrCodeBenchmarkInvalid, "benchmark entry has an empty industry key")
		}
		if invalidAmount(e.AvgRevenue) || invalidAmount(e.GrowthRate) || invalidAmount(e.AvgCPC) || e.AvgEmployees < 0 {
			return nil, errors.New(errors.ErrCodeBenchmarkInvalid, "benchmark values must be finite and non-negative").
				WithDetail("industry=" + key)
		}
		e.IndustryKey = key
		r.entries[key] = e
	}

	for _, m := range multipliers {
		code := NormalizeRegion(m.RegionCode)
		if code == "" {
			return nil, errors.New(errors.ErrCodeBenchmarkInvalid, "geo multiplier has an empty region code")
		}
		if invalidAmount(m.Multiplier) {
			return nil, errors.New(errors.ErrCodeBenchmarkInvalid, "geo multiplier must be finite and non-negative").
				WithDetail("region=" + code)
		}
		r.multipliers[code] = m.Multiplier
	}

	if _, ok := r.entries[r.defaultIndustry]; !ok {
		return nil, errors.New(errors.ErrCodeBenchmarkInvalid, "default industry has no benchmark entry").
			WithDetail(fmt.Sprintf("default=%s", r.defaultIndustry))
	}
	r.version = r.digest()
	return r, nil
}

// Version identifies the table contents.  Registries built from equal tables
// share a version; any changed value changes it.
func (r *Registry) Version() string {
	return r.version
}

func (r *Registry) digest() string {
	g := func(b []byte, v float64) []byte { return append(strconv.AppendFloat(b, v, 'g', -1, 64), ' ') }
	b := append([]byte(r.defaultIndustry), '\n')
	for _, e := range r.Entries() {
		b = append(strconv.AppendQuote(b, e.IndustryKey), ' ')
		b = g(b, e.AvgRevenue)
		b = append(strconv.AppendInt(b, int64(e.AvgEmployees), 10), ' ')
		b = g(b, e.GrowthRate)
		b = g(b, e.AvgCPC)
		b = append(b, '\n')
	}
	for _, m := range r.GeoMultipliers() {
		b = append(strconv.AppendQuote(b, m.RegionCode), ' ')
		b = g(b, m.Multiplier)
		b = append(b, '\n')
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:6])
}

func invalidAmount(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// Benchmark returns the entry for industry, falling back to the default
// industry's entry when unknown.
func (r *Registry) Benchmark(industry string) Entry {
	if e, ok := r.entries[NormalizeIndustry(industry)]; ok {
		return e
	}
	return r.entries[r.defaultIndustry]
}

// Lookup is the strict variant of Benchmark.
func (r *Registry) Lookup(industry string) (Entry, bool) {
	e, ok := r.entries[NormalizeIndustry(industry)]
	return e, ok
}

// Multiplier returns the regional multiplier, or NeutralMultiplier when the
// region is unknown.
func (r *Registry) Multiplier(region string) float64 {
	if m, ok := r.multipliers[NormalizeRegion(region)]; ok {
		return m
	}
	return NeutralMultiplier
}

// HasRegion reports whether region has an explicit multiplier.
func (r *Registry) HasRegion(region string) bool {
	_, ok := r.multipliers[NormalizeRegion(region)]
	return ok
}

// CPC returns the average cost-per-click for industry.  The boolean is false
// for unknown industries; callers choose their own fallback.
func (r *Registry) CPC(industry string) (float64, bool) {
	e, ok := r.entries[NormalizeIndustry(industry)]
	if !ok {
		return 0, false
	}
	return e.AvgCPC, true
}

// DefaultIndustry returns the key used for unknown industries.
func (r *Registry) DefaultIndustry() string {
	return r.defaultIndustry
}

// Industries returns the sorted industry keys.
func (r *Registry) Industries() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Regions returns the sorted region codes.
func (r *Registry) Regions() []string {
	keys := make([]string, 0, len(r.multipliers))
	for k := range r.multipliers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of every entry, sorted by industry key.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, k := range r.Industries() {
		out = append(out, r.entries[k])
	}
	return out
}

// GeoMultipliers returns a copy of every multiplier, sorted by region code.
func (r *Registry) GeoMultipliers() []GeoMultiplier {
	out := make([]GeoMultiplier, 0, len(r.multipliers))
	for _, k := range r.Regions() {
		out = append(out, GeoMultiplier{RegionCode: k, Multiplier: r.multipliers[k]})
	}
	return out
}

//Personal.AI order the ending
