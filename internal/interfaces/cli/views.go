package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fatih/color"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/market"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/scoring"
)

func money(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func score(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func levelString(l market.FragmentationLevel) string {
	switch l {
	case market.HighlyFragmented:
		return color.GreenString(string(l))
	case market.ModeratelyFragmented:
		return color.YellowString(string(l))
	case market.Consolidated:
		return color.RedString(string(l))
	default:
		return string(l)
	}
}

func revenueString(r *business.BusinessRecord) string {
	if v, ok := r.Revenue(); ok {
		return money(v)
	}
	return "-"
}

// ── report ───────────────────────────────────────────────────────────────────

type reportView struct{ r *report.MarketReport }

func (v reportView) JSONValue() interface{} { return v.r }

func (v reportView) SummaryLines() []string {
	m := v.r.Metrics
	lines := []string{
		fmt.Sprintf("Report %s", v.r.ID),
		fmt.Sprintf("Market:         %s / %s (region %s)", v.r.Location, v.r.Industry, orDash(v.r.Region)),
		fmt.Sprintf("Businesses:     %d (%d observations, %d skipped, %d duplicates)", m.BusinessCount, v.r.Merge.Input, v.r.Merge.Skipped, v.r.Merge.Duplicates),
		fmt.Sprintf("TAM / SAM / SOM: %s / %s / %s", money(m.TAM), money(m.SAM), money(m.SOM)),
		fmt.Sprintf("HHI:            %.4f  %s", m.HHIScore, levelString(m.FragmentationLevel)),
		fmt.Sprintf("Roll-up:        %s", score(m.RollUpPotential)),
	}
	if v.r.ExportKey != "" {
		lines = append(lines, fmt.Sprintf("Export:         %s", v.r.ExportKey))
	}
	return lines
}

func (v reportView) TableHeaders() []string {
	return []string{"#", "NAME", "ADDRESS", "REVENUE", "SHARE %", "SUCCESSION RISK", "LEAD SCORE"}
}

// TableRows lists businesses by descending lead score.
func (v reportView) TableRows() [][]string {
	bs := make([]scoring.ScoredBusiness, len(v.r.Businesses))
	copy(bs, v.r.Businesses)
	sort.SliceStable(bs, func(i, j int) bool {
		return bs[i].Derived.LeadScore > bs[j].Derived.LeadScore
	})
	rows := make([][]string, 0, len(bs))
	for i := range bs {
		b := &bs[i]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			b.Identity.Name,
			b.Identity.Address,
			revenueString(&b.BusinessRecord),
			fmt.Sprintf("%.1f", b.Derived.MarketSharePercent),
			score(b.Derived.SuccessionRiskScore),
			score(b.Derived.LeadScore),
		})
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ── comparison ───────────────────────────────────────────────────────────────

type comparisonView struct{ c *analysis.Comparison }

func (v comparisonView) JSONValue() interface{} { return v.c }

func (v comparisonView) SummaryLines() []string {
	lines := []string{fmt.Sprintf("%d markets ranked", len(v.c.Opportunities))}
	for _, f := range v.c.Failed {
		lines = append(lines, color.RedString("failed #%d %s / %s: %s (%s)", f.Index, f.Location, f.Industry, f.Message, f.Code))
	}
	if v.c.Partial {
		lines = append(lines, color.YellowString("partial: some markets were not analysed before the deadline"))
	}
	return lines
}

func (v comparisonView) TableHeaders() []string {
	return []string{"RANK", "LOCATION", "INDUSTRY", "TAM", "HHI", "LEVEL", "ROLL-UP", "ACQ COST", "SYNERGY", "TIMELINE", "AD SPEND/MO"}
}

func (v comparisonView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.c.Opportunities))
	for _, o := range v.c.Opportunities {
		rows = append(rows, []string{
			strconv.Itoa(o.Rank),
			o.Location,
			o.Industry,
			money(o.Metrics.TAM),
			fmt.Sprintf("%.4f", o.Metrics.HHIScore),
			levelString(o.Metrics.FragmentationLevel),
			score(o.RollUpScore),
			money(o.EstimatedAcquisitionCost),
			money(o.SynergyPotential),
			o.ConsolidationTimeline,
			money(o.MonthlyAdSpend),
		})
	}
	return rows
}

// ── merge ────────────────────────────────────────────────────────────────────

type mergeView struct{ res business.MergeResult }

func (v mergeView) JSONValue() interface{} { return v.res }

func (v mergeView) SummaryLines() []string {
	s := v.res.Summary
	lines := []string{
		fmt.Sprintf("%d observations -> %d records (%d accepted, %d degraded, %d skipped, %d duplicates)",
			s.Input, s.Records, s.Accepted, s.Degraded, s.Skipped, s.Duplicates),
	}
	for _, sk := range v.res.Skipped {
		lines = append(lines, color.YellowString("skipped #%d: %s", sk.Index, sk.Reason))
	}
	return lines
}

func (v mergeView) TableHeaders() []string {
	return []string{"ID", "NAME", "ADDRESS", "REVENUE", "SOURCES"}
}

func (v mergeView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.res.Records))
	for i := range v.res.Records {
		r := &v.res.Records[i]
		rows = append(rows, []string{r.ID, r.Identity.Name, r.Identity.Address, revenueString(r), strconv.Itoa(len(r.Provenance))})
	}
	return rows
}

// ── benchmarks ───────────────────────────────────────────────────────────────

type benchmarkView struct{ t analysis.BenchmarkTable }

func (v benchmarkView) JSONValue() interface{} { return v.t }

func (v benchmarkView) SummaryLines() []string {
	return []string{
		fmt.Sprintf("%d industries, %d regions; default industry %s", len(v.t.Industries), len(v.t.Regions), v.t.DefaultIndustry),
	}
}

func (v benchmarkView) TableHeaders() []string {
	return []string{"INDUSTRY", "AVG REVENUE", "AVG EMPLOYEES", "GROWTH", "AVG CPC"}
}

func (v benchmarkView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.t.Industries))
	for _, e := range v.t.Industries {
		rows = append(rows, entryRow(e))
	}
	return rows
}

type entryView struct{ e benchmark.Entry }

func (v entryView) JSONValue() interface{} { return v.e }

func (v entryView) TableHeaders() []string { return benchmarkView{}.TableHeaders() }

func (v entryView) TableRows() [][]string { return [][]string{entryRow(v.e)} }

func entryRow(e benchmark.Entry) []string {
	return []string{
		e.IndustryKey,
		money(e.AvgRevenue),
		strconv.Itoa(e.AvgEmployees),
		fmt.Sprintf("%.1f%%", e.GrowthRate*100),
		fmt.Sprintf("$%.2f", e.AvgCPC),
	}
}

//Personal.AI order the ending
