package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/business"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		file       string
		location   string
		industry   string
		region     string
		avgRevenue float64
	)

	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "Analyse one market from a file of observations",
		Long:    "Merge the observations in --file (a JSON array or a market request object, - for\nstdin), size the market and score every business.",
		Example: "  marketscope analyze --file austin-hvac.json --location \"Austin, TX\" --industry hvac --region TX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			// The file is either a bare observation array or a whole request;
			// flags override the request's fields.
			var req analysis.MarketRequest
			if isJSONArray(data) {
				err = decodeJSON(data, &req.Observations, "observations")
			} else {
				err = decodeJSON(data, &req, "market request")
			}
			if err != nil {
				return err
			}
			if location != "" {
				req.Location = location
			}
			if industry != "" {
				req.Industry = industry
			}
			if region != "" {
				req.Region = region
			}
			if cmd.Flags().Changed("avg-revenue") {
				req.AvgRevenueOverride = &avgRevenue
			}

			ctx, cancel := commandContext(cmd, cc)
			defer cancel()
			r, err := cc.Service.AnalyzeMarket(ctx, req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportView{r})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "observations JSON file, - for stdin [REQUIRED]")
	cmd.Flags().StringVar(&location, "location", "", "market location, e.g. \"Austin, TX\"")
	cmd.Flags().StringVar(&industry, "industry", "", "industry key (default: configured default industry)")
	cmd.Flags().StringVar(&region, "region", "", "2-letter region code for the cost-of-living multiplier")
	cmd.Flags().Float64Var(&avgRevenue, "avg-revenue", 0, "override the benchmark average revenue")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank several markets as roll-up opportunities",
		Long:  "Analyse every market in --file and rank them.  The file holds either\n{\"markets\": [...]} or a bare array of market requests.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var req analysis.CompareRequest
			if isJSONArray(data) {
				err = decodeJSON(data, &req.Markets, "markets")
			} else {
				err = decodeJSON(data, &req, "markets")
			}
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd, cc)
			defer cancel()
			cmp, err := cc.Service.Compare(ctx, req)
			if err != nil {
				return err
			}
			return PrintResult(cmd, comparisonView{cmp})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "markets JSON file, - for stdin [REQUIRED]")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newMergeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Deduplicate observations into canonical business records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var obs []business.RawObservation
			if err := decodeJSON(data, &obs, "observations"); err != nil {
				return err
			}
			return PrintResult(cmd, mergeView{cc.Service.Merge(obs)})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "observations JSON file, - for stdin [REQUIRED]")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newBenchmarksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "benchmarks [industry]",
		Short: "List industry benchmarks, or show one industry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				e, err := cc.Service.Benchmark(args[0])
				if err != nil {
					return err
				}
				return PrintResult(cmd, entryView{e})
			}
			return PrintResult(cmd, benchmarkView{cc.Service.Benchmarks()})
		},
	}
}

// VersionInfo is printed by the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func (v VersionInfo) SummaryLines() []string {
	return []string{
		fmt.Sprintf("marketscope %s", v.Version),
		fmt.Sprintf("  commit:  %s", v.Commit),
		fmt.Sprintf("  built:   %s", v.BuildDate),
		fmt.Sprintf("  go:      %s", v.GoVersion),
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return PrintResult(cmd, VersionInfo{
				Version:   Version,
				Commit:    GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
			})
		},
	}
}

//Personal.AI order the ending
