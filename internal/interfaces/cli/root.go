// Package cli is the marketscope command line.  Commands run the analysis
// pipeline in-process against local JSON files.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

type cliContextKey struct{}

// RootOptions holds the persistent flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialised dependencies to subcommands.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      *analysis.Service
	OutputFormat string
	Timeout      time.Duration
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "marketscope",
		Short:   "Local-market fragmentation analysis and roll-up targeting",
		Long:    "marketscope merges business observations into canonical records, measures market\nconcentration, scores acquisition leads and ranks markets for roll-up strategies.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment and built-in defaults)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", FormatText, "output format (text, json, table)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "operation timeout")

	cmd.AddCommand(
		newAnalyzeCmd(),
		newCompareCmd(),
		newMergeCmd(),
		newBenchmarksCmd(),
		newVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case FormatText, FormatJSON, FormatTable:
	default:
		return errors.New(errors.ErrCodeBadRequest, "unknown output format").WithDetail(opts.OutputFormat)
	}
	color.NoColor = color.NoColor || opts.NoColor

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	svc, err := initService(cfg, logger)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Service:      svc,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Timeout:      opts.Timeout,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.LoadFromFile(opts.ConfigPath)
	}
	return config.LoadFromEnv()
}

// initLogger writes console entries to stderr so stdout stays parseable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func initService(cfg *config.Config, logger logging.Logger) (*analysis.Service, error) {
	reg, err := cfg.BuildRegistry()
	if err != nil {
		return nil, err
	}
	scorer, err := cfg.BuildScorer()
	if err != nil {
		return nil, err
	}
	return analysis.NewService(reg, scorer, logger, analysis.WithConfig(analysis.Config{
		MaxParallelCohorts: cfg.Analysis.MaxParallelCohorts,
		Timeout:            cfg.Analysis.Timeout,
	}))
}

// GetCLIContext returns the context installed by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "cli context not initialised")
	}
	return cliCtx, nil
}

// commandContext bounds one command by the --timeout flag.
func commandContext(cmd *cobra.Command, cc *CLIContext) (context.Context, context.CancelFunc) {
	if cc.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cc.Timeout)
	}
	return context.WithCancel(cmd.Context())
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		PrintError(root, err)
		return err
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Output
// ─────────────────────────────────────────────────────────────────────────────

type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

type summaryProvider interface {
	SummaryLines() []string
}

// PrintResult renders data in the selected output format.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := FormatJSON
	if cc, err := GetCLIContext(cmd); err == nil {
		format = cc.OutputFormat
	}

	switch format {
	case FormatJSON:
		return printJSON(cmd.OutOrStdout(), data)
	case FormatTable:
		if tp, ok := data.(tableProvider); ok {
			renderTable(cmd.OutOrStdout(), tp.TableHeaders(), tp.TableRows())
			return nil
		}
		return printText(cmd.OutOrStdout(), data)
	default:
		return printText(cmd.OutOrStdout(), data)
	}
}

func printJSON(w io.Writer, data interface{}) error {
	if v, ok := data.(interface{ JSONValue() interface{} }); ok {
		data = v.JSONValue()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data interface{}) error {
	sp, hasSummary := data.(summaryProvider)
	tp, hasTable := data.(tableProvider)
	if !hasSummary && !hasTable {
		_, err := fmt.Fprintf(w, "%+v\n", data)
		return err
	}
	if hasSummary {
		for _, line := range sp.SummaryLines() {
			fmt.Fprintln(w, line)
		}
	}
	if hasTable && len(tp.TableRows()) > 0 {
		if hasSummary {
			fmt.Fprintln(w)
		}
		renderTable(w, tp.TableHeaders(), tp.TableRows())
	}
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
}

// PrintError writes err to stderr, red when color is enabled.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("Error: %s", err.Error()))
}

// ─────────────────────────────────────────────────────────────────────────────
// Input
// ─────────────────────────────────────────────────────────────────────────────

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "--file is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read input").WithDetail(path)
	}
	return data, nil
}

// decodeJSON decodes data into v.
func decodeJSON(data []byte, v interface{}, what string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, errors.ErrCodeObservationDecode, "failed to decode "+what).WithDetail(err.Error())
	}
	return nil
}

// isJSONArray reports whether data holds a top-level array.
func isJSONArray(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

//Personal.AI order the ending
