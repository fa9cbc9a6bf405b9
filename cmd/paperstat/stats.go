package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/paperstat/internal/config"
	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/report"
)

// NewStatsCmd creates the stats subcommand.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [flags] <survey-id> [survey-id...]",
		Short: "Show answer statistics of one or more surveys",
		Long: `Stats loads the answer analysis of each survey from the admin API,
aggregates it into per-option counts and percentages, and prints a report.

Fetched analyses are stored in the local snapshot database so they can be
reviewed later with --offline or the history command.

Examples:
  # Print the statistics table of survey 42
  paperstat stats -e https://example.com/admin/paper 42

  # Markdown report with mermaid charts written to a file
  paperstat stats --markdown -o report.md 42

  # Only count answers submitted in September
  paperstat stats --date-start 2026-09-01 --date-end 2026-09-30 42

  # Several surveys, two at a time
  paperstat stats -b 2 42 43 44

  # Re-render the last stored snapshot without contacting the backend
  paperstat stats --offline 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: runStatsCmd,
	}

	addLoadFlags(cmd)
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of surveys loaded concurrently")
	cmd.Flags().BoolP("json", "j", false, "Output the report as JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output the report as Markdown")
	cmd.Flags().Bool("html", false, "Output the report as an HTML page")
	cmd.Flags().Bool("no-charts", false, "Omit charts from Markdown reports")
	cmd.Flags().Bool("hide-empty", false, "Leave questions without answers out of the text report")
	cmd.Flags().String("chart-script", "", "Script URL that renders the chart elements of HTML reports")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func runStatsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.HTMLReport, err = flags.GetBool("html"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}
	var wopts writerOptions
	noCharts, err := flags.GetBool("no-charts")
	if err != nil {
		return err
	}
	wopts.charts = !noCharts
	if wopts.chartScript, err = flags.GetString("chart-script"); err != nil {
		return err
	}
	if wopts.hideEmpty, err = flags.GetBool("hide-empty"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.ShowAnswers)
	ctx, cancel := signalContext(logger)
	defer cancel()

	l, err := newLoader(cfg, logger)
	if err != nil {
		return err
	}
	defer l.Close()

	reports, loadErr := l.Load(ctx)

	out, closeOut, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	w := newReportWriter(cfg, out, wopts)
	for _, r := range reports {
		if r == nil {
			continue
		}
		if _, err := w.Write(r); err != nil {
			_ = closeOut()
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if cfg.ReportFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", cfg.ReportFile)
	}

	return loadErr
}

// writerOptions holds the format-specific stats flags.
type writerOptions struct {
	charts      bool
	chartScript string
	hideEmpty   bool
}

// newReportWriter selects the report format requested in cfg.
func newReportWriter(cfg *config.Config, out io.Writer, opts writerOptions) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out, report.WithCharts(opts.charts))
	case cfg.HTMLReport:
		var htmlOpts []report.HTMLWriterOption
		if opts.chartScript != "" {
			htmlOpts = append(htmlOpts, report.WithScript(opts.chartScript))
		}
		return report.NewHTMLWriter(out, htmlOpts...)
	default:
		return report.NewSimpleWriter(out,
			report.WithVerbose(cfg.Verbose),
			report.WithShowEmpty(!opts.hideEmpty),
		)
	}
}

// singleReport loads exactly one survey, for commands that act on one.
func singleReport(cfg *config.Config, logger *slog.Logger) (*model.SurveyReport, error) {
	ctx, cancel := signalContext(logger)
	defer cancel()

	l, err := newLoader(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	reports, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 || reports[0] == nil {
		return nil, fmt.Errorf("survey %s was not loaded", cfg.Targets[0])
	}
	return reports[0], nil
}
