package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/paperstat/internal/config"
)

// NewRootCmd creates the root command for paperstat.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paperstat",
		Short: "Survey statistics and CSV export for the survey admin API",
		Long: `paperstat loads the analysis of surveys from the survey admin API and
renders per-question statistics: option counts, percentages, chart data and a
CSV export of the statistics table. Free-text answers can be searched by keyword.

Fetched analyses are stored as snapshots in a local database, so reports can
be regenerated with --offline.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return err
			}
			if err := config.LoadEnvFile(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return nil
		},
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("show-answers", false, "Do not mask respondent answers and keywords in logs")
	cmd.PersistentFlags().String("env-file", config.DefaultEnvFile,
		"dotenv file with PAPERSTAT_* variables (ignored when missing)")

	// Add subcommands
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
