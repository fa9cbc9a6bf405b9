package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/paperstat/internal/config"
	"github.com/nao1215/paperstat/internal/database"
	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/pipeline"
	"github.com/nao1215/paperstat/internal/report"
)

// timestampLayout is how snapshot times are printed.
const timestampLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// It lists and re-renders analysis snapshots stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [survey-id]",
		Short: "List stored analysis snapshots",
		Long: `History shows the analysis snapshots stored by earlier stats, export
and search runs.

A snapshot is stored whenever the fetched analysis differs from the latest
stored one, so the history doubles as a record of how answers came in.

Examples:
  # List every survey with snapshots
  paperstat history --list-surveys

  # List the snapshots of survey 42
  paperstat history 42

  # Show the statistics of snapshot 7
  paperstat history --show 7 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-surveys", "L", false, "List all surveys with stored snapshots")
	cmd.Flags().Int64P("show", "s", 0, "Show the statistics of the snapshot with this ID")
	cmd.Flags().BoolP("json", "j", false, "Output the shown snapshot as JSON")
	cmd.Flags().String("db-dir", "", "Snapshot database directory (default: XDG data directory)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	listSurveys, err := flags.GetBool("list-surveys")
	if err != nil {
		return err
	}
	showID, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Validate arguments before opening the database.
	var surveyID string
	if !listSurveys {
		if len(args) == 0 {
			return errors.New("survey id is required (use --list-surveys to see stored surveys)")
		}
		surveyID = args[0]
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case listSurveys:
		return listStoredSurveys(ctx, out, db)
	case showID > 0:
		return showSnapshot(ctx, cmd, db, surveyID, showID, jsonOutput)
	default:
		return listSnapshotHistory(ctx, out, db, surveyID)
	}
}

// listStoredSurveys lists every survey that has snapshots in the database.
func listStoredSurveys(ctx context.Context, out io.Writer, db *database.SnapshotDB) error {
	surveys, err := db.ListSurveys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list surveys: %w", err)
	}

	if len(surveys) == 0 {
		fmt.Fprintln(out, "No stored surveys found in the database.")
		fmt.Fprintln(out, "\nUse 'paperstat stats <survey-id>' to fetch and store a survey.")
		return nil
	}

	fmt.Fprintf(out, "Stored surveys (%d):\n\n", len(surveys))
	fmt.Fprintf(out, "  %-12s  %-9s  %s\n", "Survey", "Snapshots", "Latest")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 50))
	for _, s := range surveys {
		fmt.Fprintf(out, "  %-12s  %-9d  %s (%s)\n",
			s.SurveyID, s.Snapshots, s.LatestAt.Local().Format(timestampLayout), humanize.Time(s.LatestAt))
	}
	fmt.Fprintln(out, "\nUse 'paperstat history <survey-id>' to see the snapshots of a survey.")
	return nil
}

// listSnapshotHistory lists the snapshots of one survey, newest first.
func listSnapshotHistory(ctx context.Context, out io.Writer, db *database.SnapshotDB, surveyID string) error {
	history, err := db.History(ctx, surveyID)
	if err != nil {
		return fmt.Errorf("failed to get snapshot history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No snapshots found for survey %s\n", surveyID)
		return nil
	}

	fmt.Fprintf(out, "Snapshot history for survey %s (%d snapshots):\n\n", surveyID, len(history))
	fmt.Fprintf(out, "  %-6s  %-19s  %-11s  %-9s  %-9s  %s\n",
		"ID", "Fetched", "Respondents", "Questions", "Size", "Digest")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 80))
	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-19s  %-11d  %-9d  %-9s  %s\n",
			meta.ID,
			meta.FetchedAt.Local().Format(timestampLayout),
			meta.Respondents,
			meta.Questions,
			humanize.Bytes(uint64(meta.Size)), //nolint:gosec // length() is never negative
			shortDigest(meta.Digest),
		)
	}
	fmt.Fprintf(out, "\nLatest snapshot fetched %s.\n", humanize.Time(history[0].FetchedAt))
	fmt.Fprintf(out, "Use 'paperstat history --show <id> %s' to show a snapshot.\n", surveyID)
	return nil
}

// showSnapshot aggregates one stored snapshot and prints its report.
func showSnapshot(ctx context.Context, cmd *cobra.Command, db *database.SnapshotDB, surveyID string, id int64, jsonOutput bool) error {
	logger := setupLogger(cmd.ErrOrStderr(), getGlobalBool(cmd, "verbose"), getGlobalBool(cmd, "show-answers"))

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewSnapshotLoadStep(db,
			pipeline.WithSnapshotID(id),
			pipeline.WithSnapshotLogger(logger),
		),
		pipeline.NewAggregateStep(),
	)

	r := model.NewSurveyReport(surveyID)
	if err := p.Execute(ctx, r); err != nil {
		if pipeline.IsNotFound(err) {
			return fmt.Errorf("snapshot %d not found", id)
		}
		return err
	}

	var w report.Writer
	if jsonOutput {
		w = report.NewFullJSONWriter(cmd.OutOrStdout(), getVersion(), report.WithPrettyPrint())
	} else {
		w = report.NewSimpleWriter(cmd.OutOrStdout())
	}
	if _, err := w.Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// shortDigest abbreviates a hex digest for display.
func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
