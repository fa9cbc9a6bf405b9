package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/report"
	"github.com/nao1215/paperstat/internal/stats"
)

// NewSearchCmd creates the search subcommand.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [flags] <survey-id>",
		Short: "Count free-text answers that contain a keyword",
		Long: `Search counts the answers of one free-text question that contain a
keyword. Matching is a case-sensitive substring match.

The question is given by its index key (ques2) or its 1-based number (3).
Without --question the searchable questions are listed.

Examples:
  # List the free-text questions of survey 42
  paperstat search 42

  # How many answers to question 3 mention "price"
  paperstat search -q 3 -k price 42`,
		Args: cobra.ExactArgs(1),
		RunE: runSearchCmd,
	}

	addLoadFlags(cmd)
	cmd.Flags().StringP("question", "q", "", "Question key (ques2) or 1-based number")
	cmd.Flags().StringP("keyword", "k", "", "Keyword to look for")
	cmd.Flags().BoolP("json", "j", false, "Output the result as JSON")

	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	question, err := flags.GetString("question")
	if err != nil {
		return err
	}
	keyword, err := flags.GetString("keyword")
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if question != "" && keyword == "" {
		return fmt.Errorf("%w: --keyword is required with --question", model.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r, err := singleReport(cfg, setupLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.ShowAnswers))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if question == "" {
		return listFreeText(out, r)
	}

	result, err := stats.Search(r.Index, questionKey(question), keyword)
	if err != nil {
		return err
	}

	var w report.SearchWriter
	if cfg.JSONReport {
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	} else {
		w = report.NewSimpleWriter(out)
	}
	if _, err := w.WriteSearch(result); err != nil {
		return fmt.Errorf("failed to write search result: %w", err)
	}
	return nil
}

// questionKey maps a 1-based question number to its index key.
// Anything else is taken as a key.
func questionKey(s string) string {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return model.QuestionKey(n - 1)
	}
	return s
}

func listFreeText(out io.Writer, r *model.SurveyReport) error {
	qs := r.FreeTextQuestions()
	if len(qs) == 0 {
		_, err := fmt.Fprintf(out, "%s has no free-text questions.\n", r.DisplayTitle())
		return err
	}
	if _, err := fmt.Fprintf(out, "Free-text questions of %s:\n", r.DisplayTitle()); err != nil {
		return err
	}
	for _, q := range qs {
		if _, err := fmt.Fprintf(out, "  %-8s %d. %s (%d answer(s))\n",
			q.Key(), q.Index+1, q.Title, len(r.Index[q.Key()])); err != nil {
			return err
		}
	}
	return nil
}
