package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/stats"
)

const (
	ruleWidth   = 70
	optionWidth = 44
)

// SimpleWriter outputs the statistics table as aligned plain text.
// Column alignment accounts for wide CJK characters.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether questions without any answers are listed.
	showEmpty bool

	// verbose adds the per-question totals and chart series.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list questions with no answers.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  true,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.SurveyReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeQuestions(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// WriteSearch outputs a keyword search result as one line.
func (w *SimpleWriter) WriteSearch(result stats.SearchResult) (int, error) {
	line := fmt.Sprintf("%q in %s: %d of %d answer(s), %s%%\n",
		result.Keyword, result.QuestionKey, result.MatchCount, result.Total,
		strconv.FormatFloat(result.Percentage, 'f', 2, 64))
	return w.output.Write([]byte(line))
}

// writeHeader writes the survey metadata.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SurveyReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                          PAPERSTAT REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Survey:       %s\n", report.DisplayTitle()))
	sb.WriteString(fmt.Sprintf("Survey ID:    %s\n", report.SurveyID))
	if report.Description != "" {
		sb.WriteString(fmt.Sprintf("Description:  %s\n", report.Description))
	}
	sb.WriteString(fmt.Sprintf("Loaded:       %s\n", report.DateLoaded.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Respondents:  %d\n", report.Respondents))
	sb.WriteString(fmt.Sprintf("Status:       %s\n", statusText(report)))
	sb.WriteString("\n")
}

// writeQuestions writes one block per question.
func (w *SimpleWriter) writeQuestions(sb *strings.Builder, report *model.SurveyReport) {
	if len(report.Questions) == 0 {
		sb.WriteString("No questions.\n\n")
		return
	}

	for _, qs := range report.Questions {
		if len(qs.Rows) == 0 && !w.showEmpty {
			continue
		}

		sb.WriteString(strings.Repeat("-", ruleWidth))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("[%d] %s (%s)\n", qs.Question.Index+1, qs.Question.Title, qs.Question.Type.Label()))
		sb.WriteString(strings.Repeat("-", ruleWidth))
		sb.WriteString("\n")

		if len(qs.Rows) == 0 {
			sb.WriteString("  (no answers)\n\n")
			continue
		}

		sb.WriteString(fmt.Sprintf("  %s %8s %9s\n", padRight("Option", optionWidth), "Count", "Percent"))
		for _, row := range qs.Rows {
			label := truncateWidth(row.OptionLabel, optionWidth)
			sb.WriteString(fmt.Sprintf("  %s %8d %8s%%\n", padRight(label, optionWidth), row.Count, row.PercentText()))
		}

		if w.verbose {
			sb.WriteString(fmt.Sprintf("  %s %8d\n", padRight("Total", optionWidth), qs.Total))
			for _, s := range seriesFor(report, qs.Question.Index) {
				sb.WriteString(fmt.Sprintf("  chart %s: %s, %d categories\n", s.ContainerID, s.Kind, len(s.Categories)))
			}
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the closing rule.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.SurveyReport) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d question(s), %d row(s)\n", len(report.Questions), len(report.Rows)))
}

// displayWidth returns the number of terminal columns s occupies.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// padRight pads s with spaces up to n columns.
func padRight(s string, n int) string {
	w := displayWidth(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}

// truncateWidth cuts s so that it fits into n columns, ending with "...".
func truncateWidth(s string, n int) string {
	if displayWidth(s) <= n {
		return s
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		rw := runeWidth(r)
		if used+rw > n-3 {
			break
		}
		sb.WriteRune(r)
		used += rw
	}
	sb.WriteString("...")
	return sb.String()
}
