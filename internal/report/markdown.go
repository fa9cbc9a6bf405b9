package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/paperstat/internal/chart"
	"github.com/nao1215/paperstat/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// Each question gets a statistics table followed by its charts.
type MarkdownWriter struct {
	baseWriter

	// charts disables the chart section of every question when false.
	charts bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithCharts enables or disables the charts under each question.
func WithCharts(enabled bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.charts = enabled
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		charts:     true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SurveyReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	if err := w.writeQuestions(md, report); err != nil {
		return 0, err
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and a metadata table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SurveyReport) {
	md.H1(chart.InlineText(report.DisplayTitle()))
	md.PlainText("")

	if report.Description != "" {
		md.PlainText(report.Description)
		md.PlainText("")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Survey ID", "`" + chart.TableCell(report.SurveyID) + "`"},
			{"Loaded", report.DateLoaded.Format("2006-01-02 15:04:05 MST")},
			{"Respondents", strconv.Itoa(report.Respondents)},
			{"Questions", strconv.Itoa(len(report.Questions))},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

// writeAlert writes an alert describing the state of the data.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SurveyReport) {
	switch {
	case report.TimedOut:
		md.Warningf("Loading survey %s timed out. The statistics may be incomplete.", report.SurveyID)
	case report.ErrorMessage != "":
		md.Cautionf("Statistics could not be computed: %s", report.ErrorMessage)
	case report.FromSnapshot:
		md.Importantf("Statistics were computed from a snapshot saved at %s.",
			report.DateLoaded.Format("2006-01-02 15:04:05"))
	case report.Respondents == 0:
		md.Note("Nobody has answered this survey yet.")
	default:
		md.Tip("Statistics are complete.")
	}
	md.PlainText("")
}

// writeQuestions writes one section per question.
func (w *MarkdownWriter) writeQuestions(md *markdown.Markdown, report *model.SurveyReport) error {
	md.H2("Questions")
	md.PlainText("")

	if len(report.Questions) == 0 {
		md.PlainText("No questions.")
		md.PlainText("")
		return nil
	}

	renderer := chart.NewMermaidRenderer(md)
	for _, qs := range report.Questions {
		md.PlainTextf("### %d. %s", qs.Question.Index+1, chart.InlineText(qs.Question.Title))
		md.PlainText("")
		md.PlainTextf("*%s*", qs.Question.Type.Label())
		md.PlainText("")

		if len(qs.Rows) == 0 {
			md.PlainText("No answers.")
			md.PlainText("")
			continue
		}

		md.Table(markdown.TableSet{
			Header: []string{"Option", "Count", "Percentage"},
			Rows:   statRows(qs),
		})
		md.PlainText("")

		if qs.Question.Type == model.FreeText {
			md.PlainTextf("%d answer(s) in total.", qs.Respondents)
			md.PlainText("")
		}

		if !w.charts {
			continue
		}
		if err := chart.DispatchAll(renderer, seriesFor(report, qs.Question.Index)); err != nil {
			return err
		}
	}
	return nil
}

// statRows converts the rows of one question into table cells.
func statRows(qs model.QuestionStats) [][]string {
	rows := make([][]string, 0, len(qs.Rows)+1)
	for _, r := range qs.Rows {
		rows = append(rows, []string{
			chart.TableCell(truncateString(r.OptionLabel, 60)),
			strconv.Itoa(r.Count),
			r.PercentText() + "%",
		})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(qs.Total) + "**", ""})
	return rows
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by paperstat*")
}
