package report

import (
	"io"

	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/stats"
)

// Writer renders an aggregated survey report.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.SurveyReport) (int, error)
}

// SearchWriter renders a keyword search result.
type SearchWriter interface {
	WriteSearch(result stats.SearchResult) (int, error)
}

// MultiWriter writes a report to several Writers in turn.
// It is used to print to the terminal and save a file in one pass.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.SurveyReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how the report was produced.
func statusText(report *model.SurveyReport) string {
	switch {
	case report.TimedOut:
		return "TIMED OUT (partial results)"
	case report.ErrorMessage != "":
		return "ERROR - " + report.ErrorMessage
	case report.FromSnapshot:
		return "Complete (from snapshot)"
	default:
		return "Complete"
	}
}

// seriesFor returns the series belonging to the question at index.
func seriesFor(report *model.SurveyReport, index int) []model.Series {
	var out []model.Series
	for _, s := range report.Series {
		if s.QuestionIndex == index {
			out = append(out, s)
		}
	}
	return out
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
