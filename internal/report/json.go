package report

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/stats"
)

// JSONWriter writes reports and search results as JSON documents, one per
// call, each followed by a newline.
type JSONWriter struct {
	baseWriter

	prefix string
	indent string

	// escapeHTML escapes <, > and & inside strings. Off by default so
	// answers containing markup stay readable.
	escapeHTML bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values by indent, each line starting with prefix.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix = prefix
		w.indent = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithEscapeHTML toggles HTML escaping inside strings.
func WithEscapeHTML(escape bool) JSONWriterOption {
	return func(w *JSONWriter) {
		w.escapeHTML = escape
	}
}

// NewJSONWriter creates a JSONWriter. Output is compact unless an indent
// option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write writes the report itself.
func (w *JSONWriter) Write(report *model.SurveyReport) (int, error) {
	return w.writeJSON(report)
}

// WriteSearch writes a keyword search result.
func (w *JSONWriter) WriteSearch(result stats.SearchResult) (int, error) {
	return w.writeJSON(result)
}

// writeJSON encodes v completely before writing, so a failed encode
// writes nothing.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(w.escapeHTML)
	if w.prefix != "" || w.indent != "" {
		enc.SetIndent(w.prefix, w.indent)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

// JSONReport is the document FullJSONWriter writes: the report plus what
// produced it and a few counts for consumers that skip the rows.
type JSONReport struct {
	Version     string              `json:"version"`
	GeneratedAt time.Time           `json:"generated_at"`
	Summary     JSONSummary         `json:"summary"`
	Report      *model.SurveyReport `json:"report"`
}

// JSONSummary counts the contents of a report.
type JSONSummary struct {
	Questions int `json:"questions"`
	FreeText  int `json:"free_text_questions"`
	Rows      int `json:"rows"`
	Charts    int `json:"charts"`
}

// NewJSONReport wraps report for output by the given paperstat version.
func NewJSONReport(report *model.SurveyReport, version string) *JSONReport {
	return &JSONReport{
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		Summary: JSONSummary{
			Questions: len(report.Questions),
			FreeText:  len(report.FreeTextQuestions()),
			Rows:      len(report.Rows),
			Charts:    len(report.Series),
		},
		Report: report,
	}
}

// FullJSONWriter writes each report wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter
	version string
}

// NewFullJSONWriter creates a FullJSONWriter stamping documents with version.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write writes the wrapped report.
func (w *FullJSONWriter) Write(report *model.SurveyReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
