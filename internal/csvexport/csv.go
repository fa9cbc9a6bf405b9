package csvexport

import (
	"fmt"
	"strings"

	"github.com/nao1215/paperstat/internal/model"
)

// DefaultFileName is used when a Spec has no file name.
const DefaultFileName = "UserExport"

// Formatter customizes how a value is written. Returning false keeps the raw value.
type Formatter func(key string, value any) (string, bool)

// Columns selects and titles the exported columns.
// Title and Key are aligned 1:1.
type Columns struct {
	// Title is the header text of each column.
	Title []string

	// Key is the record key each column reads from.
	Key []string
}

// Spec describes one CSV export.
type Spec struct {
	Rows []Record

	// FileName is the base name without extension. DefaultFileName when empty.
	FileName string

	// ShowHeader writes the header line. NewSpec sets it to true.
	ShowHeader bool

	Columns   Columns
	Formatter Formatter
}

// SpecOption configures a Spec.
type SpecOption func(*Spec)

// WithColumns sets explicit column titles and keys.
func WithColumns(titles, keys []string) SpecOption {
	return func(s *Spec) {
		s.Columns = Columns{Title: titles, Key: keys}
	}
}

// WithFormatter sets a value formatter.
func WithFormatter(f Formatter) SpecOption {
	return func(s *Spec) {
		s.Formatter = f
	}
}

// WithHeader turns the header line on or off.
func WithHeader(show bool) SpecOption {
	return func(s *Spec) {
		s.ShowHeader = show
	}
}

// NewSpec creates a Spec with the header enabled.
func NewSpec(rows []Record, fileName string, opts ...SpecOption) *Spec {
	s := &Spec{
		Rows:       rows,
		FileName:   fileName,
		ShowHeader: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseName returns the file name without extension, defaulted.
func (s *Spec) BaseName() string {
	if s.FileName == "" {
		return DefaultFileName
	}
	return s.FileName
}

// ToCSV renders the spec as CSV text.
//
// The header is Columns.Title, or the first row's keys. Data values are read
// by Columns.Key, or by each row's own keys in insertion order. It fails with
// model.ErrEmptyDataset when there are no rows and no explicit titles, or
// when nothing at all would be written.
func ToCSV(spec *Spec) (string, error) {
	if len(spec.Rows) == 0 && len(spec.Columns.Title) == 0 {
		return "", fmt.Errorf("%w: no rows and no column titles", model.ErrEmptyDataset)
	}
	if len(spec.Columns.Title) > 0 && len(spec.Columns.Key) > 0 &&
		len(spec.Columns.Title) != len(spec.Columns.Key) {
		return "", fmt.Errorf("%w: %d column titles but %d keys",
			model.ErrInvalidArgument, len(spec.Columns.Title), len(spec.Columns.Key))
	}

	var sb strings.Builder

	if spec.ShowHeader {
		header := spec.Columns.Title
		if len(header) == 0 {
			header = spec.Rows[0].Keys()
		}
		sb.WriteString(strings.Join(header, ","))
		sb.WriteString("\r\n")
	}

	for _, row := range spec.Rows {
		keys := spec.Columns.Key
		if len(keys) == 0 {
			keys = row.Keys()
		}

		fields := make([]string, len(keys))
		for i, key := range keys {
			fields[i] = `"` + spec.format(key, row) + `"`
		}
		sb.WriteString(strings.Join(fields, ","))
		sb.WriteString("\r\n")
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: nothing to export", model.ErrEmptyDataset)
	}
	return sb.String(), nil
}

// format returns the text written for key in row.
// A key missing from the row is written as an empty field.
func (s *Spec) format(key string, row Record) string {
	value, ok := row.Get(key)
	if s.Formatter != nil {
		if text, use := s.Formatter(key, value); use {
			return text
		}
	}
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// NeedsEscaping reports whether text contains a character that the legacy
// dialect writes unescaped and that breaks naive CSV parsing.
func NeedsEscaping(text string) bool {
	return strings.ContainsAny(text, "\",\r\n")
}
