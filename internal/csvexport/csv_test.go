package csvexport

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nao1215/paperstat/internal/model"
)

// TestToCSV tests rendering of CSV text.
func TestToCSV(t *testing.T) {
	t.Parallel()

	t.Run("natural column order", func(t *testing.T) {
		t.Parallel()

		rows := []Record{NewRecord(Field{Key: "a", Value: 1}, Field{Key: "b", Value: 2})}
		got, err := ToCSV(NewSpec(rows, ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := "a,b\r\n\"1\",\"2\"\r\n"
		if got != expected {
			t.Errorf("got %q, expected %q", got, expected)
		}
	})

	t.Run("every line ends with CRLF and no trailing comma", func(t *testing.T) {
		t.Parallel()

		rows := []Record{
			NewRecord(Field{Key: "x", Value: "1"}, Field{Key: "y", Value: "2"}),
			NewRecord(Field{Key: "x", Value: "3"}, Field{Key: "y", Value: "4"}),
		}
		got, err := ToCSV(NewSpec(rows, "f"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(got, "\r\n") {
			t.Fatal("expected output to end with CRLF")
		}
		lines := strings.Split(strings.TrimSuffix(got, "\r\n"), "\r\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		for _, l := range lines {
			if strings.HasSuffix(l, ",") {
				t.Errorf("line %q has a trailing comma", l)
			}
		}
	})

	t.Run("explicit columns select and title fields", func(t *testing.T) {
		t.Parallel()

		rows := []Record{NewRecord(Field{Key: "a", Value: "1"}, Field{Key: "b", Value: "2"})}
		spec := NewSpec(rows, "f", WithColumns([]string{"B", "Missing"}, []string{"b", "zzz"}))
		got, err := ToCSV(spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := "B,Missing\r\n\"2\",\"\"\r\n"
		if got != expected {
			t.Errorf("got %q, expected %q", got, expected)
		}
	})

	t.Run("header can be turned off", func(t *testing.T) {
		t.Parallel()

		rows := []Record{NewRecord(Field{Key: "a", Value: "v"})}
		got, err := ToCSV(NewSpec(rows, "f", WithHeader(false)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "\"v\"\r\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("titles without rows write only the header", func(t *testing.T) {
		t.Parallel()

		got, err := ToCSV(NewSpec(nil, "f", WithColumns([]string{"A", "B"}, nil)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "A,B\r\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("formatter overrides values", func(t *testing.T) {
		t.Parallel()

		rows := []Record{NewRecord(Field{Key: "n", Value: 0.5}, Field{Key: "s", Value: "keep"})}
		f := func(key string, value any) (string, bool) {
			if key != "n" {
				return "", false
			}
			return fmt.Sprintf("%.0f%%", value.(float64)*100), true
		}
		got, err := ToCSV(NewSpec(rows, "f", WithFormatter(f)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "n,s\r\n\"50%\",\"keep\"\r\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("nil values are written empty", func(t *testing.T) {
		t.Parallel()

		rows := []Record{NewRecord(Field{Key: "a", Value: nil})}
		got, err := ToCSV(NewSpec(rows, "f"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "a\r\n\"\"\r\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("no rows and no titles returns ErrEmptyDataset", func(t *testing.T) {
		t.Parallel()
		_, err := ToCSV(NewSpec(nil, "f"))
		if !errors.Is(err, model.ErrEmptyDataset) {
			t.Errorf("expected ErrEmptyDataset, got %v", err)
		}
	})

	t.Run("header off with no rows returns ErrEmptyDataset", func(t *testing.T) {
		t.Parallel()
		_, err := ToCSV(NewSpec(nil, "f", WithColumns([]string{"A"}, nil), WithHeader(false)))
		if !errors.Is(err, model.ErrEmptyDataset) {
			t.Errorf("expected ErrEmptyDataset, got %v", err)
		}
	})

	t.Run("title and key length mismatch returns ErrInvalidArgument", func(t *testing.T) {
		t.Parallel()
		rows := []Record{NewRecord(Field{Key: "a", Value: "1"})}
		_, err := ToCSV(NewSpec(rows, "f", WithColumns([]string{"A", "B"}, []string{"a"})))
		if !errors.Is(err, model.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

// TestToCSVRoundTrip tests that escaping-free values survive a naive parse.
func TestToCSVRoundTrip(t *testing.T) {
	t.Parallel()

	rows := []Record{
		NewRecord(Field{Key: "name", Value: "alice"}, Field{Key: "score", Value: 10}),
		NewRecord(Field{Key: "name", Value: "bob"}, Field{Key: "score", Value: 7}),
	}
	text, err := ToCSV(NewSpec(rows, "f"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n")
	header := strings.Split(lines[0], ",")
	for i, line := range lines[1:] {
		values := strings.Split(line, ",")
		if len(values) != len(header) {
			t.Fatalf("row %d has %d fields, expected %d", i, len(values), len(header))
		}
		for j, key := range header {
			want, _ := rows[i].Get(key)
			got := strings.Trim(values[j], `"`)
			if got != fmt.Sprint(want) {
				t.Errorf("row %d %s = %q, expected %v", i, key, got, want)
			}
		}
	}
}

// TestRecord tests key ordering of records.
func TestRecord(t *testing.T) {
	t.Parallel()

	r := NewRecord(Field{Key: "b", Value: 1}, Field{Key: "a", Value: 2})
	r.Set("b", 3)
	r.Set("c", 4)

	keys := r.Keys()
	if strings.Join(keys, ",") != "b,a,c" {
		t.Errorf("unexpected key order %v", keys)
	}
	if v, ok := r.Get("b"); !ok || v != 3 {
		t.Errorf("expected b=3, got %v (%v)", v, ok)
	}
	if _, ok := r.Get("zzz"); ok {
		t.Error("expected missing key to be absent")
	}
	if r.Len() != 3 {
		t.Errorf("expected 3 fields, got %d", r.Len())
	}
}

// TestNeedsEscaping tests detection of unsafe characters.
func TestNeedsEscaping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		expected bool
	}{
		{"plain", false},
		{"中文", false},
		{"a,b", true},
		{`say "hi"`, true},
		{"two\nlines", true},
	}
	for _, tt := range tests {
		if got := NeedsEscaping(tt.text); got != tt.expected {
			t.Errorf("NeedsEscaping(%q) = %v, expected %v", tt.text, got, tt.expected)
		}
	}
}

// TestSpecBaseName tests the default file name.
func TestSpecBaseName(t *testing.T) {
	t.Parallel()

	if got := NewSpec(nil, "").BaseName(); got != DefaultFileName {
		t.Errorf("expected %q, got %q", DefaultFileName, got)
	}
	if got := NewSpec(nil, "report").BaseName(); got != "report" {
		t.Errorf("expected report, got %q", got)
	}
}
