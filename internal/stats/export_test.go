package stats

import (
	"strings"
	"testing"

	"github.com/nao1215/paperstat/internal/csvexport"
	"github.com/nao1215/paperstat/internal/model"
)

// TestExportRecords tests the shape of the statistics export.
func TestExportRecords(t *testing.T) {
	t.Parallel()

	questions := []model.Question{
		mustQuestion(t, 0, "Pick", model.SingleChoice, []string{"A", "B"}),
		mustQuestion(t, 1, "Why", model.FreeText, nil),
	}
	res, err := Aggregate(questions, []model.AnalysisResult{
		{Counts: []int{1, 3}},
		{Origins: []string{"ok"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := ExportRecords(res.Questions)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	t.Run("first row of a question carries its metadata", func(t *testing.T) {
		t.Parallel()

		checks := map[string]string{
			ColumnNumber:    "1",
			ColumnTitle:     "Pick",
			ColumnType:      "单选题",
			ColumnOption:    "A",
			ColumnStatistic: "1|25.00%",
		}
		for key, expected := range checks {
			v, _ := records[0].Get(key)
			if v != expected {
				t.Errorf("%s = %v, expected %q", key, v, expected)
			}
		}
	})

	t.Run("following rows leave metadata blank", func(t *testing.T) {
		t.Parallel()

		for _, key := range []string{ColumnNumber, ColumnTitle, ColumnType} {
			v, _ := records[1].Get(key)
			if v != "" {
				t.Errorf("%s = %v, expected blank", key, v)
			}
		}
		v, _ := records[2].Get(ColumnNumber)
		if v != "2" {
			t.Errorf("expected second question numbered 2, got %v", v)
		}
	})

	t.Run("renders with the natural column order", func(t *testing.T) {
		t.Parallel()

		text, err := csvexport.ToCSV(csvexport.NewSpec(records, "stats"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		header := strings.SplitN(text, "\r\n", 2)[0]
		if header != strings.Join(ExportColumns(), ",") {
			t.Errorf("unexpected header %q", header)
		}
	})
}

// TestUnescapedValues tests detection of text the export writes unescaped.
func TestUnescapedValues(t *testing.T) {
	t.Parallel()

	questions := []model.Question{
		mustQuestion(t, 0, "Pick", model.SingleChoice, []string{"A", "B"}),
		mustQuestion(t, 1, "Why", model.FreeText, nil),
		mustQuestion(t, 2, "Size, in cm", model.FreeText, nil),
	}
	res, err := Aggregate(questions, []model.AnalysisResult{
		{Counts: []int{1, 1}},
		{Origins: []string{"fine", "red, green", `say "hi"`, "fine"}},
		{Origins: []string{"12"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := UnescapedValues(res.Questions)
	if len(found) != 2 {
		t.Fatalf("expected 2 affected questions, got %+v", found)
	}
	if found[0].Number != 2 || found[0].Title != "Why" {
		t.Errorf("unexpected first question %+v", found[0])
	}
	if len(found[0].Values) != 2 || found[0].Values[0] != "red, green" || found[0].Values[1] != `say "hi"` {
		t.Errorf("unexpected values %q", found[0].Values)
	}
	if found[1].Number != 3 || len(found[1].Values) != 1 || found[1].Values[0] != "Size, in cm" {
		t.Errorf("expected the title of question 3, got %+v", found[1])
	}

	t.Run("clean export has nothing to report", func(t *testing.T) {
		t.Parallel()

		if got := UnescapedValues(res.Questions[:1]); len(got) != 0 {
			t.Errorf("expected nothing, got %+v", got)
		}
	})
}

// TestExportFileName tests naming of exports.
func TestExportFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"", csvexport.DefaultFileName},
		{"   ", csvexport.DefaultFileName},
		{"满意度调查", "满意度调查统计表格"},
	}
	for _, tt := range tests {
		if got := ExportFileName(tt.title); got != tt.want {
			t.Errorf("ExportFileName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

// TestExportSpec tests the spec built for a survey.
func TestExportSpec(t *testing.T) {
	t.Parallel()

	q := mustQuestion(t, 0, "Pick", model.SingleChoice, []string{"A"})
	res, err := Aggregate([]model.Question{q}, []model.AnalysisResult{{Counts: []int{2}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spec := ExportSpec(res.Questions, "Survey")
	if spec.BaseName() != "Survey统计表格" {
		t.Errorf("unexpected base name %q", spec.BaseName())
	}
	text, err := csvexport.ToCSV(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "序号,问题名称,问题类型,选项,统计\r\n\"1\",\"Pick\",\"单选题\",\"A\",\"2|100.00%\"\r\n"
	if text != want {
		t.Errorf("ToCSV() = %q, want %q", text, want)
	}
}
