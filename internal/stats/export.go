package stats

import (
	"strconv"
	"strings"

	"github.com/nao1215/paperstat/internal/csvexport"
	"github.com/nao1215/paperstat/internal/model"
)

// Column names of the statistics export, in order.
const (
	ColumnNumber    = "序号"
	ColumnTitle     = "问题名称"
	ColumnType      = "问题类型"
	ColumnOption    = "选项"
	ColumnStatistic = "统计"
)

// ExportColumns returns the export column names in order.
func ExportColumns() []string {
	return []string{ColumnNumber, ColumnTitle, ColumnType, ColumnOption, ColumnStatistic}
}

// ExportRecords flattens question statistics into CSV records, shaped like
// the statistics table: only the first row of a question carries its 1-based
// number, title and type; every row carries its option and "count|pct%".
func ExportRecords(questions []model.QuestionStats) []csvexport.Record {
	var records []csvexport.Record
	for _, qs := range questions {
		for i, row := range qs.Rows {
			number, title, typ := "", "", ""
			if i == 0 {
				number = strconv.Itoa(qs.Question.Index + 1)
				title = qs.Question.Title
				typ = qs.Question.Type.Label()
			}
			records = append(records, csvexport.NewRecord(
				csvexport.Field{Key: ColumnNumber, Value: number},
				csvexport.Field{Key: ColumnTitle, Value: title},
				csvexport.Field{Key: ColumnType, Value: typ},
				csvexport.Field{Key: ColumnOption, Value: row.OptionLabel},
				csvexport.Field{Key: ColumnStatistic, Value: strconv.Itoa(row.Count) + "|" + row.PercentText() + "%"},
			))
		}
	}
	return records
}

// UnescapedQuestion is a question whose exported text contains quotes,
// commas or line breaks. The CSV dialect writes them as-is, so spreadsheet
// tools split those rows into the wrong columns.
type UnescapedQuestion struct {
	// Number is the 1-based question number.
	Number int
	Title  string

	// Values holds the affected title and option labels.
	Values []string
}

// UnescapedValues lists the questions, in order, that would not survive
// the export intact.
func UnescapedValues(questions []model.QuestionStats) []UnescapedQuestion {
	var found []UnescapedQuestion
	for _, qs := range questions {
		var values []string
		if len(qs.Rows) > 0 && csvexport.NeedsEscaping(qs.Question.Title) {
			values = append(values, qs.Question.Title)
		}
		for _, row := range qs.Rows {
			if csvexport.NeedsEscaping(row.OptionLabel) {
				values = append(values, row.OptionLabel)
			}
		}
		if len(values) > 0 {
			found = append(found, UnescapedQuestion{
				Number: qs.Question.Index + 1,
				Title:  qs.Question.Title,
				Values: values,
			})
		}
	}
	return found
}

// ExportFileNameSuffix is appended to the survey title to name the export.
const ExportFileNameSuffix = "统计表格"

// ExportFileName returns the base name of a statistics export.
// Without a title it is csvexport.DefaultFileName.
func ExportFileName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return csvexport.DefaultFileName
	}
	return title + ExportFileNameSuffix
}

// ExportSpec builds the CSV spec of the statistics table.
func ExportSpec(questions []model.QuestionStats, title string) *csvexport.Spec {
	columns := ExportColumns()
	return csvexport.NewSpec(ExportRecords(questions), ExportFileName(title),
		csvexport.WithColumns(columns, columns))
}
