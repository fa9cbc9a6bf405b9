package stats

import (
	"fmt"
	"strconv"

	"github.com/nao1215/paperstat/internal/model"
)

// Result is the output of Aggregate.
type Result struct {
	// Questions holds the rows of each question, in question order.
	Questions []model.QuestionStats

	// Rows is every StatRow of every question, flattened in display order.
	Rows []model.StatRow

	// Series is the chart series of every question, in display order.
	Series []model.Series

	// Index holds the raw answers of the free-text questions.
	Index model.AnswerIndex
}

// Aggregate builds statistics rows, chart series and the answer index from
// questions and their analysis results. questions[i] belongs to results[i].
//
// Choice questions produce one row per option (empty labels included) and a
// pie plus a bar series that leave empty-label options out. Free-text
// questions produce one row per distinct answer, in order of first
// appearance, and a pie series over those answers.
func Aggregate(questions []model.Question, results []model.AnalysisResult) (*Result, error) {
	if len(questions) != len(results) {
		return nil, fmt.Errorf("%w: %d questions but %d analysis results",
			model.ErrMalformedResponse, len(questions), len(results))
	}

	out := &Result{
		Questions: make([]model.QuestionStats, 0, len(questions)),
		Index:     make(model.AnswerIndex),
	}

	for i, q := range questions {
		r := results[i]
		if err := r.Validate(q); err != nil {
			return nil, err
		}

		var qs model.QuestionStats
		if q.Type.IsChoice() {
			qs = aggregateChoice(q, r)
			out.Series = append(out.Series, choiceSeries(q, r)...)
		} else {
			var pie model.Series
			qs, pie = aggregateFreeText(q, r)
			out.Series = append(out.Series, pie)
			// Copy so later mutation of the payload cannot change search results.
			out.Index[q.Key()] = append([]string(nil), r.Origins...)
		}

		out.Questions = append(out.Questions, qs)
		out.Rows = append(out.Rows, qs.Rows...)
	}

	return out, nil
}

// aggregateChoice pairs option i with count i.
func aggregateChoice(q model.Question, r model.AnalysisResult) model.QuestionStats {
	total := 0
	for _, c := range r.Counts {
		total += c
	}

	rows := make([]model.StatRow, len(q.Options))
	for i, label := range q.Options {
		rows[i] = newRow(q, label, r.Counts[i], total)
	}

	return model.QuestionStats{Question: q, Rows: rows, Total: total}
}

// choiceSeries returns the pie and bar series of a choice question.
// Both share categories and values; empty labels are left out.
func choiceSeries(q model.Question, r model.AnalysisResult) []model.Series {
	var categories []string
	var values []int
	for i, label := range q.Options {
		if label == "" {
			continue
		}
		categories = append(categories, label)
		values = append(values, r.Counts[i])
	}

	suffix := strconv.Itoa(q.Index)
	return []model.Series{
		{
			ContainerID:   "div-echarts" + suffix,
			QuestionIndex: q.Index,
			Title:         q.Title,
			Kind:          model.ChartPie,
			Categories:    categories,
			Values:        values,
		},
		{
			ContainerID:   "div2-echarts" + suffix,
			QuestionIndex: q.Index,
			Title:         q.Title,
			Kind:          model.ChartBar,
			Categories:    append([]string(nil), categories...),
			Values:        append([]int(nil), values...),
		},
	}
}

// aggregateFreeText groups the answers by exact equality.
func aggregateFreeText(q model.Question, r model.AnalysisResult) (model.QuestionStats, model.Series) {
	order := make([]string, 0)
	counts := make(map[string]int)
	for _, answer := range r.Origins {
		if _, seen := counts[answer]; !seen {
			order = append(order, answer)
		}
		counts[answer]++
	}

	total := len(r.Origins)
	rows := make([]model.StatRow, len(order))
	values := make([]int, len(order))
	for i, answer := range order {
		rows[i] = newRow(q, answer, counts[answer], total)
		values[i] = counts[answer]
	}

	qs := model.QuestionStats{
		Question:    q,
		Rows:        rows,
		Total:       total,
		Respondents: total,
	}
	pie := model.Series{
		ContainerID:   "div-echarts" + strconv.Itoa(q.Index),
		QuestionIndex: q.Index,
		Title:         q.Title,
		Kind:          model.ChartPie,
		Categories:    append([]string(nil), order...),
		Values:        values,
	}
	return qs, pie
}

func newRow(q model.Question, label string, count, total int) model.StatRow {
	return model.StatRow{
		QuestionIndex: q.Index,
		QuestionTitle: q.Title,
		QuestionType:  q.Type,
		OptionLabel:   label,
		Count:         count,
		Percentage:    Percent(count, total),
	}
}

// AggregatePayload splits a backend payload and aggregates it.
func AggregatePayload(p *model.Payload) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload", model.ErrInvalidArgument)
	}
	questions, results, err := p.Split()
	if err != nil {
		return nil, err
	}
	return Aggregate(questions, results)
}

// Apply copies the aggregation into report.
func (r *Result) Apply(report *model.SurveyReport) {
	report.Questions = r.Questions
	report.Rows = r.Rows
	report.Series = r.Series
	report.Index = r.Index
}
