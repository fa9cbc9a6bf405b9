package model

import "strconv"

// StatRow is one display-ready line of the statistics table:
// an option (or a distinct free-text answer) of a question with its count.
type StatRow struct {
	QuestionIndex int          `json:"question_index"`
	QuestionTitle string       `json:"question_title"`
	QuestionType  QuestionType `json:"question_type"`
	OptionLabel   string       `json:"option_label"`
	Count         int          `json:"count"`

	// Percentage is Count over the question's total, times 100,
	// rounded half away from zero to two decimals.
	Percentage float64 `json:"percentage"`
}

// PercentText formats the percentage with exactly two decimals, e.g. "66.67".
func (r StatRow) PercentText() string {
	return strconv.FormatFloat(r.Percentage, 'f', 2, 64)
}

// QuestionStats groups the rows contributed by one question.
type QuestionStats struct {
	Question Question  `json:"question"`
	Rows     []StatRow `json:"rows"`

	// Total is the denominator used for the question's percentages:
	// the sum of its row counts.
	Total int `json:"total"`

	// Respondents is the number of raw free-text answers. Zero for choice questions.
	Respondents int `json:"respondents,omitempty"`
}
