package model

import (
	"fmt"
	"strconv"
)

// QuestionType is the kind of a survey question.
// The numeric values are the ones used on the wire by the survey backend.
type QuestionType int

const (
	// FreeText is a question answered with an arbitrary string.
	FreeText QuestionType = iota

	// SingleChoice is a question answered by picking one option.
	SingleChoice

	// MultiChoice is a question answered by picking any number of options.
	MultiChoice
)

// typeLabels are the labels shown in the statistics table and the CSV export.
var typeLabels = map[QuestionType]string{
	FreeText:     "问答题",
	SingleChoice: "单选题",
	MultiChoice:  "多选题",
}

// Label returns the display label of the question type.
func (t QuestionType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return "未知"
}

// String returns a stable English name, used in logs and JSON.
func (t QuestionType) String() string {
	switch t {
	case FreeText:
		return "free_text"
	case SingleChoice:
		return "single_choice"
	case MultiChoice:
		return "multi_choice"
	default:
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// IsChoice reports whether the question is answered from a fixed option list.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

// Question is one survey question.
type Question struct {
	// Index is the 0-based position of the question in the survey.
	Index int `json:"index"`

	// Title is the question text.
	Title string `json:"title"`

	// Type tells how the question is answered.
	Type QuestionType `json:"type"`

	// Options lists the choices in display order. Empty for FreeText.
	Options []string `json:"options,omitempty"`
}

// NewQuestion builds a validated Question.
// Free-text questions must not carry options; the type must be known.
func NewQuestion(index int, title string, typ QuestionType, options []string) (Question, error) {
	if !typ.Valid() {
		return Question{}, fmt.Errorf("%w: question %d has unknown type %d", ErrMalformedResponse, index, int(typ))
	}
	if typ == FreeText && len(options) > 0 {
		return Question{}, fmt.Errorf("%w: free-text question %d has %d options", ErrMalformedResponse, index, len(options))
	}
	return Question{
		Index:   index,
		Title:   title,
		Type:    typ,
		Options: options,
	}, nil
}

// Key returns the key under which the question's raw answers are indexed.
func (q Question) Key() string {
	return QuestionKey(q.Index)
}

// QuestionKey returns the index key for the question at position index.
func QuestionKey(index int) string {
	return "ques" + strconv.Itoa(index)
}
