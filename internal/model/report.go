package model

import "time"

// SurveyReport is the result of loading and aggregating one survey.
// Pipeline steps fill it in order: the fetch (or snapshot load) sets Payload,
// the aggregation sets Questions, Rows, Series and Index.
type SurveyReport struct {
	// SurveyID is the backend identifier of the survey ("paper id").
	SurveyID string `json:"survey_id"`

	// Title and Description are display metadata supplied by the caller.
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// DateLoaded is when the payload was fetched or read from a snapshot.
	DateLoaded time.Time `json:"date_loaded"`

	// FromSnapshot is true when the payload came from the local database.
	FromSnapshot bool `json:"from_snapshot,omitempty"`

	// Payload is the decoded analysis as delivered by the backend.
	Payload *Payload `json:"-"`

	// RawPayload is the undecoded response body, kept for snapshots.
	RawPayload []byte `json:"-"`

	// Respondents is the backend's answer-sheet count ("sum").
	Respondents int `json:"respondents"`

	Questions []QuestionStats `json:"questions"`
	Rows      []StatRow       `json:"rows"`
	Series    []Series        `json:"series"`
	Index     AnswerIndex     `json:"-"`

	// Error holds the failure of the last failing step, if any.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`

	// TimedOut is set when the load was cancelled before completion.
	TimedOut bool `json:"timed_out,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewSurveyReport creates an empty report for the given survey.
func NewSurveyReport(surveyID string) *SurveyReport {
	return &SurveyReport{
		SurveyID:   surveyID,
		DateLoaded: time.Now(),
		Index:      make(AnswerIndex),
	}
}

// DisplayTitle returns the title, falling back to the survey id.
func (r *SurveyReport) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return "Survey " + r.SurveyID
}

// FreeTextQuestions returns the free-text questions, in order.
// These are the questions keyword search can be run against.
func (r *SurveyReport) FreeTextQuestions() []Question {
	var qs []Question
	for _, s := range r.Questions {
		if s.Question.Type == FreeText {
			qs = append(qs, s.Question)
		}
	}
	return qs
}
