package model

import (
	"encoding/json"
	"fmt"
)

// AnalysisResult is the backend's analysis of one question.
// Choice questions use Counts (one per option, same order); free-text
// questions use Origins (one raw answer per respondent who answered).
type AnalysisResult struct {
	Counts  []int    `json:"count"`
	Origins []string `json:"origin"`
}

// Validate checks the result against the question it belongs to.
func (r AnalysisResult) Validate(q Question) error {
	if !q.Type.IsChoice() {
		return nil
	}
	if len(r.Counts) != len(q.Options) {
		return fmt.Errorf("%w: question %d has %d options but %d counts",
			ErrMalformedResponse, q.Index, len(q.Options), len(r.Counts))
	}
	for i, c := range r.Counts {
		if c < 0 {
			return fmt.Errorf("%w: question %d option %d has negative count %d",
				ErrMalformedResponse, q.Index, i, c)
		}
	}
	return nil
}

// PayloadQuestion is one element of the backend's "result" array: the
// question definition with its analysis attached.
type PayloadQuestion struct {
	Title    string          `json:"title"`
	Type     QuestionType    `json:"type"`
	Options  []string        `json:"options"`
	Analysis *AnalysisResult `json:"analysis"`
}

// Payload is the body of GET <endpoint>/{id}/analysis/.
type Payload struct {
	// Sum is the number of answer sheets the analysis was computed from.
	Sum int `json:"sum"`

	// Result holds one entry per question in display order.
	Result []PayloadQuestion `json:"result"`
}

// payloadEnvelope distinguishes a missing "result" from an empty one.
type payloadEnvelope struct {
	Sum    int                `json:"sum"`
	Result *[]PayloadQuestion `json:"result"`
}

// DecodePayload parses and validates a raw analysis body.
// Any shape other than {sum, result: [...]} is ErrMalformedResponse.
func DecodePayload(data []byte) (*Payload, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Result == nil {
		return nil, fmt.Errorf("%w: missing \"result\" field", ErrMalformedResponse)
	}

	p := &Payload{Sum: env.Sum, Result: *env.Result}
	if _, _, err := p.Split(); err != nil {
		return nil, err
	}
	return p, nil
}

// Split separates the payload into validated questions and their results.
// Both slices have the same length and order.
func (p *Payload) Split() ([]Question, []AnalysisResult, error) {
	questions := make([]Question, 0, len(p.Result))
	results := make([]AnalysisResult, 0, len(p.Result))

	for i, pq := range p.Result {
		if pq.Analysis == nil {
			return nil, nil, fmt.Errorf("%w: question %d has no \"analysis\" field", ErrMalformedResponse, i)
		}
		options := pq.Options
		if pq.Type == FreeText {
			// The backend echoes an empty options list for free text.
			options = nil
		}
		q, err := NewQuestion(i, pq.Title, pq.Type, options)
		if err != nil {
			return nil, nil, err
		}
		if err := pq.Analysis.Validate(q); err != nil {
			return nil, nil, err
		}
		questions = append(questions, q)
		results = append(results, *pq.Analysis)
	}

	return questions, results, nil
}
