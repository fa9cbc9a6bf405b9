package stats

import (
	"fmt"
	"strings"

	"github.com/nao1215/paperstat/internal/model"
)

// SearchResult is the outcome of a keyword search over one question's answers.
type SearchResult struct {
	QuestionKey string  `json:"question_key"`
	Keyword     string  `json:"keyword"`
	MatchCount  int     `json:"match_count"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
}

// Search counts the answers of questionKey that contain keyword as a
// case-sensitive substring. Nothing is normalized or tokenized.
//
// It fails with model.ErrInvalidArgument for an empty keyword or a key that
// is not in the index. A question with no answers yields a 0 percentage.
func Search(index model.AnswerIndex, questionKey, keyword string) (SearchResult, error) {
	if keyword == "" {
		return SearchResult{}, fmt.Errorf("%w: keyword must not be empty", model.ErrInvalidArgument)
	}
	answers, ok := index[questionKey]
	if !ok {
		return SearchResult{}, fmt.Errorf("%w: unknown question key %q", model.ErrInvalidArgument, questionKey)
	}

	matches := 0
	for _, a := range answers {
		if strings.Contains(a, keyword) {
			matches++
		}
	}

	return SearchResult{
		QuestionKey: questionKey,
		Keyword:     keyword,
		MatchCount:  matches,
		Total:       len(answers),
		Percentage:  Percent(matches, len(answers)),
	}, nil
}
