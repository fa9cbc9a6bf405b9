package model

import "sort"

// AnswerIndex maps a question key (see QuestionKey) to the raw free-text
// answers of that question, in the order the backend delivered them.
//
// An index is produced by each aggregation and handed to the caller;
// nothing in paperstat keeps one in package state.
type AnswerIndex map[string][]string

// Keys returns the indexed question keys in question order
// ("ques2" sorts before "ques10").
func (idx AnswerIndex) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
