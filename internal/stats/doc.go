// Package stats turns a survey analysis payload into display rows, chart
// series and a free-text answer index, and runs keyword searches over that
// index.
//
// Percentages use one rule for every question type: a row's count over the
// sum of the counts of its question, times 100, rounded half away from zero
// to two decimals. For free-text questions that sum is the number of answers
// given. A zero denominator yields 0, never NaN.
package stats
