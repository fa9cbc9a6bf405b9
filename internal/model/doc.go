// Package model defines the core data structures used throughout paperstat.
//
// This package contains the following main types:
//   - Question and QuestionType: one survey question as delivered by the backend
//   - AnalysisResult and Payload: the backend's per-question analysis
//   - StatRow and QuestionStats: display-ready statistics rows
//   - Series: chart series handed to a chart renderer
//   - AnswerIndex: raw free-text answers keyed by question, used by keyword search
//   - SurveyReport: everything known about one survey after a load
//
// Models live in their own package so that the backend, stats, report and
// database packages can share them without import cycles. All of them are
// serializable to JSON for report output and snapshot storage.
package model
