// Package main provides the entry point for the paperstat CLI.
//
// paperstat fetches the answer analysis of a survey from the survey admin
// API and turns it into statistics tables, chart data and CSV exports.
//
// Usage:
//
//	paperstat stats <survey-id>...
//	paperstat export <survey-id>
//	paperstat search <survey-id> --question ques0 --keyword foo
//
// See --help for all available options.
package main

// main is the entry point for paperstat.
func main() {
	Execute()
}
