// Package pipeline loads and aggregates surveys as a sequence of steps.
//
// A survey goes through fetching (from the backend, or from a stored snapshot
// when offline), optional persistence and aggregation. Each stage is a Step
// that receives the current report and fills in its part.
//
// BatchProcessor runs one pipeline per survey with bounded concurrency
// using errgroup. Every survey gets its own report and answer index.
package pipeline
