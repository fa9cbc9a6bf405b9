// Package chart hands aggregated series to a chart-rendering facility.
//
// paperstat does not draw charts itself. Aggregation produces model.Series
// values and Dispatch forwards each one to a Renderer: pie series go to
// Renderer.Pie, bar and line series go to Renderer.Categorical. What the
// renderer does with them (mermaid blocks in a Markdown report, a recording
// for tests) is its own business.
package chart
