// Package report renders aggregated survey statistics.
//
// This package contains writers for different output formats:
//   - SimpleWriter: aligned text tables for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: GitHub-flavored Markdown with mermaid pie charts
//   - HTMLWriter: the statistics table with chart containers
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
