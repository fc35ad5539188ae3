// Package report renders ranking results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the plain text layout, one "page: rank" line per page
//   - MarkdownWriter: tables, a mermaid pie chart and agreement alerts
//   - JSONWriter / FullJSONWriter: the whole report for other tools
//
// Pages are always listed in page id order. Ranks are rounded for display
// only; JSON output carries the full float64 values.
package report
