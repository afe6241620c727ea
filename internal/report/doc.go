// Package report renders analysis results for output.
//
// This package contains writers for different output formats:
//   - TextWriter: Fixed-width plain text tables for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown tables
//   - JSONWriter: Structured JSON for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. A writer renders
// one Section of the report; the full model.Report always carries every
// aggregation, so the same report can be rendered through several writers
// without re-analyzing the input.
package report
