// Package report renders run and database summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output for sharing and documentation
//   - JSONWriter: Structured JSON output for tool integration
//
// All writers render a Summary, which is built from a pipeline run and,
// optionally, the contents of the restaurant database.
package report
