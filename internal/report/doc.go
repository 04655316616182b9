// Package report renders harvest runs for people and scripts.
//
// Writers implement the Writer interface and share one input, the
// model.RunSummary derived from a finished run:
//   - SimpleWriter: rounded terminal tables (go-pretty)
//   - JSONWriter: the summary as JSON, optionally wrapped with a version
//   - MarkdownWriter: a Markdown document with a mermaid pie chart of
//     contacts per region
//
// Every writer can also render a model.ContactDiff produced by comparing two
// archived runs. WriteHistory renders the run archive listing.
//
// Harvested e-mail addresses never appear in a run report; they appear only
// in a diff, where the changed contacts are the point of the output.
package report
