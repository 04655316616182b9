package report

import (
	"io"

	"github.com/nao1215/forskolor/internal/model"
)

// Writer defines the interface for report output.
// Implementations render harvest runs and run comparisons in various formats.
type Writer interface {
	// Write outputs the report of a finished run.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)

	// WriteSummary outputs an already condensed run summary, such as one
	// loaded from the run archive.
	WriteSummary(summary *model.RunSummary) (int, error)

	// WriteDiff outputs the contact differences between two runs.
	WriteDiff(diff *model.ContactDiff) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// This is useful for printing to the terminal and saving a report file in
// the same run.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(report) })
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSummary(summary) })
}

// WriteDiff outputs the diff to all configured Writers.
func (m *MultiWriter) WriteDiff(diff *model.ContactDiff) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteDiff(diff) })
}

func (m *MultiWriter) each(fn func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := fn(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how a run ended.
func statusText(s *model.RunSummary) string {
	switch {
	case s.TimedOut:
		return "Timed out (partial results)"
	case s.Error != "":
		return "Error - " + s.Error
	case s.UnitsFailed > 0:
		return "Complete with skipped units"
	default:
		return "Complete"
	}
}

// orDash returns "-" for empty strings so table cells are never blank.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
