package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/forskolor/internal/model"
)

// SimpleWriter outputs human-readable tables for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections without entries are shown.
	// The CLI enables it together with verbose.
	showEmpty bool

	// verbose adds the role breakdown and error details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// newTable returns a table writer in the style used by every section.
// The first column is at least as wide as the title, so narrow tables never
// wrap it.
func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, WidthMin: text.RuneWidthWithoutEscSequences(title)},
		})
	}
	return t
}

// Write outputs the report of a finished run.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	return w.WriteSummary(model.NewRunSummary(report))
}

// WriteSummary outputs summary as terminal tables.
func (w *SimpleWriter) WriteSummary(s *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeOverview(&sb, s)
	w.writeLabelCounts(&sb, "CONTACTS BY REGION", "Region", s.Regions)
	if w.verbose {
		w.writeLabelCounts(&sb, "CONTACTS BY ROLE", "Role", s.Roles)
	}
	w.writeFailedUnits(&sb, s)

	return io.WriteString(w.output, sb.String())
}

// writeOverview writes the run information and counters.
func (w *SimpleWriter) writeOverview(sb *strings.Builder, s *model.RunSummary) {
	t := newTable("FORSKOLOR HARVEST REPORT")
	t.AppendRows([]table.Row{
		{"Directory", s.RootURL},
		{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", (time.Duration(s.DurationMS) * time.Millisecond).String()},
		{"Status", statusText(s)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Pages fetched", s.PagesFetched},
		{"Pages without data", s.EmptyPages},
		{"Preschools listed", s.UnitsSeen},
		{"Preschools scraped", s.UnitsScraped},
		{"Preschools skipped", s.UnitsFailed},
		{"Contacts found", s.ContactsFound},
		{"Unique e-mails", s.UniqueEmails},
	})
	if w.verbose {
		t.AppendRows([]table.Row{
			{"Without name", s.ContactsWithoutName},
			{"Without role", s.ContactsWithoutRole},
		})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"CSV file", orDash(s.CSVPath)})
	if s.CSVDigest != "" {
		t.AppendRow(table.Row{"SHA3-256", s.CSVDigest})
	}
	if s.RunID != 0 {
		t.AppendRow(table.Row{"Run ID", s.RunID})
	}

	sb.WriteString(t.Render())
	sb.WriteString("\n")
}

// writeLabelCounts writes a two column count table.
func (w *SimpleWriter) writeLabelCounts(sb *strings.Builder, title, column string, counts []model.LabelCount) {
	if len(counts) == 0 && !w.showEmpty {
		return
	}

	t := newTable(title)
	t.AppendHeader(table.Row{column, "Contacts"})
	for _, c := range counts {
		t.AppendRow(table.Row{c.Label, c.Count})
	}
	if len(counts) == 0 {
		t.AppendRow(table.Row{"none", 0})
	}

	sb.WriteString(t.Render())
	sb.WriteString("\n")
}

// writeFailedUnits lists skipped preschools.
func (w *SimpleWriter) writeFailedUnits(sb *strings.Builder, s *model.RunSummary) {
	if len(s.FailedUnits) == 0 && !w.showEmpty {
		return
	}

	t := newTable("SKIPPED PRESCHOOLS")
	header := table.Row{"Preschool", "Link"}
	if w.verbose {
		header = append(header, "Error")
	}
	t.AppendHeader(header)
	for _, f := range s.FailedUnits {
		row := table.Row{f.Name, f.Link}
		if w.verbose {
			row = append(row, truncateString(f.Error, 60))
		}
		t.AppendRow(row)
	}

	sb.WriteString(t.Render())
	sb.WriteString("\n")
}

// WriteDiff outputs the contact differences between two runs.
func (w *SimpleWriter) WriteDiff(diff *model.ContactDiff) (int, error) {
	var sb strings.Builder

	t := newTable(fmt.Sprintf("RUN %d → RUN %d", diff.OldRunID, diff.NewRunID))
	t.AppendRows([]table.Row{
		{"Added", len(diff.Added)},
		{"Removed", len(diff.Removed)},
		{"Changed", len(diff.Changed)},
		{"Unchanged", diff.Unchanged},
	})
	sb.WriteString(t.Render())
	sb.WriteString("\n")

	if !diff.HasChanges() {
		sb.WriteString("No contact changes.\n")
		return io.WriteString(w.output, sb.String())
	}

	changes := newTable("CONTACT CHANGES")
	changes.AppendHeader(table.Row{"", "E-mail", "Preschool", "Name", "Role"})
	for _, r := range diff.Added {
		changes.AppendRow(table.Row{"+", r.Email, r.Preschool, r.Name, orDash(r.Role)})
	}
	for _, r := range diff.Removed {
		changes.AppendRow(table.Row{"-", r.Email, r.Preschool, r.Name, orDash(r.Role)})
	}
	for _, c := range diff.Changed {
		changes.AppendRow(table.Row{
			"~",
			c.Email,
			changeCell(c.Old.Preschool, c.New.Preschool),
			changeCell(c.Old.Name, c.New.Name),
			changeCell(c.Old.Role, c.New.Role),
		})
	}
	sb.WriteString(changes.Render())
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}
