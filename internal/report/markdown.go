package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/forskolor/internal/model"
)

// maxChartSlices caps the number of regions drawn in the pie chart.
// Smaller regions are merged into one "Övriga" slice.
const maxChartSlices = 8

// MarkdownWriter outputs reports in Markdown format, for pasting into an
// issue or keeping next to the CSV file.
type MarkdownWriter struct {
	baseWriter

	// titleCaser normalizes region labels, which the directory spells
	// inconsistently.
	titleCaser cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titleCaser: cases.Title(language.Swedish),
	}
}

// Write outputs the report of a finished run in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	return w.WriteSummary(model.NewRunSummary(report))
}

// WriteSummary outputs summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeRegions(md, summary)
	w.writeRoles(md, summary)
	w.writeFailedUnits(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.RunSummary) {
	md.H1("Forskolor Harvest Report")
	md.PlainText("")

	rows := [][]string{
		{"Directory", "`" + s.RootURL + "`"},
		{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Duration", (time.Duration(s.DurationMS) * time.Millisecond).String()},
		{"Status", statusText(s)},
		{"CSV File", "`" + orDash(s.CSVPath) + "`"},
	}
	if s.CSVDigest != "" {
		rows = append(rows, []string{"SHA3-256", "`" + s.CSVDigest + "`"})
	}
	if s.RunID != 0 {
		rows = append(rows, []string{"Run ID", strconv.FormatInt(s.RunID, 10)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case s.TimedOut:
		md.Warningf("The run hit its deadline. The CSV file holds the contacts collected up to that point.")
		md.PlainText("")
	case s.Error != "":
		md.Cautionf("The run was aborted: %s", s.Error)
		md.PlainText("")
	}
}

// writeCounts writes the crawl and contact counters.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *model.RunSummary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Listing pages fetched", strconv.Itoa(s.PagesFetched)},
			{"Pages without data", strconv.Itoa(s.EmptyPages)},
			{"Preschools listed", strconv.Itoa(s.UnitsSeen)},
			{"Preschools scraped", strconv.Itoa(s.UnitsScraped)},
			{"Preschools skipped", strconv.Itoa(s.UnitsFailed)},
			{"Contacts found", strconv.Itoa(s.ContactsFound)},
			{"Contacts without name", strconv.Itoa(s.ContactsWithoutName)},
			{"Contacts without role", strconv.Itoa(s.ContactsWithoutRole)},
			{"**Unique e-mails**", "**" + strconv.Itoa(s.UniqueEmails) + "**"},
		},
	})
	md.PlainText("")

	if s.UniqueEmails == 0 && s.Error == "" {
		md.Note("No contacts were harvested. Check the directory URL and page count.")
		md.PlainText("")
	}
}

// writeRegions writes the per-region table and pie chart.
func (w *MarkdownWriter) writeRegions(md *markdown.Markdown, s *model.RunSummary) {
	if len(s.Regions) == 0 {
		return
	}

	md.H2("Contacts by Region")
	md.PlainText("")

	rows := make([][]string, len(s.Regions))
	for i, r := range s.Regions {
		rows[i] = []string{w.regionLabel(r.Label), strconv.Itoa(r.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Region", "Contacts"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, s.Regions)
}

// writePieChart writes a mermaid pie chart of the region distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, regions []model.LabelCount) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Contacts by Region"),
		piechart.WithShowData(true),
	)

	other := 0
	for i, r := range regions {
		if i >= maxChartSlices-1 && len(regions) > maxChartSlices {
			other += r.Count
			continue
		}
		chart.LabelAndIntValue(w.regionLabel(r.Label), uint64(r.Count)) //nolint:gosec // counts are non-negative
	}
	if other > 0 {
		chart.LabelAndIntValue("Övriga", uint64(other)) //nolint:gosec // counts are non-negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// regionLabel title-cases a region name using Swedish casing rules.
func (w *MarkdownWriter) regionLabel(label string) string {
	if label == model.UnknownLabel {
		return label
	}
	return w.titleCaser.String(label)
}

// writeRoles writes the per-role table.
func (w *MarkdownWriter) writeRoles(md *markdown.Markdown, s *model.RunSummary) {
	if len(s.Roles) == 0 {
		return
	}

	md.H2("Contacts by Role")
	md.PlainText("")

	rows := make([][]string, len(s.Roles))
	for i, r := range s.Roles {
		rows[i] = []string{r.Label, strconv.Itoa(r.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Role", "Contacts"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailedUnits lists the preschools that were skipped.
func (w *MarkdownWriter) writeFailedUnits(md *markdown.Markdown, s *model.RunSummary) {
	if len(s.FailedUnits) == 0 {
		return
	}

	md.H2("Skipped Preschools")
	md.PlainText("")
	md.Warningf("%d preschool page(s) could not be scraped and are missing from the CSV file.", len(s.FailedUnits))
	md.PlainText("")

	rows := make([][]string, len(s.FailedUnits))
	for i, f := range s.FailedUnits {
		rows[i] = []string{f.Name, "`" + f.Link + "`", truncateString(f.Error, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Preschool", "Link", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteDiff outputs the contact differences between two runs in Markdown.
func (w *MarkdownWriter) WriteDiff(diff *model.ContactDiff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Forskolor Run Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Old run", strconv.FormatInt(diff.OldRunID, 10)},
			{"New run", strconv.FormatInt(diff.NewRunID, 10)},
			{"Added", strconv.Itoa(len(diff.Added))},
			{"Removed", strconv.Itoa(len(diff.Removed))},
			{"Changed", strconv.Itoa(len(diff.Changed))},
			{"Unchanged", strconv.Itoa(diff.Unchanged)},
		},
	})
	md.PlainText("")

	if !diff.HasChanges() {
		md.Tip("No contact changes between the two runs.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	writeRowSection(md, "Added Contacts", diff.Added)
	writeRowSection(md, "Removed Contacts", diff.Removed)

	if len(diff.Changed) > 0 {
		md.H2("Changed Contacts")
		md.PlainText("")
		rows := make([][]string, len(diff.Changed))
		for i, c := range diff.Changed {
			rows[i] = []string{
				c.Email,
				changeCell(c.Old.Preschool, c.New.Preschool),
				changeCell(c.Old.Name, c.New.Name),
				changeCell(c.Old.Role, c.New.Role),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"E-mail", "Preschool", "Name", "Role"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func writeRowSection(md *markdown.Markdown, title string, rows []model.CsvRow) {
	if len(rows) == 0 {
		return
	}
	md.H2(title)
	md.PlainText("")
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Email, r.Preschool, r.Name, orDash(r.Role)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"E-mail", "Preschool", "Name", "Role"},
		Rows:   cells,
	})
	md.PlainText("")
}

// changeCell renders "old → new", or the value alone when it did not change.
func changeCell(oldValue, newValue string) string {
	if oldValue == newValue {
		return orDash(newValue)
	}
	return orDash(oldValue) + " → " + orDash(newValue)
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [forskolor](https://github.com/nao1215/forskolor)*")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
