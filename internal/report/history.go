package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nao1215/forskolor/internal/database"
)

// WriteHistory renders archived runs as a table, in the order given.
func WriteHistory(output io.Writer, runs []database.RunRecord) (int, error) {
	if len(runs) == 0 {
		return io.WriteString(output, "No archived runs.\n")
	}

	t := newTable("")
	t.AppendHeader(table.Row{"Run", "Started", "Pages", "Scraped", "Skipped", "E-mails", "CSV file"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.PagesFetched,
			r.UnitsScraped,
			r.UnitsFailed,
			r.RowCount,
			orDash(r.CSVPath),
		})
	}

	return io.WriteString(output, t.Render()+"\n")
}
