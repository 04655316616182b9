package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/forskolor/internal/database"
	"github.com/nao1215/forskolor/internal/model"
)

// createTestReport creates a finished run with two preschools.
func createTestReport() *model.RunReport {
	r := model.NewRunReport("https://forskola.stockholm")
	r.StartedAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	r.FinishedAt = r.StartedAt.Add(90 * time.Second)
	r.PagesFetched = 56
	r.EmptyPages = 1
	r.UnitsSeen = 3

	r.AddPreschool(model.Preschool{
		Name:   "Förskolan Solen",
		Region: "södermalm",
		Link:   "/forskolor/solen",
		Emails: []model.ContactEntry{
			{Email: "anna@forskola.se", Name: "Anna Berg", Role: "Rektor"},
			{Email: "info.solen@forskola.se", Name: model.PlaceholderName},
		},
	})
	r.AddPreschool(model.Preschool{
		Name:   "Förskolan Månen",
		Region: "kungsholmen",
		Link:   "/forskolor/manen",
		Emails: []model.ContactEntry{
			{Email: "anna@forskola.se", Name: "Anna Berg", Role: "Rektor"},
		},
	})
	r.AddFailedUnit("Förskolan Stjärnan", "/forskolor/stjarnan", errors.New("connection reset"))

	r.Rows = []model.CsvRow{
		{Email: "anna@forskola.se", Preschool: "Förskolan Solen", Name: "Anna Berg", Role: "Rektor", Region: "södermalm", Link: "/forskolor/solen"},
		{Email: "info.solen@forskola.se", Preschool: "Förskolan Solen", Name: model.PlaceholderName, Region: "södermalm", Link: "/forskolor/solen"},
	}
	r.CSVPath = "forskolor.csv"
	r.CSVDigest = "abc123"

	return r
}

// createTestDiff creates a diff with one change of each kind.
func createTestDiff() *model.ContactDiff {
	return &model.ContactDiff{
		OldRunID: 1,
		NewRunID: 2,
		Added:    []model.CsvRow{{Email: "new@forskola.se", Preschool: "Förskolan Solen", Name: "Ny Person"}},
		Removed:  []model.CsvRow{{Email: "gone@forskola.se", Preschool: "Förskolan Månen", Name: "-"}},
		Changed: []model.ContactChange{{
			Email: "anna@forskola.se",
			Old:   model.CsvRow{Email: "anna@forskola.se", Preschool: "Förskolan Solen", Name: "Anna Berg", Role: "Förskollärare"},
			New:   model.CsvRow{Email: "anna@forskola.se", Preschool: "Förskolan Solen", Name: "Anna Berg", Role: "Rektor"},
		}},
		Unchanged: 5,
	}
}

// TestSimpleWriter tests the terminal table writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes run overview", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"FORSKOLOR HARVEST REPORT",
			"https://forskola.stockholm",
			"Complete with skipped units",
			"Unique e-mails",
			"forskolor.csv",
			"abc123",
			"1m30s",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("does not print harvested addresses", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "anna@forskola.se") {
			t.Error("expected run report to omit e-mail addresses")
		}
	})

	t.Run("lists skipped preschools", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "SKIPPED PRESCHOOLS") || !strings.Contains(output, "Förskolan Stjärnan") {
			t.Error("expected skipped preschool section")
		}
		if strings.Contains(output, "connection reset") {
			t.Error("expected error details to be hidden without verbose")
		}
	})

	t.Run("verbose mode adds roles and errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"CONTACTS BY ROLE", "Rektor", "connection reset", "Without name"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected verbose output to contain %q", want)
			}
		}
	})

	t.Run("hides empty sections without showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteSummary(&model.RunSummary{RootURL: "http://x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "SKIPPED PRESCHOOLS") || strings.Contains(buf.String(), "CONTACTS BY REGION") {
			t.Error("expected empty sections to be hidden")
		}
	})

	t.Run("shows empty sections with showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).WriteSummary(&model.RunSummary{RootURL: "http://x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"CONTACTS BY REGION", "SKIPPED PRESCHOOLS"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected empty section %q to be shown intact, got:\n%s", want, output)
			}
		}
	})

	t.Run("keeps titles of narrow tables on one line", func(t *testing.T) {
		t.Parallel()

		s := &model.RunSummary{
			RootURL: "http://x",
			Regions: []model.LabelCount{{Label: "N", Count: 1}},
		}
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteSummary(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "CONTACTS BY REGION") {
			t.Errorf("expected unwrapped region title, got:\n%s", buf.String())
		}
	})

	t.Run("handles timed out run", func(t *testing.T) {
		t.Parallel()

		r := createTestReport()
		r.TimedOut = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Timed out") {
			t.Error("expected timed out status")
		}
	})

	t.Run("writes diff", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"RUN 1 → RUN 2", "new@forskola.se", "gone@forskola.se", "Förskollärare → Rektor"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected diff output to contain %q", want)
			}
		}
	})

	t.Run("writes diff without changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteDiff(&model.ContactDiff{OldRunID: 3, NewRunID: 4, Unchanged: 2}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No contact changes.") {
			t.Error("expected no-change message")
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs the run summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.RunSummary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.UniqueEmails != 2 || got.UnitsScraped != 2 || got.UnitsFailed != 1 {
			t.Errorf("unexpected counters: %+v", got)
		}
		if got.ContactsFound != 3 {
			t.Errorf("expected 3 contacts before dedup, got %d", got.ContactsFound)
		}
		if strings.Contains(buf.String(), "anna@forskola.se") {
			t.Error("expected JSON report to omit e-mail addresses")
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line of JSON")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"root_url\"") {
			t.Error("expected two space indentation")
		}
	})

	t.Run("uses custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).WriteSummary(&model.RunSummary{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), ">\t\"root_url\"") {
			t.Errorf("expected custom indentation, got %q", buf.String())
		}
	})

	t.Run("includes version when configured", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("v1.2.3")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Version != "v1.2.3" {
			t.Errorf("expected version v1.2.3, got %q", got.Version)
		}
		if got.Summary == nil || got.Summary.UniqueEmails != 2 {
			t.Errorf("expected wrapped summary, got %+v", got.Summary)
		}
	})

	t.Run("writes diff", func(t *testing.T) {
		t.Parallel()

		want := createTestDiff()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteDiff(want); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.ContactDiff
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if diff := cmp.Diff(want, &got); diff != "" {
			t.Errorf("diff mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "# Forskolor Harvest Report") {
			t.Error("expected H1 title")
		}
		if !strings.Contains(output, "`https://forskola.stockholm`") {
			t.Error("expected directory URL")
		}
		if !strings.Contains(output, "`abc123`") {
			t.Error("expected CSV digest")
		}
	})

	t.Run("title-cases regions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Södermalm") {
			t.Error("expected title-cased region")
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "```mermaid") || !strings.Contains(output, "pie") {
			t.Error("expected mermaid pie chart")
		}
	})

	t.Run("warns about skipped preschools", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected warning alert")
		}
		if !strings.Contains(output, "Förskolan Stjärnan") {
			t.Error("expected skipped preschool row")
		}
	})

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		r := createTestReport()
		r.SetError(errors.New("listing page 3: decode failed"))

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!CAUTION]") || !strings.Contains(buf.String(), "decode failed") {
			t.Error("expected caution alert with error")
		}
	})

	t.Run("notes an empty harvest", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteSummary(&model.RunSummary{RootURL: "http://x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!NOTE]") {
			t.Error("expected note alert")
		}
	})

	t.Run("writes diff sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"## Added Contacts", "## Removed Contacts", "## Changed Contacts", "Förskollärare → Rektor"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected diff output to contain %q", want)
			}
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "https://github.com/nao1215/forskolor") {
			t.Error("expected footer link")
		}
	})
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

		n, err := multi.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf1.Len()+buf2.Len() {
			t.Errorf("expected %d bytes, got %d", buf1.Len()+buf2.Len(), n)
		}
		if strings.HasPrefix(buf1.String(), "{") {
			t.Error("expected simple output not to be JSON")
		}
		if !strings.HasPrefix(buf2.String(), "{") {
			t.Error("expected JSON output")
		}
	})

	t.Run("writes diffs to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewMarkdownWriter(&buf1), NewJSONWriter(&buf2))
		if _, err := multi.WriteDiff(createTestDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf1.Len() == 0 || buf2.Len() == 0 {
			t.Error("expected both writers to receive the diff")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().WriteSummary(&model.RunSummary{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes, got %d", n)
		}
	})
}

// TestWriteHistory tests the archive listing table.
func TestWriteHistory(t *testing.T) {
	t.Parallel()

	t.Run("renders one row per run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		runs := []database.RunRecord{
			{ID: 7, StartedAt: time.Now(), PagesFetched: 56, UnitsScraped: 300, RowCount: 812, CSVPath: "march.csv"},
			{ID: 6, StartedAt: time.Now().Add(-time.Hour), PagesFetched: 56, RowCount: 790},
		}
		if _, err := WriteHistory(&buf, runs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"RUN", "812", "790", "march.csv"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected history to contain %q", want)
			}
		}
	})

	t.Run("reports an empty archive", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := WriteHistory(&buf, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "No archived runs.\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestTruncateString tests rune-aware truncation.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"Förskolan Stjärnan", 10, "Förskol..."},
		{"abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
