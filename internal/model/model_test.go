package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestListingDataDecode tests decoding the JSON object embedded in listing pages.
func TestListingDataDecode(t *testing.T) {
	t.Parallel()

	raw := `{"initialData":{"serviceUnits":[{"id":101,"serviceTypeId":2,` +
		`"locationNorth":6575000.5,"locationEast":153000.25,"name":"Förskolan Solrosen",` +
		`"imagePath":"/img/101.jpg","address":"Solrosvägen 1","regions":"Söderort",` +
		`"selfLink":"/forskolor/solrosen"}],"serviceTypes":[{"id":2,"name":"Kommunal"}]}}`

	var data ListingData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := ServiceUnit{
		ID:            101,
		ServiceTypeID: 2,
		LocationNorth: 6575000.5,
		LocationEast:  153000.25,
		Name:          "Förskolan Solrosen",
		ImagePath:     "/img/101.jpg",
		Address:       "Solrosvägen 1",
		Regions:       "Söderort",
		SelfLink:      "/forskolor/solrosen",
	}
	if diff := cmp.Diff([]ServiceUnit{want}, data.InitialData.ServiceUnits); diff != "" {
		t.Errorf("service units mismatch (-want +got):\n%s", diff)
	}

	t.Run("service type name is resolved", func(t *testing.T) {
		t.Parallel()
		if got := data.InitialData.ServiceTypeName(2); got != "Kommunal" {
			t.Errorf("got %q, expected %q", got, "Kommunal")
		}
		if got := data.InitialData.ServiceTypeName(99); got != "" {
			t.Errorf("expected empty name for unknown type, got %q", got)
		}
	})
}

// TestCsvRow tests the row helpers.
func TestCsvRow(t *testing.T) {
	t.Parallel()

	t.Run("record keeps header order and drops archive columns", func(t *testing.T) {
		t.Parallel()
		row := CsvRow{Email: "a@b.se", Preschool: "P", Name: "N", Role: "R", Region: "X", Link: "L"}
		if diff := cmp.Diff([]string{"a@b.se", "P", "N", "R"}, row.Record()); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("placeholder name is not a name", func(t *testing.T) {
		t.Parallel()
		if (CsvRow{Name: PlaceholderName}).HasName() {
			t.Error("expected placeholder to report no name")
		}
		if !(CsvRow{Name: "Anna"}).HasName() {
			t.Error("expected real name to be reported")
		}
	})
}

// TestRunReport tests the RunReport accumulation helpers.
func TestRunReport(t *testing.T) {
	t.Parallel()

	report := NewRunReport("https://forskola.stockholm")
	report.AddPreschool(Preschool{Name: "A", Emails: []ContactEntry{{Email: "a@b.se"}, {Email: "c@d.se"}}})
	report.AddPreschool(Preschool{Name: "B", Emails: []ContactEntry{{Email: "a@b.se"}}})
	report.AddFailedUnit("C", "https://forskola.stockholm/c", errors.New("connection reset"))
	report.SetError(errors.New("boom"))

	if report.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if got := report.ContactCount(); got != 3 {
		t.Errorf("got %d contacts, expected 3", got)
	}
	if len(report.FailedUnits) != 1 || report.FailedUnits[0].Error != "connection reset" {
		t.Errorf("unexpected failed units: %+v", report.FailedUnits)
	}
	if report.ErrorMessage != "boom" {
		t.Errorf("got error message %q, expected %q", report.ErrorMessage, "boom")
	}
	if report.Duration() != 0 {
		t.Error("expected zero duration before FinishedAt is set")
	}
	report.FinishedAt = report.StartedAt.Add(2 * time.Second)
	if report.Duration() != 2*time.Second {
		t.Errorf("got duration %v, expected 2s", report.Duration())
	}
}

// TestNewRunSummary tests deriving a summary from a report.
func TestNewRunSummary(t *testing.T) {
	t.Parallel()

	report := NewRunReport("https://forskola.stockholm")
	report.PagesFetched = 3
	report.EmptyPages = 1
	report.UnitsSeen = 4
	report.AddPreschool(Preschool{Name: "A", Emails: []ContactEntry{{Email: "a@b.se"}}})
	report.AddFailedUnit("B", "/b", errors.New("timeout"))
	report.Rows = []CsvRow{
		{Email: "a@b.se", Name: "Anna", Role: "Rektor", Region: "Söderort"},
		{Email: "c@d.se", Name: PlaceholderName, Region: "Söderort"},
		{Email: "e@f.se", Name: "Erik", Role: "Rektor", Region: "Västerort"},
		{Email: "g@h.se", Name: "Gun", Role: "Förskollärare"},
	}

	s := NewRunSummary(report)

	if s.UnitsScraped != 1 || s.UnitsFailed != 1 || s.UniqueEmails != 4 || s.ContactsFound != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.ContactsWithoutName != 1 {
		t.Errorf("got %d contacts without name, expected 1", s.ContactsWithoutName)
	}
	if s.ContactsWithoutRole != 1 {
		t.Errorf("got %d contacts without role, expected 1", s.ContactsWithoutRole)
	}

	wantRegions := []LabelCount{
		{Label: "Söderort", Count: 2},
		{Label: UnknownLabel, Count: 1},
		{Label: "Västerort", Count: 1},
	}
	if diff := cmp.Diff(wantRegions, s.Regions); diff != "" {
		t.Errorf("regions mismatch (-want +got):\n%s", diff)
	}

	wantRoles := []LabelCount{
		{Label: "Rektor", Count: 2},
		{Label: UnknownLabel, Count: 1},
		{Label: "Förskollärare", Count: 1},
	}
	if diff := cmp.Diff(wantRoles, s.Roles); diff != "" {
		t.Errorf("roles mismatch (-want +got):\n%s", diff)
	}
}

// TestCompareContacts tests diffing two row sets.
func TestCompareContacts(t *testing.T) {
	t.Parallel()

	oldRows := []CsvRow{
		{Email: "same@x.se", Preschool: "A", Name: "Anna"},
		{Email: "gone@x.se", Preschool: "A", Name: "Bo"},
		{Email: "moved@x.se", Preschool: "A", Name: "Cia"},
	}
	newRows := []CsvRow{
		{Email: "new@x.se", Preschool: "B", Name: "Dan"},
		{Email: "moved@x.se", Preschool: "B", Name: "Cia"},
		{Email: "same@x.se", Preschool: "A", Name: "Anna"},
	}

	diff := CompareContacts(oldRows, newRows)

	want := &ContactDiff{
		Added:     []CsvRow{newRows[0]},
		Removed:   []CsvRow{oldRows[1]},
		Changed:   []ContactChange{{Email: "moved@x.se", Old: oldRows[2], New: newRows[1]}},
		Unchanged: 1,
	}
	if d := cmp.Diff(want, diff); d != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", d)
	}
	if !diff.HasChanges() {
		t.Error("expected HasChanges to be true")
	}

	t.Run("identical runs have no changes", func(t *testing.T) {
		t.Parallel()
		d := CompareContacts(oldRows, oldRows)
		if d.HasChanges() {
			t.Errorf("expected no changes, got %+v", d)
		}
		if d.Unchanged != len(oldRows) {
			t.Errorf("got %d unchanged, expected %d", d.Unchanged, len(oldRows))
		}
	})
}
