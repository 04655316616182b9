package model

import (
	"cmp"
	"slices"
	"time"
)

// RunSummary is a condensed, human-oriented view of a RunReport.
// Report writers render it instead of walking the full report.
type RunSummary struct {
	RootURL    string    `json:"root_url"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`

	PagesFetched int `json:"pages_fetched"`
	EmptyPages   int `json:"empty_pages"`
	UnitsSeen    int `json:"units_seen"`
	UnitsScraped int `json:"units_scraped"`
	UnitsFailed  int `json:"units_failed"`

	// ContactsFound counts contacts before deduplication.
	ContactsFound int `json:"contacts_found"`

	// UniqueEmails is the number of rows written.
	UniqueEmails int `json:"unique_emails"`

	// ContactsWithoutName counts rows carrying the placeholder name.
	ContactsWithoutName int `json:"contacts_without_name"`

	// ContactsWithoutRole counts rows with an empty role.
	ContactsWithoutRole int `json:"contacts_without_role"`

	// Regions and Roles are row counts, largest first.
	Regions []LabelCount `json:"regions,omitempty"`
	Roles   []LabelCount `json:"roles,omitempty"`

	FailedUnits []FailedUnit `json:"failed_units,omitempty"`

	CSVPath   string `json:"csv_path,omitempty"`
	CSVDigest string `json:"csv_digest,omitempty"`
	RunID     int64  `json:"run_id,omitempty"`

	TimedOut bool   `json:"timed_out"`
	Error    string `json:"error,omitempty"`
}

// LabelCount is a label with the number of rows carrying it.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// UnknownLabel is used for rows without region or role.
const UnknownLabel = "(unknown)"

// NewRunSummary builds a summary from a finished report.
func NewRunSummary(r *RunReport) *RunSummary {
	s := &RunSummary{
		RootURL:       r.RootURL,
		StartedAt:     r.StartedAt,
		DurationMS:    r.Duration().Milliseconds(),
		PagesFetched:  r.PagesFetched,
		EmptyPages:    r.EmptyPages,
		UnitsSeen:     r.UnitsSeen,
		UnitsScraped:  len(r.Preschools),
		UnitsFailed:   len(r.FailedUnits),
		ContactsFound: r.ContactCount(),
		UniqueEmails:  len(r.Rows),
		FailedUnits:   r.FailedUnits,
		CSVPath:       r.CSVPath,
		CSVDigest:     r.CSVDigest,
		RunID:         r.RunID,
		TimedOut:      r.TimedOut,
		Error:         r.ErrorMessage,
	}

	regions := make(map[string]int)
	roles := make(map[string]int)
	for _, row := range r.Rows {
		if !row.HasName() {
			s.ContactsWithoutName++
		}
		if row.Role == "" {
			s.ContactsWithoutRole++
		}
		regions[labelOrUnknown(row.Region)]++
		roles[labelOrUnknown(row.Role)]++
	}
	s.Regions = sortedCounts(regions)
	s.Roles = sortedCounts(roles)

	return s
}

func labelOrUnknown(s string) string {
	if s == "" {
		return UnknownLabel
	}
	return s
}

// sortedCounts orders counts by count descending, then label ascending.
func sortedCounts(m map[string]int) []LabelCount {
	if len(m) == 0 {
		return nil
	}
	out := make([]LabelCount, 0, len(m))
	for label, n := range m {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	slices.SortFunc(out, func(a, b LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
