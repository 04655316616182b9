package model

import "time"

// RunReport is the result of one harvest run.
// It is filled in step by step by the pipeline and is what the report writers
// and the run archive consume.
type RunReport struct {
	// RunID is the archive identifier, set once the run has been saved.
	RunID int64 `json:"run_id,omitempty"`

	// RootURL is the directory origin the run was made against.
	RootURL string `json:"root_url"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last step completed.
	FinishedAt time.Time `json:"finished_at"`

	// === Crawl Statistics ===

	// PagesFetched is the number of listing pages requested.
	PagesFetched int `json:"pages_fetched"`

	// EmptyPages is the number of listing pages without embedded data.
	EmptyPages int `json:"empty_pages"`

	// UnitsSeen is the number of service units listed across all pages.
	UnitsSeen int `json:"units_seen"`

	// Preschools holds every successfully scraped unit in traversal order.
	Preschools []Preschool `json:"-"` // Large; use the CSV or archive instead

	// FailedUnits lists the units whose detail page could not be scraped.
	FailedUnits []FailedUnit `json:"failed_units,omitempty"`

	// === Export ===

	// Rows holds the deduplicated rows that were written.
	Rows []CsvRow `json:"-"`

	// CSVPath is the file the rows were written to.
	CSVPath string `json:"csv_path,omitempty"`

	// CSVDigest is the hex SHA3-256 digest of the written file.
	CSVDigest string `json:"csv_digest,omitempty"`

	// === Run State ===

	// TimedOut is true if the run was cancelled by its context deadline.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that aborted the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// FailedUnit records a service unit that was skipped.
type FailedUnit struct {
	Name  string `json:"name"`
	Link  string `json:"link"`
	Error string `json:"error"`
}

// NewRunReport creates an empty report for a run against rootURL.
func NewRunReport(rootURL string) *RunReport {
	return &RunReport{
		RootURL:   rootURL,
		StartedAt: time.Now(),
	}
}

// AddPreschool appends a scraped preschool.
func (r *RunReport) AddPreschool(p Preschool) {
	r.Preschools = append(r.Preschools, p)
}

// AddFailedUnit records a unit that could not be scraped.
func (r *RunReport) AddFailedUnit(name, link string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.FailedUnits = append(r.FailedUnits, FailedUnit{Name: name, Link: link, Error: msg})
}

// SetError records the error that aborted the run.
func (r *RunReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// ContactCount returns the number of contacts before deduplication.
func (r *RunReport) ContactCount() int {
	n := 0
	for _, p := range r.Preschools {
		n += len(p.Emails)
	}
	return n
}

// Duration returns how long the run took. It is zero until FinishedAt is set.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
