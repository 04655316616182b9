package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrInvalidRootURL is returned when the root URL is not an absolute http(s) URL.
	ErrInvalidRootURL = errors.New("invalid root URL: must be an absolute http or https URL")

	// ErrInvalidListingPath is returned when the listing path is not root-relative.
	ErrInvalidListingPath = errors.New("invalid listing path: must start with '/'")

	// ErrInvalidPageCount is returned when the page count is not positive.
	ErrInvalidPageCount = errors.New("invalid page count: must be positive")

	// ErrNoFilename is returned when the CSV output filename is empty.
	ErrNoFilename = errors.New("no output filename specified")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one report format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to read bodies without a limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
