package scrape

import "errors"

var (
	// ErrListingDecode is returned when the embedded listing data was found
	// but is not valid JSON of the expected shape. It is fatal to a run.
	ErrListingDecode = errors.New("failed to decode listing data")

	// ErrListingFetch is returned when a listing page could not be fetched.
	ErrListingFetch = errors.New("failed to fetch listing page")

	// ErrDetailFetch is returned when a detail page could not be fetched.
	ErrDetailFetch = errors.New("failed to fetch detail page")

	// ErrDetailParse is returned when a detail page could not be parsed.
	ErrDetailParse = errors.New("failed to parse detail page")

	// ErrNoSelfLink is returned for units without a detail link.
	ErrNoSelfLink = errors.New("service unit has no detail link")
)
