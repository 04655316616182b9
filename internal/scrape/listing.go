package scrape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"golang.org/x/net/html"

	"github.com/nao1215/forskolor/internal/model"
)

// ListingExtractor finds and decodes the registry data embedded in a
// listing page.
//
// found is false when the page carries no data at all; that is the normal
// "nothing here" case and err is nil. A non-nil err means data was found
// but could not be decoded.
type ListingExtractor interface {
	ExtractListing(body []byte) (data *model.ListingData, found bool, err error)
}

// listingMarker matches the React render call whose first props argument is
// the listing data.
var listingMarker = regexp.MustCompile(
	`ReactDOM\.render\(React\.createElement\(ServiceUnits\.App, (.+)\), document\.getElement`,
)

// MarkerExtractor locates the listing data by scanning inline scripts for
// the ServiceUnits.App render call.
type MarkerExtractor struct{}

// NewMarkerExtractor returns a MarkerExtractor.
func NewMarkerExtractor() *MarkerExtractor {
	return &MarkerExtractor{}
}

// ExtractListing implements ListingExtractor.
func (e *MarkerExtractor) ExtractListing(body []byte) (*model.ListingData, bool, error) {
	raw, ok := findMarkerPayload(body)
	if !ok {
		return nil, false, nil
	}

	var data model.ListingData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrListingDecode, err)
	}
	return &data, true, nil
}

// findMarkerPayload returns the JSON argument of the first inline script
// containing the render call.
func findMarkerPayload(body []byte) ([]byte, bool) {
	z := html.NewTokenizer(bytes.NewReader(body))
	inScript := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way nothing more to scan
			return nil, false
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			if m := listingMarker.FindSubmatch(z.Text()); m != nil {
				return m[1], true
			}
		}
	}
}
