package scrape

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/forskolor/internal/config"
	"github.com/nao1215/forskolor/internal/httpclient"
	"github.com/nao1215/forskolor/internal/model"
)

// Fetcher retrieves a page by URL. *httpclient.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) (*httpclient.Response, error)
}

// Scraper fetches listing and detail pages and extracts their data.
type Scraper struct {
	cfg      *config.Config
	fetcher  Fetcher
	listing  ListingExtractor
	contacts ContactParser
	logger   *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithListingExtractor replaces the default MarkerExtractor.
func WithListingExtractor(e ListingExtractor) Option {
	return func(s *Scraper) {
		s.listing = e
	}
}

// WithContactParser replaces the default ClassContactParser.
func WithContactParser(p ContactParser) Option {
	return func(s *Scraper) {
		s.contacts = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// NewScraper creates a Scraper for the directory described by cfg.
func NewScraper(cfg *config.Config, fetcher Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:      cfg,
		fetcher:  fetcher,
		listing:  NewMarkerExtractor(),
		contacts: NewClassContactParser(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchListing fetches the listing page with the given 1-based index and
// returns the service units it embeds.
//
// A page without embedded data yields an empty slice and no error. A fetch
// failure wraps ErrListingFetch and a malformed payload wraps
// ErrListingDecode; both are meant to abort the run.
func (s *Scraper) FetchListing(ctx context.Context, page int) ([]model.ServiceUnit, error) {
	pageURL := s.cfg.ListingURL(page)
	s.logger.Info("fetching page", "page", page, "url", pageURL)

	res, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %w", ErrListingFetch, page, err)
	}
	if !res.OK() {
		s.logger.Warn("unexpected status for listing page", "page", page, "status", res.StatusCode)
	}

	data, found, err := s.listing.ExtractListing(res.Body)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	if !found {
		s.logger.Debug("no listing data on page", "page", page)
		return []model.ServiceUnit{}, nil
	}

	units := data.InitialData.ServiceUnits
	s.logger.Info("found service units", "page", page, "count", len(units))
	if units == nil {
		units = []model.ServiceUnit{}
	}
	return units, nil
}

// ScrapeUnit fetches the detail page of unit and returns the preschool with
// its contacts. Every failure is returned to the caller, which decides
// whether to skip the unit.
func (s *Scraper) ScrapeUnit(ctx context.Context, unit model.ServiceUnit) (*model.Preschool, error) {
	if unit.SelfLink == "" {
		return nil, ErrNoSelfLink
	}

	link := s.cfg.DetailURL(unit.SelfLink)
	s.logger.Info("fetching preschool", "name", unit.Name, "url", link)

	res, err := s.fetcher.Get(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDetailFetch, err)
	}
	if !res.OK() {
		s.logger.Warn("unexpected status for detail page", "name", unit.Name, "status", res.StatusCode)
	}

	entries, err := s.contacts.ParseContacts(res.Body)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.ContactEntry{}
	}

	s.logger.Info("scraped preschool", "name", unit.Name, "emails", len(entries))

	return &model.Preschool{
		Name:   unit.Name,
		Region: unit.Regions,
		Link:   link,
		Emails: entries,
	}, nil
}
