// Package scrape turns directory pages into model values.
//
// Two page kinds are handled:
//
//   - Listing pages embed the registry data as a JSON argument to a React
//     render call inside a <script> element. A ListingExtractor locates and
//     decodes it.
//   - Detail pages list contacts as ".unit-contact" blocks. A ContactParser
//     turns them into ContactEntry values.
//
// Both extractors depend on upstream markup that can change without notice.
// They sit behind small interfaces so a new layout only needs a new
// implementation, not changes to the Scraper or the pipeline.
//
// # Usage
//
//	s := scrape.NewScraper(cfg, httpclient.NewClient(opts))
//	units, err := s.FetchListing(ctx, 1)
//	for _, u := range units {
//		p, err := s.ScrapeUnit(ctx, u)
//		...
//	}
package scrape
