// Package model defines the data structures shared across forskolor.
//
// This package contains the following main types:
//   - ServiceUnit, ServiceType, ListingData: the registry data embedded in
//     listing pages, decoded as-is
//   - ContactEntry, Preschool: what a detail page yields
//   - CsvRow: one deduplicated output row
//   - RunReport, RunSummary: the outcome of a harvest run
//   - ContactDiff: the difference between two archived runs
//
// Models live in their own package so that scrape, export, pipeline,
// database and report can share them without import cycles.
package model
