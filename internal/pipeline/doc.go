// Package pipeline runs a harvest as a sequence of steps.
//
// A harvest is a straight line: crawl the listing and detail pages, write
// the CSV file, archive the run. Each stage is a Step that receives the
// shared RunReport and fills in its part. The Pipeline runs steps in order,
// checks for cancellation between them and records which steps ran.
//
// Nothing runs concurrently. Every request is awaited before the next one
// is made.
package pipeline
