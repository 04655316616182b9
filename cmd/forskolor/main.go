// Package main provides the entry point for the forskolor CLI.
//
// forskolor walks the Stockholm municipal preschool directory, collects the
// contact e-mail addresses published on each preschool's page, and writes
// them to a CSV file.
//
// Usage:
//
//	forskolor
//	forskolor --filename contacts.csv
//	forskolor compare
//
// See --help for all available options.
package main

// main is the entry point for forskolor.
func main() {
	Execute()
}
