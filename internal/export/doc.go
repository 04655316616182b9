// Package export writes harvested contacts to CSV.
//
// Rows are deduplicated by e-mail address: the first occurrence in traversal
// order wins and later duplicates are dropped. The file has a fixed
// four-column header (Email, Förskola, Namn, Roll) and uses "\n" line
// endings, so the same input always produces the same bytes.
package export
