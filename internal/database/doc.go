// Package database provides the SQLite run archive for forskolor.
//
// Every finished run is stored with its summary and the deduplicated rows
// that went into the CSV file. The archive backs the history and compare
// commands.
//
// The archive uses modernc.org/sqlite, a CGO-free driver, so the binary
// cross-compiles without a C toolchain. The database is a single file under
// the XDG data directory.
package database
