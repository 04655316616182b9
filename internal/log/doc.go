// Package log provides structured logging for forskolor, built on top of the
// standard slog package.
//
// The SecureHandler wraps any slog.Handler and sanitizes attributes before
// they are written:
//   - credentials configured for the directory (Cookie, Authorization, tokens)
//     are replaced with MaskValue
//   - e-mail addresses inside string values are masked to their first
//     character and domain (anna.svensson@edu.stockholm.se becomes
//     a***@edu.stockholm.se)
//
// Harvested contact addresses belong in the CSV file and the run archive, not
// in terminal scrollback or CI logs, so masking applies in every level.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Info("scraped preschool", "name", unit.Name, "emails", 3)
package log
