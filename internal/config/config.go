package config

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The directory values mirror the public Stockholm preschool directory as it
// is laid out today; they can be overridden from the configuration file.
const (
	// DefaultRootURL is the origin of the municipal preschool directory.
	// Both listing pages and detail pages are resolved against it.
	DefaultRootURL = "https://forskola.stockholm"

	// DefaultListingPath is the path of the paginated listing.
	// The page index is passed in the "sida" query parameter.
	DefaultListingPath = "/hitta-forskola"

	// DefaultPageCount is the number of listing pages walked per run.
	// The directory does not expose a reliable end-of-results signal, so the
	// bound is fixed. If the directory grows past this many pages the tail is
	// silently missed; see DESIGN.md.
	DefaultPageCount = 56

	// DefaultFilename is the CSV file written when --filename is not given.
	DefaultFilename = "forskolor.csv"

	// DefaultTimeout is the timeout for a single HTTP request.
	DefaultTimeout = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "forskolor"

	// DefaultUserAgent identifies forskolor in HTTP requests.
	DefaultUserAgent = "forskolor/1.0 (+https://github.com/nao1215/forskolor)"

	// DefaultMaxBodySize limits the response body size read per page.
	// Listing pages embed the whole unit list as JSON and run to a few hundred
	// kilobytes, so 10MB leaves plenty of headroom.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// pageQueryParam is the query parameter carrying the listing page index.
	pageQueryParam = "sida"
)

// Config holds all configuration options for a harvest run.
// It is populated once from CLI flags and the optional configuration file,
// validated, and then handed to each component. Nothing mutates it after
// Validate has been called.
type Config struct {
	// RootURL is the scheme and host of the directory, without trailing slash.
	RootURL string

	// ListingPath is the path of the paginated listing, relative to RootURL.
	ListingPath string

	// PageCount is the number of listing pages to walk, starting at page 1.
	PageCount int

	// Filename is the CSV output path. Existing files are overwritten.
	Filename string

	// Timeout is the timeout for each HTTP request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Cookie is an optional Cookie header sent with every request.
	Cookie string

	// Headers are extra request headers sent with every request.
	Headers map[string]string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .forskolor is searched in the current and home directories.
	ConfigFilePath string

	// JSONReport prints the run report as JSON. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the run report as Markdown. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path for the run report. Empty means stdout.
	ReportFile string

	// SaveToDB archives the run in the SQLite database under DBDir.
	// The archive keeps every harvested e-mail address, so it is off unless
	// requested with --archive or "archive: true" in the configuration file.
	SaveToDB bool

	// DBDir is the directory holding the run archive.
	// Defaults to the XDG data directory (~/.local/share/forskolor on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		RootURL:     DefaultRootURL,
		ListingPath: DefaultListingPath,
		PageCount:   DefaultPageCount,
		Filename:    DefaultFilename,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for forskolor.
// On Linux: ~/.local/share/forskolor
// On macOS: ~/Library/Application Support/forskolor
// On Windows: %LOCALAPPDATA%\forskolor
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for forskolor.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ListingURL returns the URL of the listing page with the given 1-based index.
func (c *Config) ListingURL(page int) string {
	return c.rootURL() + c.ListingPath + "?" + pageQueryParam + "=" + strconv.Itoa(page)
}

// DetailURL returns the absolute URL of a unit detail page.
// selfLink is the root-relative link found in the listing data.
func (c *Config) DetailURL(selfLink string) string {
	return c.rootURL() + selfLink
}

// rootURL returns RootURL without a trailing slash.
func (c *Config) rootURL() string {
	return strings.TrimRight(c.RootURL, "/")
}

// ApplyFile copies the values set in the configuration file onto c.
// Zero values in the file leave the current settings untouched.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.RootURL != "" {
		c.RootURL = f.RootURL
	}
	if f.ListingPath != "" {
		c.ListingPath = f.ListingPath
	}
	if f.PageCount != 0 {
		c.PageCount = f.PageCount
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Cookie != "" {
		c.Cookie = f.Cookie
	}
	if f.Archive {
		c.SaveToDB = true
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors in errors.go.
func (c *Config) Validate() error {
	u, err := url.Parse(c.RootURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidRootURL
	}

	if !strings.HasPrefix(c.ListingPath, "/") {
		return ErrInvalidListingPath
	}

	if c.PageCount <= 0 {
		return ErrInvalidPageCount
	}

	if strings.TrimSpace(c.Filename) == "" {
		return ErrNoFilename
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
