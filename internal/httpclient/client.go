package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures a Client.
type Options struct {
	// UserAgent is sent with every request. Empty leaves resty's default.
	UserAgent string

	// Cookie is sent as the Cookie header when set.
	Cookie string

	// Headers are extra request headers.
	Headers map[string]string

	// Timeout bounds a single request including reading the body.
	Timeout time.Duration

	// MaxBodySize is the maximum number of body bytes accepted.
	// Zero means no limit.
	MaxBodySize int64

	// Logger receives per-request debug logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// Response is a fetched page.
type Response struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the response body.
	Body []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Client fetches pages over HTTP(S).
// A Client is safe to reuse for every request of a run.
type Client struct {
	// rc is the underlying resty client with headers and timeout applied.
	rc *resty.Client

	// maxBodySize is the body limit in bytes, 0 for none.
	maxBodySize int64

	logger *slog.Logger
}

// NewClient creates a Client from the given options.
func NewClient(opts Options) *Client {
	rc := resty.New()
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Cookie != "" {
		rc.SetHeader("Cookie", opts.Cookie)
	}
	if len(opts.Headers) > 0 {
		rc.SetHeaders(opts.Headers)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		rc:          rc,
		maxBodySize: opts.MaxBodySize,
		logger:      logger,
	}
}

// Get fetches url and returns its status and body.
//
// Non-2xx responses are not errors: the body is returned as-is and the
// caller inspects StatusCode. Only transport failures and oversized or
// unreadable bodies produce an error.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	start := time.Now()

	res, err := c.rc.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		if res != nil && res.RawBody() != nil {
			_ = res.RawBody().Close()
		}
		return nil, fmt.Errorf("%w: GET %s: %w", ErrRequestFailed, url, err)
	}

	body := res.RawBody()
	defer body.Close() //nolint:errcheck // read-only body

	data, err := c.readBody(body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	c.logger.Debug("fetched",
		"url", url,
		"status", res.StatusCode(),
		"bytes", len(data),
		"elapsed", time.Since(start),
	)

	return &Response{
		URL:        url,
		StatusCode: res.StatusCode(),
		Body:       data,
	}, nil
}

// readBody reads at most maxBodySize bytes from r.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBodySize <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadBody, err)
		}
		return data, nil
	}

	// Read one byte past the limit to tell "exactly at limit" from "over".
	data, err := io.ReadAll(io.LimitReader(r, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadBody, err)
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}
	return data, nil
}
