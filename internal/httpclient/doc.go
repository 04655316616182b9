// Package httpclient provides the HTTP transport used to fetch listing and
// detail pages from the preschool directory.
//
// The Client wraps a resty client and applies the configured User-Agent,
// Cookie, extra headers and per-request timeout to every request. Response
// bodies are read up to a configurable size limit.
//
// Requests are made one at a time and never retried; a failed request is
// reported to the caller, which decides whether the failure is fatal.
package httpclient
