// Package errors provides coded, operator-facing errors for the site.
//
// Operational failures (bad configuration, unreadable catalogs, an
// unreachable submission backend) carry a stable code, a category, and an
// optional detail and hint. The CLI prints them with Format, or FormatJSON
// for check --json. Servers log them with FormatCompact.
//
// # Error Categories
//
//   - config: site.json or environment problems
//   - catalog: translation catalogs that fail to load
//   - submission: contact submission backends
//   - transport: HTTP listener and live connections
//
// # Usage
//
//	err := errors.New("S002").
//	    WithDetail("server.port must be between 1 and 65535").
//	    Wrap(cause)
//
// SiteError implements Unwrap, so errors.Is and errors.As from the standard
// library see through it.
package errors
