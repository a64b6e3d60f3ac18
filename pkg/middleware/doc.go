// Package middleware provides the site's HTTP observability layer.
//
// # Prometheus Metrics
//
// NewMetrics registers the site's collectors on a registry and returns a
// *Metrics whose HTTP middleware records request counts and durations per
// chi route pattern. The same value records live sessions, contact
// submissions and validation failures:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("safetrade"))
//	r.Use(m.HTTP)
//	r.Handle("/metrics", m.Handler())
//
// A nil *Metrics is valid and records nothing.
//
// # OpenTelemetry
//
// OpenTelemetry returns a middleware that opens a server span per request on
// the global tracer provider. StartSpan opens child spans for work such as
// delivering a submission:
//
//	ctx, end := middleware.StartSpan(ctx, tracerName, "contact.submit")
//	err := inbox.Submit(ctx, s)
//	end(err)
//
// # Request Logging
//
// RequestLogger writes one slog line per request, tagged with the id set by
// chi's RequestID middleware.
package middleware
