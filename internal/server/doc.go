// Package server wires the site's HTTP surface.
//
// Routes:
//
//	GET  /          the landing page, localized by ?lang=, cookie or Accept-Language
//	POST /contact   contact form fallback for browsers without JavaScript
//	GET  /live      WebSocket endpoint for live widgets
//	GET  /healthz   liveness probe
//	GET  /metrics   Prometheus metrics (unless disabled)
//	GET  /assets/*  embedded static files
package server
