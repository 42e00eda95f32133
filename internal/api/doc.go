// Package api hosts the HTTP server, middleware, and REST handlers that expose
// timestamp construction and the verifier over HTTP. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/parse, /v1/format, /v1/convert, /v1/display for one-off checks.
//   - GET and PUT /v1/ambient to inspect or change the server's default zone.
//   - GET /v1/scenarios and POST /v1/runs to list and run the scenario catalog.
package api
