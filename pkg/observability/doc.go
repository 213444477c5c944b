// Package observability provides structured logging, Prometheus metrics,
// health checks, and request correlation for the service.
package observability
