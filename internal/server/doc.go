// Package server provides the MCP server context, health endpoints and
// the dedicated Prometheus metrics server for the inboxgroups application.
//
// # Key Components
//
// ServerContext manages the shared dependencies of the serving surface:
// lazily created per-account Gmail clients, the clustering pipeline, the
// sqlite store and the metrics recorder.
//
// HealthChecker serves /healthz and /readyz endpoints for Kubernetes
// checks, and MetricsServer exposes /metrics on a dedicated port so
// operational metrics stay off the main application surface.
package server
