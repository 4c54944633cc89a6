// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the inboxgroups clustering service.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for the clustering pipeline, Gmail API calls, and HTTP requests
//   - Distributed tracing for pipeline runs and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Gmail API Metrics:
//   - gmail_api_operations_total: Counter of Gmail API operations by operation, status
//   - gmail_api_operation_duration_seconds: Histogram of Gmail API operation durations
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// Clustering Pipeline Metrics:
//   - pipeline_emails_processed_total: Counter of emails that completed preprocessing
//   - pipeline_emails_skipped_total: Counter of emails skipped due to preprocessing failures
//   - pipeline_clusters_created: Histogram of cluster counts per run
//   - pipeline_stage_duration_seconds: Histogram of stage durations by stage
//   - pipeline_silhouette_score: Gauge of the most recent silhouette score
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - MCP tool invocations (tool.<name>)
//   - Gmail API calls (gmail.<operation>)
//   - Clustering pipeline stages (pipeline.<stage>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: inboxgroups)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "inboxgroups",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record a Gmail API operation
//	recorder.RecordGmailOperation(ctx, "list", "success", time.Since(start))
//
//	// Record a pipeline stage
//	recorder.RecordPipelineStage(ctx, instrumentation.StageCluster, time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "inbox_cluster_emails", "success", time.Since(start))
package instrumentation
