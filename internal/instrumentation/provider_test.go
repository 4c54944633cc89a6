package instrumentation

import (
	"context"
	"testing"
	"time"
)

func testConfig(metricsExporter, tracingExporter string) Config {
	return Config{
		ServiceName:     "inboxgroups-test",
		ServiceVersion:  "0.0.1",
		Enabled:         true,
		MetricsExporter: metricsExporter,
		TracingExporter: tracingExporter,
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName: "inboxgroups-test",
		Enabled:     false,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}

	// Disabled providers still hand out a recorder so pipeline and tool
	// code can record unconditionally.
	if provider.Metrics() == nil {
		t.Error("expected metrics recorder even when disabled")
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, testConfig(ExporterPrometheus, ExporterNone))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}

	if provider.Metrics() == nil {
		t.Error("expected metrics recorder")
	}

	if provider.PrometheusHandler() == nil {
		t.Error("expected prometheus exporter for the prometheus metrics exporter")
	}

	// Recording through the live recorder must not panic.
	provider.Metrics().RecordPipelineStage(ctx, StagePreprocess, 5*time.Millisecond)
	provider.Metrics().RecordClusteringResult(ctx, 3, 0.42)

	if provider.Tracer("clustering") == nil {
		t.Error("expected tracer")
	}
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, testConfig(ExporterStdout, ExporterStdout))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}

	if provider.PrometheusHandler() != nil {
		t.Error("expected no prometheus exporter for the stdout metrics exporter")
	}
}

func TestNewProvider_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"unknown metrics exporter", testConfig("invalid", ExporterNone)},
		{"unknown tracing exporter", testConfig(ExporterPrometheus, "invalid")},
		{"otlp tracing without endpoint", testConfig(ExporterPrometheus, ExporterOTLP)},
		{"otlp metrics without endpoint", testConfig(ExporterOTLP, ExporterNone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if _, err := NewProvider(ctx, tt.config); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, testConfig(ExporterPrometheus, ExporterNone))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestProvider_Tracer_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName: "inboxgroups-test",
		Enabled:     false,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	// Disabled providers return a no-op tracer, never nil.
	if provider.Tracer("clustering") == nil {
		t.Error("expected no-op tracer")
	}
}
