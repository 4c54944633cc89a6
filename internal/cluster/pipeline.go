package cluster

import (
	"context"
	"log/slog"
	"time"

	"github.com/teemow/inboxgroups/internal/instrumentation"
	"github.com/teemow/inboxgroups/internal/logging"
)

// DefaultMaxEmails bounds how many fetched emails one pipeline run
// will process.
const DefaultMaxEmails = 200

// PipelineConfig carries the tunable knobs of a full pipeline run.
type PipelineConfig struct {
	// MaxEmails caps the batch size; emails beyond the cap are ignored.
	MaxEmails int
	// Clusters pins the cluster count when > 0. Zero selects the count
	// adaptively from the batch size.
	Clusters int
	// Vectorizer configures the TF-IDF stage.
	Vectorizer VectorizerConfig
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.MaxEmails <= 0 {
		c.MaxEmails = DefaultMaxEmails
	}
	c.Vectorizer = c.Vectorizer.withDefaults()
	return c
}

// Result is the output of one pipeline run over a batch.
type Result struct {
	// Processed holds the emails that survived preprocessing.
	Processed []ProcessedEmail
	// Clusters is the partition of Processed, sorted by size
	// descending with ids 1..N. Empty when vectorization produced no
	// usable matrix.
	Clusters []Cluster
	// Fitted is the vectorizer state learned from this batch, for
	// transforming further emails within the same session. Nil when
	// vectorization failed.
	Fitted *FittedVectorizer
	// Silhouette is the cluster quality score. Informational only.
	Silhouette float64
}

// Pipeline composes the preprocessing, vectorization and clustering
// stages over one batch of raw emails. A pipeline is synchronous and
// processes one batch at a time; the only state retained across calls
// is inside the Result's fitted vectorizer, which is scoped to the
// batch that produced it.
type Pipeline struct {
	cfg     PipelineConfig
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewPipeline creates a Pipeline, filling unset config fields with
// defaults.
func NewPipeline(cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg.withDefaults(), logger: logger}
}

// SetMetrics enables per-stage metrics recording. A nil metrics value
// is allowed and disables recording.
func (p *Pipeline) SetMetrics(m *instrumentation.Metrics) {
	p.metrics = m
}

// Run executes the full pipeline over a batch. It never returns an
// error: malformed emails are skipped during preprocessing, and a
// batch that cannot be vectorized or clustered yields an empty or
// single-cluster result.
func (p *Pipeline) Run(ctx context.Context, emails []RawEmail) *Result {
	logger := logging.WithOperation(p.logger, "pipeline")

	if len(emails) > p.cfg.MaxEmails {
		emails = emails[:p.cfg.MaxEmails]
	}
	logger.Info("processing batch", slog.Int("emails", len(emails)))

	batchAttrs := instrumentation.NewSpanAttributeBuilder().
		WithBatchSize(len(emails)).
		Build()

	start := time.Now()
	_, span := instrumentation.StartPipelineSpan(ctx, instrumentation.StagePreprocess, batchAttrs...)
	processed := NewPreprocessor(p.logger).Preprocess(emails)
	span.End()
	p.recordStage(ctx, instrumentation.StagePreprocess, time.Since(start))
	if p.metrics != nil {
		p.metrics.RecordEmailsProcessed(ctx, len(processed), len(emails)-len(processed))
	}
	if len(processed) == 0 {
		logger.Info("no emails survived preprocessing")
		return &Result{}
	}

	start = time.Now()
	_, span = instrumentation.StartPipelineSpan(ctx, instrumentation.StageVectorize, batchAttrs...)
	fitted, matrix, ids := NewVectorizer(p.cfg.Vectorizer).FitTransform(processed)
	span.End()
	p.recordStage(ctx, instrumentation.StageVectorize, time.Since(start))
	if len(matrix) == 0 {
		logger.Warn("vectorization produced no usable matrix",
			slog.Int("emails", len(processed)))
		return &Result{Processed: processed}
	}

	start = time.Now()
	_, span = instrumentation.StartPipelineSpan(ctx, instrumentation.StageCluster, batchAttrs...)
	clusterer := NewClusterer(p.cfg.Clusters, p.logger)
	clusters := clusterer.Cluster(matrix, ids, processed, fitted)
	span.End()
	p.recordStage(ctx, instrumentation.StageCluster, time.Since(start))
	if p.metrics != nil {
		p.metrics.RecordClusteringResult(ctx, len(clusters), clusterer.Silhouette())
	}

	logger.Info("batch clustered",
		slog.Int("emails", len(processed)),
		slog.Int("clusters", len(clusters)),
		slog.Float64("silhouette", clusterer.Silhouette()))

	return &Result{
		Processed:  processed,
		Clusters:   clusters,
		Fitted:     fitted,
		Silhouette: clusterer.Silhouette(),
	}
}

func (p *Pipeline) recordStage(ctx context.Context, stage string, d time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordPipelineStage(ctx, stage, d)
	}
}
