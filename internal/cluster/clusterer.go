package cluster

import (
	"log/slog"
	"sort"

	"github.com/teemow/inboxgroups/internal/logging"
)

// Clusterer partitions vectorized emails into labeled groups.
type Clusterer struct {
	// requestedClusters pins the cluster count when > 0; otherwise the
	// count is chosen adaptively from the batch size.
	requestedClusters int
	logger            *slog.Logger

	// silhouette holds the quality score of the last Cluster call.
	// Informational only; it never gates clustering decisions.
	silhouette float64
}

// NewClusterer creates a Clusterer. A clusters value of 0 lets the
// clusterer pick the count adaptively per batch.
func NewClusterer(clusters int, logger *slog.Logger) *Clusterer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Clusterer{
		requestedClusters: clusters,
		logger:            logging.WithOperation(logger, "cluster"),
	}
}

// Silhouette returns the silhouette score of the most recent Cluster
// call, 0.0 if scoring failed or was not applicable.
func (c *Clusterer) Silhouette() float64 {
	return c.silhouette
}

// Cluster partitions emails into labeled groups using k-means over
// their feature vectors. Degenerate input yields well-defined output
// rather than an error: an empty batch returns no clusters, a batch
// too small to split returns the single "All Emails" cluster, and any
// algorithmic failure falls back to that same single cluster.
func (c *Clusterer) Cluster(vectors [][]float64, ids []string, emails []ProcessedEmail, fitted *FittedVectorizer) []Cluster {
	c.silhouette = 0

	if len(vectors) == 0 || len(ids) == 0 {
		return nil
	}

	k := c.requestedClusters
	if k <= 0 {
		k = adaptiveClusterCount(len(vectors))
	}
	if k > len(vectors) {
		k = len(vectors)
	}
	if k < 2 {
		return singleCluster(emails, ids)
	}

	result, err := runKMeans(vectors, k)
	if err != nil {
		c.logger.Warn("clustering failed, falling back to a single cluster", logging.Err(err))
		return singleCluster(emails, ids)
	}

	if len(vectors) > 1 {
		c.silhouette = silhouetteScore(vectors, result.labels)
	}

	clusters := c.assemble(result.labels, k, emails, ids, vectors, fitted)
	c.logger.Debug("clustering complete",
		slog.Int("clusters", len(clusters)),
		slog.Float64("silhouette", c.silhouette))
	return clusters
}

// adaptiveClusterCount chooses a cluster count from the batch size:
// small batches get few clusters to avoid over-fragmentation, large
// batches are capped at five.
func adaptiveClusterCount(n int) int {
	switch {
	case n < 10:
		return 2
	case n < 30:
		return 3
	case n < 100:
		return min(4, n/10)
	default:
		return min(5, n/20)
	}
}

// singleCluster wraps the whole batch in one catch-all cluster.
func singleCluster(emails []ProcessedEmail, ids []string) []Cluster {
	return []Cluster{{
		ID:          1,
		Label:       "All Emails",
		Description: "All your recent emails",
		EmailCount:  len(emails),
		Emails:      emails,
		EmailIDs:    ids,
	}}
}

// assemble groups emails by assigned label, drops empty groups,
// labels each group, sorts by size descending and reassigns ids 1..N
// in sorted order so id always reflects rank by size.
func (c *Clusterer) assemble(labels []int, k int, emails []ProcessedEmail, ids []string, vectors [][]float64, fitted *FittedVectorizer) []Cluster {
	clusters := make([]Cluster, 0, k)
	for group := 0; group < k; group++ {
		var (
			members   []ProcessedEmail
			memberIDs []string
			rows      [][]float64
		)
		for i, l := range labels {
			if l != group {
				continue
			}
			members = append(members, emails[i])
			memberIDs = append(memberIDs, ids[i])
			rows = append(rows, vectors[i])
		}
		if len(members) == 0 {
			continue
		}

		label, description := labelCluster(members, fitted, rows)
		clusters = append(clusters, Cluster{
			Label:       label,
			Description: description,
			EmailCount:  len(members),
			Emails:      members,
			EmailIDs:    memberIDs,
		})
	}

	// Stable sort keeps the k-means output order for equal sizes.
	sort.SliceStable(clusters, func(a, b int) bool {
		return clusters[a].EmailCount > clusters[b].EmailCount
	})
	for i := range clusters {
		clusters[i].ID = i + 1
	}
	return clusters
}
