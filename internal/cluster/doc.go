// Package cluster implements the email clustering pipeline: text
// preprocessing, TF-IDF feature vectorization, k-means clustering and
// heuristic cluster labeling.
//
// The pipeline is a linear composition of three stages:
//
//	RawEmail -> Preprocessor -> ProcessedEmail
//	ProcessedEmail -> Vectorizer -> feature matrix
//	feature matrix -> Clusterer -> []Cluster
//
// Each stage is a pure transformation over its inputs. Given the same
// batch of raw emails and the same configuration, two runs produce
// identical cluster membership, ids and labels: the k-means seed is
// fixed and no stage consults the wall clock.
//
// Degenerate inputs never surface as errors. A batch that cannot be
// vectorized yields an empty cluster list; a batch too small (or too
// pathological) to cluster yields a single "All Emails" catch-all.
package cluster
