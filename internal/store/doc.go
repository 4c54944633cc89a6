// Package store persists fetched emails, clustering results and run
// summaries in a local sqlite database.
//
// Clusters always reflect the most recent clustering run; saving a new
// run replaces the previous clusters and assignments. Emails accumulate
// across runs, keyed by their Gmail id, so archive state survives
// re-clustering.
package store
