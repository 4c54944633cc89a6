// Package cluster_tools provides MCP tools for clustering a Gmail inbox
// into labeled groups and acting on the results.
//
// The tools fetch recent inbox emails, run them through the clustering
// pipeline, persist the outcome in the local store and expose the
// clusters for listing and bulk archiving.
package cluster_tools
