package cluster_tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxgroups/internal/cluster"
	"github.com/teemow/inboxgroups/internal/server"
	"github.com/teemow/inboxgroups/internal/store"
)

func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.EnsureSchema(ctx))

	pipeline := cluster.NewPipeline(cluster.PipelineConfig{}, nil)

	sc, err := server.NewServerContext(ctx, pipeline, st, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func seedClusters(t *testing.T, sc *server.ServerContext) {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	emails := []cluster.RawEmail{
		{GmailID: "g1", Subject: "Weekly Newsletter", Sender: "news@example.com", Body: "newsletter", DateReceived: base},
		{GmailID: "g2", Subject: "Security Alert", Sender: "alert@service.com", Body: "alert", DateReceived: base.Add(time.Hour)},
	}
	require.NoError(t, sc.Store().SaveEmails(ctx, emails))

	clusters := []cluster.Cluster{
		{ID: 1, Label: "Newsletters & Subscriptions", Description: "Newsletter emails (1 emails)", EmailCount: 1, EmailIDs: []string{"g1"}},
		{ID: 2, Label: "Notifications & Alerts", Description: "Alerts (1 emails)", EmailCount: 1, EmailIDs: []string{"g2"}},
	}
	_, err := sc.Store().SaveClusters(ctx, clusters, 2, 0.4)
	require.NoError(t, err)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestRegisterClusterTools(t *testing.T) {
	sc := newTestContext(t)
	s := mcpserver.NewMCPServer("test", "0.0.1")

	err := RegisterClusterTools(s, sc, false)
	assert.NoError(t, err)
}

func TestRegisterClusterTools_ReadOnly(t *testing.T) {
	sc := newTestContext(t)
	s := mcpserver.NewMCPServer("test", "0.0.1")

	err := RegisterClusterTools(s, sc, true)
	assert.NoError(t, err)
}

func TestHandleListClusters_Empty(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	result, err := handleListClusters(ctx, callRequest("inbox_list_clusters", nil), sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No clusters found")
}

func TestHandleListClusters(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)
	seedClusters(t, sc)

	result, err := handleListClusters(ctx, callRequest("inbox_list_clusters", nil), sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Found 2 clusters")
	assert.Contains(t, text, "Newsletters & Subscriptions")
	assert.Contains(t, text, "Weekly Newsletter")
	assert.Contains(t, text, "alert@service.com")
}

func TestHandleStats(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)
	seedClusters(t, sc)

	result, err := handleStats(ctx, callRequest("inbox_stats", nil), sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Emails: 2 total, 0 archived")
	assert.Contains(t, text, "Clusters: 2")
	assert.NotContains(t, text, "Last run: never")
}

func TestHandleStats_EmptyDatabase(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	result, err := handleStats(ctx, callRequest("inbox_stats", nil), sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Last run: never")
}

func TestHandleClusterEmails_NoToken(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	// Account names never have tokens in the test environment, so the
	// handler must return an authentication hint instead of failing.
	req := callRequest("inbox_cluster_emails", map[string]interface{}{
		"account": "missing-token-account",
	})

	result, err := handleClusterEmails(ctx, req, sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing-token-account")
}

func TestHandleArchiveCluster_MissingClusterID(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	result, err := handleArchiveCluster(ctx, callRequest("inbox_archive_cluster", map[string]interface{}{}), sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "clusterId is required")
}

func TestHandleArchiveCluster_NoToken(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)
	seedClusters(t, sc)

	req := callRequest("inbox_archive_cluster", map[string]interface{}{
		"account":   "missing-token-account",
		"clusterId": float64(1),
	})

	result, err := handleArchiveCluster(ctx, req, sc)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var sb strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}
