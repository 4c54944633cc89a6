package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxgroups/internal/cluster"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func testEmails() []cluster.RawEmail {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []cluster.RawEmail{
		{GmailID: "g1", Subject: "Weekly Newsletter", Sender: "news@example.com", Body: "newsletter body", DateReceived: base},
		{GmailID: "g2", Subject: "Order Shipped", Sender: "shop@store.com", Body: "order body", DateReceived: base.Add(time.Hour)},
		{GmailID: "g3", Subject: "Security Alert", Sender: "alert@service.com", Body: "alert body", DateReceived: base.Add(2 * time.Hour)},
	}
}

func testClusters() []cluster.Cluster {
	return []cluster.Cluster{
		{ID: 1, Label: "Newsletters & Subscriptions", Description: "Newsletter emails (2 emails)", EmailCount: 2, EmailIDs: []string{"g1", "g2"}},
		{ID: 2, Label: "Notifications & Alerts", Description: "Alerts (1 emails)", EmailCount: 1, EmailIDs: []string{"g3"}},
	}
}

func TestSaveEmails_Upsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmails(ctx, testEmails()))

	// Saving again with a changed subject must update, not duplicate.
	updated := testEmails()
	updated[0].Subject = "Weekly Newsletter #2"
	require.NoError(t, s.SaveEmails(ctx, updated))

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalEmails)
	assert.Equal(t, 0, stats.ArchivedEmails)
}

func TestSaveClusters_ReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmails(ctx, testEmails()))

	runID1, err := s.SaveClusters(ctx, testClusters(), 3, 0.4)
	require.NoError(t, err)
	assert.NotEmpty(t, runID1)

	// A second run replaces the clusters entirely.
	second := []cluster.Cluster{
		{ID: 1, Label: "All Emails", Description: "All your recent emails", EmailCount: 3, EmailIDs: []string{"g1", "g2", "g3"}},
	}
	runID2, err := s.SaveClusters(ctx, second, 3, 0.0)
	require.NoError(t, err)
	assert.NotEqual(t, runID1, runID2)

	clusters, err := s.GetClustersWithEmails(ctx)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "All Emails", clusters[0].Label)
	assert.Len(t, clusters[0].Emails, 3)
}

func TestGetClustersWithEmails_Ordering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmails(ctx, testEmails()))
	_, err := s.SaveClusters(ctx, testClusters(), 3, 0.4)
	require.NoError(t, err)

	clusters, err := s.GetClustersWithEmails(ctx)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	// Largest cluster first.
	assert.Equal(t, 1, clusters[0].ID)
	assert.Equal(t, 2, clusters[0].EmailCount)
	require.Len(t, clusters[0].Emails, 2)

	// Member emails ordered by date received descending.
	assert.Equal(t, "g2", clusters[0].Emails[0].GmailID)
	assert.Equal(t, "g1", clusters[0].Emails[1].GmailID)
}

func TestArchiveClusterEmails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmails(ctx, testEmails()))
	_, err := s.SaveClusters(ctx, testClusters(), 3, 0.4)
	require.NoError(t, err)

	gmailIDs, err := s.ArchiveClusterEmails(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"g1", "g2"}, gmailIDs)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ArchivedEmails)

	// Archived emails disappear from cluster listings.
	clusters, err := s.GetClustersWithEmails(ctx)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Empty(t, clusters[0].Emails)
	assert.Len(t, clusters[1].Emails, 1)
}

func TestArchiveClusterEmails_UnknownCluster(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmails(ctx, testEmails()))

	gmailIDs, err := s.ArchiveClusterEmails(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, gmailIDs)
}

func TestGetStats_LastRun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats.LastRun)

	require.NoError(t, s.SaveEmails(ctx, testEmails()))
	runID, err := s.SaveClusters(ctx, testClusters(), 3, 0.42)
	require.NoError(t, err)

	stats, err = s.GetStats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats.LastRun)
	assert.Equal(t, runID, stats.LastRun.ID)
	assert.Equal(t, 3, stats.LastRun.EmailCount)
	assert.Equal(t, 2, stats.LastRun.ClusterCount)
	assert.InDelta(t, 0.42, stats.LastRun.Silhouette, 1e-9)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveEmails(ctx, testEmails()))
	_, err := s.SaveClusters(ctx, testClusters(), 3, 0.4)
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalEmails)
	assert.Equal(t, 0, stats.ClusterCount)
	assert.Nil(t, stats.LastRun)
}
