package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterer_EmptyInput(t *testing.T) {
	c := NewClusterer(0, nil)
	assert.Nil(t, c.Cluster(nil, nil, nil, nil))
	assert.Zero(t, c.Silhouette())
}

func TestClusterer_SingleEmailFallsBackToOneCluster(t *testing.T) {
	c := NewClusterer(0, nil)

	emails := []ProcessedEmail{{GmailID: "g1", CleanedSubject: "hello"}}
	clusters := c.Cluster([][]float64{{1, 2, 3}}, []string{"g1"}, emails, nil)

	require.Len(t, clusters, 1)
	assert.Equal(t, 1, clusters[0].ID)
	assert.Equal(t, "All Emails", clusters[0].Label)
	assert.Equal(t, 1, clusters[0].EmailCount)
	assert.Equal(t, []string{"g1"}, clusters[0].EmailIDs)
}

func TestClusterer_PartitionAndOrdering(t *testing.T) {
	// Two tight groups of different sizes, far apart.
	vectors := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1}, {0.1, 0.1},
		{10, 10}, {10.1, 10},
	}
	ids := []string{"a", "b", "c", "d", "e", "f"}
	emails := make([]ProcessedEmail, len(ids))
	for i, id := range ids {
		emails[i] = ProcessedEmail{GmailID: id}
	}

	c := NewClusterer(2, nil)
	clusters := c.Cluster(vectors, ids, emails, nil)

	require.Len(t, clusters, 2)
	assert.Equal(t, 1, clusters[0].ID)
	assert.Equal(t, 2, clusters[1].ID)
	assert.Equal(t, 4, clusters[0].EmailCount)
	assert.Equal(t, 2, clusters[1].EmailCount)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, clusters[0].EmailIDs)
	assert.ElementsMatch(t, []string{"e", "f"}, clusters[1].EmailIDs)

	assert.Greater(t, c.Silhouette(), 0.0)
}

func TestAdaptiveClusterCount(t *testing.T) {
	tests := []struct {
		emails   int
		expected int
	}{
		{1, 2},
		{9, 2},
		{10, 3},
		{29, 3},
		{30, 3},
		{50, 4},
		{99, 4},
		{100, 5},
		{200, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, adaptiveClusterCount(tt.emails), "n=%d", tt.emails)
	}
}
