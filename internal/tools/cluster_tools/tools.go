package cluster_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/inboxgroups/internal/gmail"
	"github.com/teemow/inboxgroups/internal/google"
	"github.com/teemow/inboxgroups/internal/server"
	"github.com/teemow/inboxgroups/internal/tools/common"
)

// RegisterClusterTools registers all clustering tools with the MCP server
func RegisterClusterTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	clusterEmailsTool := mcp.NewTool("inbox_cluster_emails",
		mcp.WithDescription("Fetch recent inbox emails and group them into labeled clusters"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("maxEmails",
			mcp.Description("Maximum number of inbox emails to fetch and cluster (default: 200)"),
		),
	)

	s.AddTool(clusterEmailsTool, common.InstrumentedToolHandlerWithOperation("inbox_cluster_emails", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClusterEmails(ctx, request, sc)
		}))

	listClustersTool := mcp.NewTool("inbox_list_clusters",
		mcp.WithDescription("List the clusters from the most recent clustering run with their member emails"),
	)

	s.AddTool(listClustersTool, common.InstrumentedToolHandler("inbox_list_clusters", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListClusters(ctx, request, sc)
		}))

	statsTool := mcp.NewTool("inbox_stats",
		mcp.WithDescription("Show email and cluster statistics from the local database"),
	)

	s.AddTool(statsTool, common.InstrumentedToolHandler("inbox_stats", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleStats(ctx, request, sc)
		}))

	// Archiving modifies the mailbox, so it is unavailable in read-only mode
	if !readOnly {
		archiveClusterTool := mcp.NewTool("inbox_archive_cluster",
			mcp.WithDescription("Archive all emails in a cluster by removing them from the inbox"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithNumber("clusterId",
				mcp.Required(),
				mcp.Description("The ID of the cluster to archive, as reported by inbox_list_clusters"),
			),
		)

		s.AddTool(archiveClusterTool, common.InstrumentedToolHandlerWithOperation("inbox_archive_cluster", "modify", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleArchiveCluster(ctx, request, sc)
			}))
	}

	return nil
}

// gmailClientForAccount returns the Gmail client for the account, or an
// error result explaining how to authenticate.
func gmailClientForAccount(ctx context.Context, sc *server.ServerContext, account string) (*gmail.Client, *mcp.CallToolResult) {
	client := sc.GmailClientForAccount(account)
	if client != nil {
		return client, nil
	}

	if !gmail.HasTokenForAccount(account) {
		return nil, mcp.NewToolResultError(google.GetAuthenticationErrorMessage(account))
	}

	client, err := gmail.NewClientForAccount(ctx, account)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create Gmail client for account %s: %v", account, err))
	}
	sc.SetGmailClientForAccount(account, client)
	return client, nil
}

func handleClusterEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	maxEmails := int64(sc.MaxEmails())
	if maxVal, ok := args["maxEmails"].(float64); ok && maxVal > 0 {
		maxEmails = int64(maxVal)
	}

	client, errResult := gmailClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	emails, err := client.FetchRecentInbox(ctx, maxEmails)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch inbox: %v", err)), nil
	}
	if len(emails) == 0 {
		return mcp.NewToolResultText("No emails found in the inbox."), nil
	}

	pipeline := sc.Pipeline()
	if pipeline == nil {
		return mcp.NewToolResultError("Clustering pipeline is not configured"), nil
	}

	result := pipeline.Run(ctx, emails)
	if len(result.Clusters) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Fetched %d emails but none could be clustered.", len(emails))), nil
	}

	if st := sc.Store(); st != nil {
		if err := st.SaveEmails(ctx, emails); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save emails: %v", err)), nil
		}
		if _, err := st.SaveClusters(ctx, result.Clusters, len(result.Processed), result.Silhouette); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save clusters: %v", err)), nil
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Clustered %d emails into %d groups (silhouette %.2f):\n\n",
		len(result.Processed), len(result.Clusters), result.Silhouette)
	for _, c := range result.Clusters {
		fmt.Fprintf(&sb, "%d. %s - %s\n", c.ID, c.Label, c.Description)
	}
	sb.WriteString("\nUse inbox_list_clusters to inspect the member emails, or inbox_archive_cluster to archive a whole group.")

	return mcp.NewToolResultText(sb.String()), nil
}

func handleListClusters(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	st := sc.Store()
	if st == nil {
		return mcp.NewToolResultError("No local database configured"), nil
	}

	clusters, err := st.GetClustersWithEmails(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load clusters: %v", err)), nil
	}
	if len(clusters) == 0 {
		return mcp.NewToolResultText("No clusters found. Run inbox_cluster_emails first."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d clusters:\n", len(clusters))
	for _, c := range clusters {
		fmt.Fprintf(&sb, "\n%d. %s (%d emails)\n   %s\n", c.ID, c.Label, c.EmailCount, c.Description)
		for _, e := range c.Emails {
			fmt.Fprintf(&sb, "   - [%s] %s (from %s)\n", e.GmailID, e.Subject, e.Sender)
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleArchiveCluster(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	clusterVal, ok := args["clusterId"].(float64)
	if !ok {
		return mcp.NewToolResultError("clusterId is required"), nil
	}
	clusterID := int(clusterVal)

	st := sc.Store()
	if st == nil {
		return mcp.NewToolResultError("No local database configured"), nil
	}

	client, errResult := gmailClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	gmailIDs, err := st.ArchiveClusterEmails(ctx, clusterID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to archive cluster %d: %v", clusterID, err)), nil
	}
	if len(gmailIDs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Cluster %d has no unarchived emails.", clusterID)), nil
	}

	archived, errs := client.ArchiveMessages(ctx, gmailIDs)

	result := fmt.Sprintf("Archived %d of %d emails from cluster %d.", archived, len(gmailIDs), clusterID)
	if len(errs) > 0 {
		result += fmt.Sprintf("\n%d emails failed to archive:", len(errs))
		for _, e := range errs {
			result += fmt.Sprintf("\n- %v", e)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func handleStats(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	st := sc.Store()
	if st == nil {
		return mcp.NewToolResultError("No local database configured"), nil
	}

	stats, err := st.GetStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load stats: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Emails: %d total, %d archived\n", stats.TotalEmails, stats.ArchivedEmails)
	fmt.Fprintf(&sb, "Clusters: %d\n", stats.ClusterCount)
	if stats.LastRun != nil {
		fmt.Fprintf(&sb, "Last run: %s (%d emails, %d clusters, silhouette %.2f) at %s\n",
			stats.LastRun.ID, stats.LastRun.EmailCount, stats.LastRun.ClusterCount,
			stats.LastRun.Silhouette, stats.LastRun.CreatedAt.Format("2006-01-02 15:04:05"))
	} else {
		sb.WriteString("Last run: never\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
