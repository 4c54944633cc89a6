package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxgroups/internal/config"
	"github.com/teemow/inboxgroups/internal/gmail"
	"github.com/teemow/inboxgroups/internal/google"
	"github.com/teemow/inboxgroups/internal/store"

	clusterpkg "github.com/teemow/inboxgroups/internal/cluster"
)

func newClusterCmd() *cobra.Command {
	var (
		account   string
		maxEmails int
		clusters  int
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Fetch recent inbox emails and group them into labeled clusters",
		Long: `Fetch your most recent inbox emails, group similar emails into clusters
and print the resulting groups with heuristic labels.

The result is stored in a local sqlite database so the groups can be
inspected and archived later, including through the MCP server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if maxEmails > 0 {
				cfg.MaxEmails = maxEmails
			}
			if clusters > 0 {
				cfg.DefaultClusters = clusters
			}

			if err := google.MigrateDefaultToken(); err != nil {
				return fmt.Errorf("failed to migrate legacy token: %w", err)
			}
			if !gmail.HasTokenForAccount(account) {
				return fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
			}

			client, err := gmail.NewClientForAccount(ctx, account)
			if err != nil {
				return fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
			}

			log.Printf("Fetching up to %d inbox emails", cfg.MaxEmails)
			emails, err := client.FetchRecentInbox(ctx, int64(cfg.MaxEmails))
			if err != nil {
				return fmt.Errorf("failed to fetch inbox: %w", err)
			}
			if len(emails) == 0 {
				fmt.Println("No emails found in the inbox.")
				return nil
			}

			pipeline := clusterpkg.NewPipeline(cfg.PipelineConfig(), nil)
			result := pipeline.Run(ctx, emails)
			if len(result.Clusters) == 0 {
				fmt.Printf("Fetched %d emails but none could be clustered.\n", len(emails))
				return nil
			}

			st, err := store.Open(ctx, cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to prepare database: %w", err)
			}
			if err := st.SaveEmails(ctx, emails); err != nil {
				return fmt.Errorf("failed to save emails: %w", err)
			}
			runID, err := st.SaveClusters(ctx, result.Clusters, len(result.Processed), result.Silhouette)
			if err != nil {
				return fmt.Errorf("failed to save clusters: %w", err)
			}

			fmt.Printf("Clustered %d emails into %d groups (silhouette %.2f, run %s):\n\n",
				len(result.Processed), len(result.Clusters), result.Silhouette, runID)
			for _, c := range result.Clusters {
				fmt.Printf("%d. %s (%d emails)\n   %s\n", c.ID, c.Label, c.EmailCount, c.Description)
				for _, e := range c.Emails {
					fmt.Printf("   - %s (from %s)\n", e.CleanedSubject, e.SenderDomain)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().IntVar(&maxEmails, "max-emails", 0, "Maximum number of inbox emails to fetch (default from MAX_EMAILS or 200)")
	cmd.Flags().IntVar(&clusters, "clusters", 0, "Number of clusters to create (default: adaptive)")
	return cmd
}
