package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxgroups/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Gmail access for an account",
		Long: `Run the Google OAuth flow and store the resulting token locally.

Visit the printed URL in your browser, grant access to Gmail and paste
the authorization code back into the terminal. The token is cached per
account, so you only need to do this once per account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := google.MigrateDefaultToken(); err != nil {
				return fmt.Errorf("failed to migrate legacy token: %w", err)
			}

			if google.HasTokenForAccount(account) {
				fmt.Printf("Account %q is already authorized.\n", account)
				return nil
			}

			fmt.Printf("Visit this URL to authorize Gmail access for account %q:\n\n  %s\n\n", account, google.GetAuthURL())
			fmt.Print("Enter the authorization code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Token saved for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize (default: 'default')")
	return cmd
}
