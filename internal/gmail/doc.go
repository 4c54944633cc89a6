// Package gmail provides a client for interacting with the Gmail API.
//
// The client feeds the clustering pipeline and acts on its results:
//   - Fetch recent inbox messages (bounded batch) as raw email records
//   - Archive and unarchive messages by id
//
// The client supports multi-account authentication using the Google OAuth2 flow.
// Tokens are loaded from the file system (~/.cache/inboxgroups/) via the
// google package.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Fetch recent inbox messages for clustering
//	emails, err := client.FetchRecentInbox(ctx, 200)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Archive a message once its cluster has been reviewed
//	if err := client.ArchiveMessage(ctx, emails[0].GmailID); err != nil {
//	    log.Fatal(err)
//	}
package gmail
