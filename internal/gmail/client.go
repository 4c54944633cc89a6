package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxgroups/internal/cluster"
	"github.com/teemow/inboxgroups/internal/google"
	"github.com/teemow/inboxgroups/internal/instrumentation"
)

// Client wraps the Gmail Users service for one account.
type Client struct {
	svc     *gmail.UsersService
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return google.HasToken()
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication for a specific account
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
	}, nil
}

// NewClient creates a new Gmail client with OAuth2 authentication for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// FetchRecentInbox fetches up to maxResults recent inbox messages and
// converts them into RawEmail records ready for the clustering pipeline.
// Messages that cannot be fetched individually are skipped.
func (c *Client) FetchRecentInbox(ctx context.Context, maxResults int64) ([]cluster.RawEmail, error) {
	ctx, span := instrumentation.StartGmailSpan(ctx, "list",
		instrumentation.NewSpanAttributeBuilder().WithAccount(c.account).Build()...)
	defer span.End()

	refs, err := c.listMessageRefs(ctx, "in:inbox", maxResults)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	emails := make([]cluster.RawEmail, 0, len(refs))
	for _, ref := range refs {
		msg, err := c.svc.Messages.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			continue
		}
		emails = append(emails, messageToRawEmail(msg))
	}
	return emails, nil
}

// listMessageRefs lists message references matching the query with
// pagination, making multiple API calls if necessary.
func (c *Client) listMessageRefs(ctx context.Context, q string, maxResults int64) ([]*gmail.Message, error) {
	var refs []*gmail.Message
	pageToken := ""

	for {
		remaining := maxResults - int64(len(refs))
		if remaining <= 0 {
			break
		}

		// Gmail API has a max page size, typically 100
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(q).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, err
		}

		refs = append(refs, res.Messages...)

		if res.NextPageToken == "" || int64(len(refs)) >= maxResults {
			break
		}

		pageToken = res.NextPageToken
	}

	if int64(len(refs)) > maxResults {
		refs = refs[:maxResults]
	}

	return refs, nil
}

// ArchiveMessage archives a message by removing the INBOX label
func (c *Client) ArchiveMessage(ctx context.Context, id string) error {
	ctx, span := instrumentation.StartGmailSpan(ctx, "modify",
		instrumentation.NewSpanAttributeBuilder().
			WithAccount(c.account).
			WithResource("email", id).
			Build()...)
	defer span.End()

	_, err := c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return fmt.Errorf("failed to archive message %s: %w", id, err)
	}
	return nil
}

// ArchiveMessages archives the given messages, returning how many were
// archived and the errors for those that failed.
func (c *Client) ArchiveMessages(ctx context.Context, ids []string) (int, []error) {
	archived := 0
	var errs []error
	for _, id := range ids {
		if err := c.ArchiveMessage(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		archived++
	}
	return archived, errs
}

// UnarchiveMessage moves a message back to inbox by adding the INBOX label
func (c *Client) UnarchiveMessage(ctx context.Context, id string) error {
	_, err := c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		AddLabelIds: []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to unarchive message %s: %w", id, err)
	}
	return nil
}
