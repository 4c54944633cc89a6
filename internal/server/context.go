package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/inboxgroups/internal/cluster"
	"github.com/teemow/inboxgroups/internal/gmail"
	"github.com/teemow/inboxgroups/internal/instrumentation"
	"github.com/teemow/inboxgroups/internal/store"
)

// ServerContext holds the shared dependencies of the MCP server: lazily
// created per-account Gmail clients, the clustering pipeline, the
// sqlite store and the metrics recorder.
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	gmailClients map[string]*gmail.Client // Maps account name to Gmail client
	pipeline     *cluster.Pipeline
	store        *store.Store
	metrics      *instrumentation.Metrics
	maxEmails    int
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, pipeline *cluster.Pipeline, st *store.Store, maxEmails int) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	gmailClients := make(map[string]*gmail.Client)

	// Try to create default Gmail client, but don't fail if token is missing
	// Clients will be lazily initialized when first needed
	if gmail.HasToken() {
		gmailClient, err := gmail.NewClient(shutdownCtx)
		if err != nil {
			// Log but don't fail - will be re-attempted on first use
			fmt.Printf("Warning: failed to create Gmail client for default account: %v\n", err)
		} else {
			gmailClients["default"] = gmailClient
		}
	}

	if maxEmails <= 0 {
		maxEmails = cluster.DefaultMaxEmails
	}

	return &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		gmailClients: gmailClients,
		pipeline:     pipeline,
		store:        st,
		maxEmails:    maxEmails,
		shutdown:     false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// GmailClientForAccount returns the Gmail client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) GmailClientForAccount(account string) *gmail.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check if client already exists
	if client, ok := sc.gmailClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !gmail.HasTokenForAccount(account) {
		return nil
	}

	client, err := gmail.NewClientForAccount(sc.ctx, account)
	if err != nil {
		fmt.Printf("Warning: failed to create Gmail client for account %s: %v\n", account, err)
		return nil
	}

	sc.gmailClients[account] = client
	return client
}

// GmailClient returns the Gmail client for the default account
func (sc *ServerContext) GmailClient() *gmail.Client {
	return sc.GmailClientForAccount("default")
}

// SetGmailClientForAccount sets the Gmail client for a specific account
func (sc *ServerContext) SetGmailClientForAccount(account string, client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClients[account] = client
}

// SetGmailClient sets the Gmail client for the default account
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.SetGmailClientForAccount("default", client)
}

// Pipeline returns the clustering pipeline.
func (sc *ServerContext) Pipeline() *cluster.Pipeline {
	return sc.pipeline
}

// Store returns the sqlite store. May be nil when persistence is disabled.
func (sc *ServerContext) Store() *store.Store {
	return sc.store
}

// MaxEmails returns the per-run email fetch cap.
func (sc *ServerContext) MaxEmails() int {
	return sc.maxEmails
}

// Metrics returns the metrics recorder. May be nil when instrumentation
// is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
