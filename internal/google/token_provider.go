package google

import (
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// persistingTokenSource wraps a token source and writes refreshed
// tokens back to the account's token file, so later runs reuse the
// fresh access token instead of refreshing again.
type persistingTokenSource struct {
	account string
	base    oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func newPersistingTokenSource(account string, base oauth2.TokenSource) *persistingTokenSource {
	return &persistingTokenSource{account: account, base: base}
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	t, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if t.AccessToken != p.last {
		p.last = t.AccessToken
		p.persist(t)
	}
	return t, nil
}

// persist is best effort: a failed write only costs a refresh round
// trip on the next run.
func (p *persistingTokenSource) persist(t *oauth2.Token) {
	if t.RefreshToken == "" {
		return
	}
	tokenFile := getTokenFilePath(p.account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return
	}
	_ = os.WriteFile(tokenFile, []byte(t.AccessToken+" "+t.RefreshToken), 0600)
}
