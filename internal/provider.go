package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
)

// Provider holds the per-application state shared by every App with the same identity:
// requested permissions and the access tokens acquired so far.
type Provider struct {
	client      GraphClient
	users       map[int]*tokenUser
	identity    Identity
	permissions []string
	tokens      []graph.AccessToken
	mu          sync.RWMutex
}

func newProvider(identity Identity, client GraphClient) *Provider {
	return &Provider{
		identity: identity,
		client:   client,
		users:    make(map[int]*tokenUser),
	}
}

// AppID returns the application id.
func (p *Provider) AppID() string {
	return p.identity.ID
}

// Client returns the provider's default Graph client.
func (p *Provider) Client() GraphClient {
	return p.client
}

// SetPermissions replaces the requested permissions.
func (p *Provider) SetPermissions(permissions []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permissions = append([]string(nil), permissions...)
}

// Permissions returns a copy of the requested permissions.
func (p *Provider) Permissions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.permissions...)
}

// AddAccessToken appends token and returns its index.
func (p *Provider) AddAccessToken(token graph.AccessToken) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	return len(p.tokens) - 1
}

// LastAccessToken returns the most recently stored token.
func (p *Provider) LastAccessToken() (graph.AccessToken, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.tokens) == 0 {
		return graph.AccessToken{}, false
	}
	return p.tokens[len(p.tokens)-1], true
}

// AccessToken returns the token stored at index i.
func (p *Provider) AccessToken(i int) (graph.AccessToken, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i < 0 || i >= len(p.tokens) {
		return graph.AccessToken{}, errors.Join(ErrIndexOutOfRange, fmt.Errorf("index %d, %d tokens stored", i, len(p.tokens)))
	}
	return p.tokens[i], nil
}

// HasAccessTokens reports whether at least one token was stored.
func (p *Provider) HasAccessTokens() bool {
	return p.TokenCount() > 0
}

// TokenCount returns the number of stored tokens.
func (p *Provider) TokenCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tokens)
}

// LoginURL builds the authorization dialog URL through the provider's client.
func (p *Provider) LoginURL(ctx context.Context, callbackURL string, permissions []string) (string, error) {
	return loginURL(ctx, p.client, callbackURL, permissions)
}

// User returns a handle for the token picked by sel, sending requests through client.
// Per-token state such as the user id is kept by token index and shared by all handles.
// Without stored tokens, Auto yields a handle with no token.
func (p *Provider) User(client GraphClient, sel TokenSelector) (*User, error) {
	if client == nil {
		client = p.client
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	idx := sel.index
	if sel.auto {
		if len(p.tokens) == 0 {
			return newUser(client, nil, -1), nil
		}
		idx = len(p.tokens) - 1
	}
	if idx < 0 || idx >= len(p.tokens) {
		return nil, errors.Join(ErrIndexOutOfRange, fmt.Errorf("index %d, %d tokens stored", idx, len(p.tokens)))
	}

	tu, ok := p.users[idx]
	if !ok {
		token := p.tokens[idx]
		tu = &tokenUser{token: &token, index: idx}
		p.users[idx] = tu
	}
	return tu.bind(client), nil
}

// TokenSelector picks a stored token.
type TokenSelector struct {
	index int
	auto  bool
}

// Auto selects the most recently stored token.
var Auto = TokenSelector{auto: true}

// Index selects the token stored at position i.
func Index(i int) TokenSelector {
	return TokenSelector{index: i}
}

func loginURL(ctx context.Context, client GraphClient, callbackURL string, permissions []string) (string, error) {
	if callbackURL == "" {
		return "", errors.Join(ErrConfiguration, errors.New("callback url is required"))
	}
	u, err := client.LoginURL(ctx, callbackURL, permissions)
	if err != nil {
		return "", errors.Join(ErrSDK, err)
	}
	return u, nil
}
