package internal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
)

const (
	testAppID     = "123456789"
	testAppSecret = "app-secret"
	testUserID    = "10001"
)

// fakeGraph implements GraphClient for tests. Nil hooks fall back to a happy path.
type fakeGraph struct {
	exchange  func(r *http.Request) (*graph.AccessToken, error)
	debug     func(token graph.AccessToken) (*graph.TokenMetadata, error)
	longLived func(token graph.AccessToken) (*graph.AccessToken, error)
	get       func(path string) (*graph.Response, error)

	calls map[string]int
	paths []string
	mu    sync.Mutex
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{calls: make(map[string]int)}
}

func (f *fakeGraph) factory() ClientFactory {
	return func(graph.Config, ...graph.Option) (GraphClient, error) {
		return f, nil
	}
}

func (f *fakeGraph) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGraph) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeGraph) LoginURL(_ context.Context, callbackURL string, scopes []string) (string, error) {
	f.record("login_url")
	q := url.Values{
		"client_id":    {testAppID},
		"redirect_uri": {callbackURL},
		"scope":        {strings.Join(scopes, ",")},
	}
	return "https://dialog.test/v23.0/dialog/oauth?" + q.Encode(), nil
}

func (f *fakeGraph) ExchangeCallback(_ context.Context, r *http.Request, _ string) (*graph.AccessToken, error) {
	f.record("exchange")
	if f.exchange != nil {
		return f.exchange(r)
	}
	if r.URL.Query().Get("code") == "" {
		return nil, nil
	}
	tok := graph.NewAccessToken("short-token", time.Now().Add(time.Hour))
	return &tok, nil
}

func (f *fakeGraph) CallbackError(r *http.Request) *graph.CallbackError {
	q := r.URL.Query()
	if q.Get("error") == "" {
		return nil
	}
	return &graph.CallbackError{
		Name:        q.Get("error"),
		Code:        q.Get("error_code"),
		Reason:      q.Get("error_reason"),
		Description: q.Get("error_description"),
	}
}

func (f *fakeGraph) DebugToken(_ context.Context, token graph.AccessToken) (*graph.TokenMetadata, error) {
	f.record("debug")
	if f.debug != nil {
		return f.debug(token)
	}
	return &graph.TokenMetadata{
		AppID:     testAppID,
		UserID:    testUserID,
		IsValid:   true,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

func (f *fakeGraph) ExchangeForLongLived(_ context.Context, token graph.AccessToken) (*graph.AccessToken, error) {
	f.record("long_lived")
	if f.longLived != nil {
		return f.longLived(token)
	}
	tok := graph.NewAccessToken("long-token", time.Now().Add(60*24*time.Hour))
	return &tok, nil
}

func (f *fakeGraph) Get(_ context.Context, path string, token graph.AccessToken) (*graph.Response, error) {
	f.record("get")
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if token.IsEmpty() {
		return nil, graph.ErrEmptyToken
	}
	if f.get != nil {
		return f.get(path)
	}
	return &graph.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"` + testUserID + `","name":"Test User"}`)}, nil
}

func (f *fakeGraph) Post(_ context.Context, path string, data url.Values, token graph.AccessToken) (*graph.Response, error) {
	f.record("post")
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if token.IsEmpty() {
		return nil, graph.ErrEmptyToken
	}
	if data.Get("message") == "" {
		return nil, &graph.Error{Message: "(#100) Missing message", Type: "OAuthException", Code: 100, StatusCode: http.StatusBadRequest}
	}
	return &graph.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"` + testUserID + `_1"}`)}, nil
}

func (f *fakeGraph) recordedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

var errNetwork = errors.New("dial tcp: connection refused")

func testIdentity() Identity {
	return Identity{ID: testAppID, Secret: testAppSecret}
}
