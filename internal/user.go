package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
)

const mePath = "/me"

// tokenUser is the state shared by every handle of one stored token.
type tokenUser struct {
	token *graph.AccessToken
	group singleflight.Group
	id    string
	index int
	mu    sync.RWMutex
}

// User is an authenticated handle bound to one stored access token.
// Handles for the same token share the resolved user id; each one sends
// requests through the Graph client of the session that returned it.
type User struct {
	client GraphClient
	*tokenUser
}

func newUser(client GraphClient, token *graph.AccessToken, index int) *User {
	return (&tokenUser{token: token, index: index}).bind(client)
}

func (t *tokenUser) bind(client GraphClient) *User {
	return &User{client: client, tokenUser: t}
}

// Token returns the access token the handle is bound to.
func (u *User) Token() (graph.AccessToken, bool) {
	if u.token == nil {
		return graph.AccessToken{}, false
	}
	return *u.token, true
}

// Index returns the provider index of the token, or -1 for a handle without token.
func (u *User) Index() int {
	return u.index
}

// GetOption configures a Get request.
type GetOption func(*getOptions)

type getOptions struct {
	path  string
	limit int
}

// WithPath sets the Graph node to read. Default: /me.
func WithPath(path string) GetOption {
	return func(o *getOptions) {
		o.path = path
	}
}

// WithLimit sets the page size for edge reads. Zero omits the parameter.
func WithLimit(n int) GetOption {
	return func(o *getOptions) {
		o.limit = n
	}
}

// Get reads fields of a Graph node with the handle's token.
func (u *User) Get(ctx context.Context, fields []string, opts ...GetOption) (*graph.Response, error) {
	if u.token == nil {
		return nil, ErrMissingToken
	}

	o := getOptions{path: mePath}
	for _, opt := range opts {
		opt(&o)
	}

	base, rawQuery, _ := strings.Cut(o.path, "?")
	base = strings.TrimRight(base, "/")

	var params []string
	if rawQuery != "" {
		params = append(params, rawQuery)
	}
	if len(fields) > 0 {
		params = append(params, "fields="+strings.Join(fields, ","))
	}
	if o.limit > 0 {
		params = append(params, "limit="+strconv.Itoa(o.limit))
	}
	path := base
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	resp, err := u.client.Get(ctx, path, *u.token)
	if err != nil {
		return nil, classify(err)
	}

	if base == mePath {
		if node, err := resp.GraphUser(); err == nil && node.ID != "" {
			u.mu.Lock()
			u.id = node.ID
			u.mu.Unlock()
		}
	}
	return resp, nil
}

// Post publishes data to a Graph edge with the handle's token.
func (u *User) Post(ctx context.Context, path string, data url.Values) (*graph.Response, error) {
	if u.token == nil {
		return nil, ErrMissingToken
	}
	resp, err := u.client.Post(ctx, path, data, *u.token)
	if err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

// ID returns the user id, reading it from /me on first use.
// Concurrent lookups share one request.
func (u *User) ID(ctx context.Context) (string, bool) {
	if id := u.cachedID(); id != "" {
		return id, true
	}
	if u.token == nil {
		return "", false
	}

	v, err, _ := u.group.Do("id", func() (any, error) {
		if _, err := u.Get(ctx, []string{"id"}); err != nil {
			return "", err
		}
		return u.cachedID(), nil
	})
	if err != nil {
		return "", false
	}
	id, _ := v.(string)
	return id, id != ""
}

// String returns the cached user id, or an empty string.
func (u *User) String() string {
	return u.cachedID()
}

// MarshalJSON renders the handle as {"id": "..."}.
func (u *User) MarshalJSON() ([]byte, error) {
	if u.token == nil {
		return nil, ErrSerialization
	}
	id, _ := u.ID(context.Background())
	return json.Marshal(struct {
		ID string `json:"id"`
	}{ID: id})
}

func (u *User) cachedID() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.id
}

func classify(err error) error {
	var gerr *graph.Error
	if errors.As(err, &gerr) {
		return errors.Join(ErrGraph, err)
	}
	return errors.Join(ErrSDK, err)
}
