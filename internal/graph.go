package internal

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
)

// GraphClient is the subset of the Graph API client the facade relies on.
// *graph.Client implements it.
type GraphClient interface {
	LoginURL(ctx context.Context, callbackURL string, scopes []string) (string, error)
	ExchangeCallback(ctx context.Context, r *http.Request, callbackURL string) (*graph.AccessToken, error)
	CallbackError(r *http.Request) *graph.CallbackError
	DebugToken(ctx context.Context, token graph.AccessToken) (*graph.TokenMetadata, error)
	ExchangeForLongLived(ctx context.Context, token graph.AccessToken) (*graph.AccessToken, error)
	Get(ctx context.Context, path string, token graph.AccessToken) (*graph.Response, error)
	Post(ctx context.Context, path string, data url.Values, token graph.AccessToken) (*graph.Response, error)
}

// ClientFactory builds a Graph client for an application.
// Replace it through WithClientFactory to point the facade at a fake API.
type ClientFactory func(cfg graph.Config, opts ...graph.Option) (GraphClient, error)

// DefaultClientFactory builds *graph.Client instances.
func DefaultClientFactory(cfg graph.Config, opts ...graph.Option) (GraphClient, error) {
	client, err := graph.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ClientFactoryWith returns a factory that appends extra options to every client it builds.
func ClientFactoryWith(extra ...graph.Option) ClientFactory {
	return func(cfg graph.Config, opts ...graph.Option) (GraphClient, error) {
		return DefaultClientFactory(cfg, append(opts, extra...)...)
	}
}
