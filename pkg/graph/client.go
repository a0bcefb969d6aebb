package graph

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/fbgraph/pkg/id"
	"github.com/dmitrymomot/fbgraph/pkg/store"
)

const (
	// DefaultVersion is the Graph API version used when none is configured.
	DefaultVersion = "v23.0"

	DefaultGraphURL      = "https://graph.facebook.com"
	DefaultBetaGraphURL  = "https://graph.beta.facebook.com"
	DefaultDialogURL     = "https://www.facebook.com"
	DefaultBetaDialogURL = "https://www.beta.facebook.com"

	defaultTimeout  = 60 * time.Second
	defaultStateTTL = 15 * time.Minute
	tracerName      = "github.com/dmitrymomot/fbgraph/pkg/graph"
)

// Config holds the application credentials.
type Config struct {
	AppID     string `env:"FACEBOOK_APP_ID,required"`
	AppSecret string `env:"FACEBOOK_APP_SECRET,required"`
}

// Client talks to the Graph API on behalf of one application.
type Client struct {
	httpClient     *http.Client
	store          store.Handler
	random         RandomGenerator
	limiter        *rate.Limiter
	tracer         trace.Tracer
	appID          string
	appSecret      string
	version        string
	graphURL       string
	dialogURL      string
	stateTTL       time.Duration
	appSecretProof bool
}

// New creates a Graph client.
// Returns an error if AppID or AppSecret is empty.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.AppID == "" {
		return nil, ErrMissingAppID
	}
	if cfg.AppSecret == "" {
		return nil, ErrMissingAppSecret
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		httpClient:     o.httpClient,
		store:          o.store,
		random:         o.random,
		limiter:        o.limiter,
		appID:          cfg.AppID,
		appSecret:      cfg.AppSecret,
		version:        o.version,
		graphURL:       o.graphURL,
		dialogURL:      o.dialogURL,
		stateTTL:       o.stateTTL,
		appSecretProof: !o.noSecretProof,
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.store == nil {
		c.store = store.NewMemory(store.WithCleanupInterval(0))
	}
	if c.random == nil {
		c.random = id.Hex{}
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.stateTTL <= 0 {
		c.stateTTL = defaultStateTTL
	}
	if c.graphURL == "" {
		c.graphURL = DefaultGraphURL
		if o.beta {
			c.graphURL = DefaultBetaGraphURL
		}
	}
	if c.dialogURL == "" {
		c.dialogURL = DefaultDialogURL
		if o.beta {
			c.dialogURL = DefaultBetaDialogURL
		}
	}
	c.graphURL = strings.TrimRight(c.graphURL, "/")
	c.dialogURL = strings.TrimRight(c.dialogURL, "/")

	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	c.tracer = tp.Tracer(tracerName)

	return c, nil
}

// AppID returns the application ID the client was built for.
func (c *Client) AppID() string {
	return c.appID
}

// Version returns the Graph API version in use.
func (c *Client) Version() string {
	return c.version
}

// AppAccessToken returns the "{app-id}|{app-secret}" application token.
func (c *Client) AppAccessToken() AccessToken {
	return AccessToken{Value: c.appID + "|" + c.appSecret}
}

// Get performs a GET request against a Graph path such as "/me?fields=id,name".
func (c *Client) Get(ctx context.Context, path string, token AccessToken) (*Response, error) {
	if token.IsEmpty() {
		return nil, ErrEmptyToken
	}
	return c.do(ctx, http.MethodGet, path, nil, token)
}

// Post performs a POST request against a Graph path with form-encoded data.
func (c *Client) Post(ctx context.Context, path string, data url.Values, token AccessToken) (*Response, error) {
	if token.IsEmpty() {
		return nil, ErrEmptyToken
	}
	return c.do(ctx, http.MethodPost, path, data, token)
}

// do sends a request to {graph}/{version}{path}.
// The access token and its appsecret_proof are added when token is not empty.
func (c *Client) do(ctx context.Context, method, path string, data url.Values, token AccessToken) (*Response, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("graph: invalid path %q: %w", path, err)
	}

	ctx, span := c.tracer.Start(ctx, "graph."+strings.ToLower(method), trace.WithAttributes(
		attribute.String("graph.app_id", c.appID),
		attribute.String("graph.version", c.version),
		attribute.String("graph.path", ref.Path),
		attribute.String("http.method", method),
	))
	defer span.End()

	resp, err := c.send(ctx, method, ref, data, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func (c *Client) send(ctx context.Context, method string, ref *url.URL, data url.Values, token AccessToken) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := ref.Query()
	for k, vs := range data {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	if !token.IsEmpty() {
		params.Set("access_token", token.Value)
		if c.appSecretProof {
			params.Set("appsecret_proof", c.secretProof(token.Value))
		}
	}

	endpoint := c.graphURL + "/" + c.version + "/" + strings.TrimLeft(ref.Path, "/")

	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, endpoint+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(params.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("graph: build request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("%s %s: %w", method, ref.Path, err))
	}
	if httpResp == nil {
		return nil, ErrNilResponse
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("read body: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		if gerr := parseError(httpResp.StatusCode, body); gerr != nil {
			return nil, gerr
		}
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("%s %s: status=%d body=%s", method, ref.Path, httpResp.StatusCode, body))
	}

	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
}

// secretProof computes the appsecret_proof for an access token.
func (c *Client) secretProof(token string) string {
	mac := hmac.New(sha256.New, []byte(c.appSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// oauthConfig returns the oauth2 configuration for the versioned login dialog.
func (c *Client) oauthConfig(callbackURL string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.appID,
		ClientSecret: c.appSecret,
		RedirectURL:  callbackURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.dialogURL + "/" + c.version + "/dialog/oauth",
			TokenURL:  c.graphURL + "/" + c.version + "/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (c *Client) contextWithHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
