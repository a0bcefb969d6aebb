package graph

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/fbgraph/pkg/store"
)

// RandomGenerator produces the random strings used as CSRF state values.
type RandomGenerator interface {
	RandomString(length int) (string, error)
}

// Option configures a Graph client.
type Option func(*options)

type options struct {
	httpClient     *http.Client
	store          store.Handler
	random         RandomGenerator
	limiter        *rate.Limiter
	tracerProvider trace.TracerProvider
	version        string
	graphURL       string
	dialogURL      string
	stateTTL       time.Duration
	beta           bool
	noSecretProof  bool
}

// WithHTTPClient sets a custom HTTP client for Graph requests.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., logging, retries).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithVersion pins the Graph API version, e.g. "v23.0".
// Empty keeps DefaultVersion.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithBetaMode sends requests to the beta tier of the Graph API.
func WithBetaMode(enabled bool) Option {
	return func(o *options) {
		o.beta = enabled
	}
}

// WithPersistentData sets where CSRF state is kept between the login redirect
// and the callback. Defaults to a per-client in-memory store, which only works
// when the same client serves both legs.
func WithPersistentData(h store.Handler) Option {
	return func(o *options) {
		o.store = h
	}
}

// WithRandomGenerator replaces the CSRF state generator.
func WithRandomGenerator(g RandomGenerator) Option {
	return func(o *options) {
		o.random = g
	}
}

// WithStateTTL sets how long a login state stays valid.
// Default: 15 minutes.
func WithStateTTL(d time.Duration) Option {
	return func(o *options) {
		o.stateTTL = d
	}
}

// WithBaseURLs overrides the Graph API and login dialog hosts.
// Empty values keep the defaults. Intended for tests and proxies.
func WithBaseURLs(graphURL, dialogURL string) Option {
	return func(o *options) {
		o.graphURL = graphURL
		o.dialogURL = dialogURL
	}
}

// WithAppSecretProof toggles the appsecret_proof parameter on Graph calls.
// Enabled by default.
func WithAppSecretProof(enabled bool) Option {
	return func(o *options) {
		o.noSecretProof = !enabled
	}
}

// WithRateLimit throttles outgoing Graph requests to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *options) {
		o.limiter = rate.NewLimiter(r, burst)
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for Graph spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}
