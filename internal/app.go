package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
	"github.com/dmitrymomot/fbgraph/pkg/logger"
	"github.com/dmitrymomot/fbgraph/pkg/store"
)

// App is the application facade: a configuration builder that lazily resolves
// a Session bound to the application's Provider.
//
// Builder methods validate their input and return the App, so calls can be chained.
// The first validation failure is kept and returned by Err, Resolve and every
// operation that needs a session. Each successful change bumps the generation,
// and the next Resolve rebuilds the session.
type App struct {
	registry   *Registry
	logger     *slog.Logger
	session    *Session
	err        error
	lastError  string
	config     Config
	generation uint64
	mu         sync.Mutex
}

// Option configures an App at construction.
type Option func(*App)

// UseRegistry sets the registry the App resolves its Provider from.
// Defaults to DefaultRegistry().
func UseRegistry(r *Registry) Option {
	return func(a *App) {
		if r != nil {
			a.registry = r
		}
	}
}

// UseLogger sets the App logger.
func UseLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an App for identity with the default configuration.
// An invalid identity is reported by Err.
func New(identity Identity, opts ...Option) *App {
	a := &App{
		config: DefaultConfig(identity),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = DefaultRegistry()
	}
	if err := identity.Validate(); err != nil {
		a.err = err
	}
	return a
}

// WithCallbackURL sets the absolute URL the login dialog redirects back to.
func (a *App) WithCallbackURL(callbackURL string) *App {
	return a.apply(func(c *Config) error {
		u, err := url.Parse(callbackURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.Join(ErrConfiguration, fmt.Errorf("callback url %q must be absolute", callbackURL))
		}
		c.CallbackURL = callbackURL
		return nil
	})
}

// WithCallbackFromRequest derives the callback URL from the incoming request.
func (a *App) WithCallbackFromRequest(r *http.Request) *App {
	return a.apply(func(c *Config) error {
		c.CallbackURL = CallbackURLFromRequest(r, c.CallbackParam)
		return nil
	})
}

// WithPermissions sets the scopes requested in the login dialog.
func (a *App) WithPermissions(permissions ...string) *App {
	return a.apply(func(c *Config) error {
		if err := validatePermissions(permissions); err != nil {
			return err
		}
		c.Permissions = append([]string(nil), permissions...)
		return nil
	})
}

// WithPersistentDataHandler sets where login state is kept between the redirect and the callback.
func (a *App) WithPersistentDataHandler(h store.Handler) *App {
	return a.apply(func(c *Config) error {
		if h == nil {
			return errors.Join(ErrConfiguration, errors.New("persistent data handler is nil"))
		}
		c.PersistentData = h
		return nil
	})
}

// WithGraphVersion pins the Graph API version, e.g. "v23.0".
func (a *App) WithGraphVersion(version string) *App {
	return a.apply(func(c *Config) error {
		if !validGraphVersion(version) {
			return errors.Join(ErrConfiguration, fmt.Errorf("graph version %q must look like v23.0", version))
		}
		c.GraphVersion = version
		return nil
	})
}

// WithLatestGraphVersion pins the newest Graph API version known to this package.
func (a *App) WithLatestGraphVersion() *App {
	return a.WithGraphVersion(graph.DefaultVersion)
}

// WithBetaMode routes requests to the beta tier of the Graph API.
func (a *App) WithBetaMode(enabled bool) *App {
	return a.apply(func(c *Config) error {
		c.BetaMode = enabled
		return nil
	})
}

// WithHTTPClient sets the HTTP client used for Graph requests.
func (a *App) WithHTTPClient(client *http.Client) *App {
	return a.apply(func(c *Config) error {
		if client == nil {
			return errors.Join(ErrConfiguration, errors.New("http client is nil"))
		}
		c.HTTPClient = client
		return nil
	})
}

// WithLongLivedTokens toggles the exchange for long-lived tokens after login.
func (a *App) WithLongLivedTokens(enabled bool) *App {
	return a.apply(func(c *Config) error {
		c.LongLived = enabled
		return nil
	})
}

// WithCallbackParam sets the query parameter that marks callback requests.
func (a *App) WithCallbackParam(param string) *App {
	return a.apply(func(c *Config) error {
		if param == "" {
			return errors.Join(ErrConfiguration, errors.New("callback param is required"))
		}
		c.CallbackParam = param
		return nil
	})
}

// WithConfig replaces the whole configuration.
func (a *App) WithConfig(cfg Config) *App {
	return a.apply(func(c *Config) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		*c = cfg.clone()
		return nil
	})
}

// WithRegistry moves the App to another registry.
func (a *App) WithRegistry(r *Registry) *App {
	return a.apply(func(*Config) error {
		if r == nil {
			return errors.Join(ErrConfiguration, errors.New("registry is nil"))
		}
		a.registry = r
		return nil
	})
}

// WithLogger replaces the App logger.
func (a *App) WithLogger(l *slog.Logger) *App {
	return a.apply(func(*Config) error {
		if l == nil {
			return errors.Join(ErrConfiguration, errors.New("logger is nil"))
		}
		a.logger = l
		return nil
	})
}

// apply runs fn against a copy of the config under the App lock.
// On success the copy replaces the config and the generation is bumped.
func (a *App) apply(fn func(*Config) error) *App {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.config.clone()
	if err := fn(&next); err != nil {
		if a.err == nil {
			a.err = err
		}
		return a
	}
	a.config = next
	a.generation++
	return a
}

// Err returns the first configuration error, if any.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Config returns a snapshot of the current configuration.
func (a *App) Config() Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.config.clone()
}

// Generation returns the configuration generation.
func (a *App) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// Registry returns the registry the App resolves from.
func (a *App) Registry() *Registry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry
}

// LastError returns the message of the most recent token lifecycle failure.
func (a *App) LastError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastError
}

// Resolve returns the Session for the current configuration.
// The cached session is returned as long as the configuration did not change.
func (a *App) Resolve(ctx context.Context) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	if a.session != nil && a.session.generation == a.generation {
		return a.session, nil
	}

	provider, err := a.registry.GetOrCreate(a.config.Identity)
	if err != nil {
		return nil, err
	}
	client, err := a.registry.NewClient(a.config.Identity, a.config.graphOptions(a.registry.PersistentData())...)
	if err != nil {
		return nil, err
	}
	provider.SetPermissions(a.config.Permissions)

	a.session = &Session{
		provider:   provider,
		client:     client,
		config:     a.config.clone(),
		generation: a.generation,
	}
	a.logger.DebugContext(ctx, "session resolved",
		slog.String("app_id", a.config.Identity.ID),
		slog.Uint64("generation", a.generation),
	)
	return a.session, nil
}

// LoginURL returns the authorization dialog URL for the configured callback and permissions.
func (a *App) LoginURL(ctx context.Context) (string, error) {
	s, err := a.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return s.LoginURL(ctx)
}

// IsCallback reports whether r carries the configured callback marker.
func (a *App) IsCallback(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	return r.URL.Query().Has(a.Config().CallbackParam)
}

func validGraphVersion(v string) bool {
	rest, ok := strings.CutPrefix(v, "v")
	if !ok {
		return false
	}
	major, minor, ok := strings.Cut(rest, ".")
	if !ok {
		return false
	}
	if _, err := strconv.ParseUint(major, 10, 32); err != nil {
		return false
	}
	_, err := strconv.ParseUint(minor, 10, 32)
	return err == nil
}
