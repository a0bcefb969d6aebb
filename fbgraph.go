package fbgraph

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/fbgraph/internal"
)

// Type aliases - public API
type (
	// App is the application facade: a configuration builder that lazily
	// resolves a provider-bound Session.
	App = internal.App

	// Option configures an App at construction.
	Option = internal.Option

	// Identity identifies an application by id and secret.
	Identity = internal.Identity

	// Config is the full application configuration.
	Config = internal.Config

	// Registry keeps one Provider per application identity.
	Registry = internal.Registry

	// RegistryOption configures a Registry.
	RegistryOption = internal.RegistryOption

	// Provider holds the permissions and access tokens of one application.
	Provider = internal.Provider

	// Session binds a Provider to a Graph client built from one configuration.
	Session = internal.Session

	// User is an authenticated handle bound to one stored access token.
	User = internal.User

	// GetOption configures User.Get.
	GetOption = internal.GetOption

	// TokenSelector picks a stored access token.
	TokenSelector = internal.TokenSelector

	// TokenResult reports what RetrieveAccessToken did with a request.
	TokenResult = internal.TokenResult

	// TokenStatus is the outcome of RetrieveAccessToken.
	TokenStatus = internal.TokenStatus

	// GraphClient is the Graph API capability the facade depends on.
	GraphClient = internal.GraphClient

	// ClientFactory builds Graph clients for a Registry.
	ClientFactory = internal.ClientFactory
)

// Errors
var (
	ErrConfiguration   = internal.ErrConfiguration
	ErrGraph           = internal.ErrGraph
	ErrSDK             = internal.ErrSDK
	ErrAuthorization   = internal.ErrAuthorization
	ErrNoCallback      = internal.ErrNoCallback
	ErrMissingToken    = internal.ErrMissingToken
	ErrSerialization   = internal.ErrSerialization
	ErrIndexOutOfRange = internal.ErrIndexOutOfRange
)

const (
	DefaultCallbackURL   = internal.DefaultCallbackURL
	DefaultCallbackParam = internal.DefaultCallbackParam

	StatusNoCallback = internal.StatusNoCallback
	StatusStored     = internal.StatusStored
)

// Auto selects the most recently stored access token.
var Auto = internal.Auto

// Create returns an App for the given application id and secret.
//
// Example:
//
//	app := fbgraph.Create(os.Getenv("FACEBOOK_APP_ID"), os.Getenv("FACEBOOK_APP_SECRET")).
//	    WithPermissions("email").
//	    WithCallbackURL("https://example.com/login?callback=1")
//	url, err := app.LoginURL(ctx)
func Create(id, secret string, opts ...Option) *App {
	return internal.New(Identity{ID: id, Secret: secret}, opts...)
}

// New returns an App for identity.
func New(identity Identity, opts ...Option) *App {
	return internal.New(identity, opts...)
}

// UseRegistry makes the App resolve its Provider from r instead of the default registry.
func UseRegistry(r *Registry) Option {
	return internal.UseRegistry(r)
}

// UseLogger sets the App logger.
func UseLogger(l *slog.Logger) Option {
	return internal.UseLogger(l)
}

// NewRegistry creates an empty provider registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	return internal.NewRegistry(opts...)
}

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return internal.DefaultRegistry()
}

var (
	// WithClientFactory sets how a Registry builds Graph clients.
	WithClientFactory = internal.WithClientFactory

	// WithRegistryLogger sets the Registry logger.
	WithRegistryLogger = internal.WithRegistryLogger

	// WithRegistryPersistentData sets the store shared by Apps without their own handler.
	WithRegistryPersistentData = internal.WithRegistryPersistentData

	// ClientFactoryWith returns a factory that appends graph options to every client.
	ClientFactoryWith = internal.ClientFactoryWith
)

// Index selects the access token stored at position i.
func Index(i int) TokenSelector {
	return internal.Index(i)
}

// WithPath sets the Graph node read by User.Get. Default: /me.
func WithPath(path string) GetOption {
	return internal.WithPath(path)
}

// WithLimit sets the page size of User.Get.
func WithLimit(n int) GetOption {
	return internal.WithLimit(n)
}

// DefaultConfig returns the configuration a new App starts from.
func DefaultConfig(identity Identity) Config {
	return internal.DefaultConfig(identity)
}

// CallbackURLFromRequest rebuilds r's URL as a callback URL marked with param.
func CallbackURLFromRequest(r *http.Request, param string) string {
	return internal.CallbackURLFromRequest(r, param)
}
