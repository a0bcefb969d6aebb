package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
	"github.com/dmitrymomot/fbgraph/pkg/logger"
	"github.com/dmitrymomot/fbgraph/pkg/store"
)

const (
	// DefaultCallbackURL is used when no callback URL was configured or detected.
	DefaultCallbackURL = "https://httpbin.org/anything"

	// DefaultCallbackParam is the query parameter marking the callback leg of the redirect.
	DefaultCallbackParam = "callback"
)

// DefaultPermissions returns the permissions requested when none are configured.
func DefaultPermissions() []string {
	return []string{"public_profile", "email"}
}

// Identity identifies an application. The secret is never logged.
type Identity struct {
	ID     string `env:"FACEBOOK_APP_ID,required"`
	Secret string `env:"FACEBOOK_APP_SECRET,required"`
}

// Validate reports whether both ID and Secret are set.
func (i Identity) Validate() error {
	if i.ID == "" {
		return errors.Join(ErrConfiguration, errors.New("app id is required"))
	}
	if i.Secret == "" {
		return errors.Join(ErrConfiguration, errors.New("app secret is required"))
	}
	return nil
}

// key is the registry key: the full app id plus a fingerprint of the secret,
// so two applications never share a provider.
func (i Identity) key() string {
	sum := sha256.Sum256([]byte(i.Secret))
	return i.ID + ":" + hex.EncodeToString(sum[:8])
}

func (i Identity) graphConfig() graph.Config {
	return graph.Config{AppID: i.ID, AppSecret: i.Secret}
}

// LogValue implements slog.LogValuer.
func (i Identity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", i.ID),
		slog.Any("secret", logger.Secret(i.Secret)),
	)
}

// Config is the application configuration accumulated by the App builder.
type Config struct {
	PersistentData store.Handler `env:"-"`
	HTTPClient     *http.Client  `env:"-"`
	Identity       Identity
	CallbackURL    string   `env:"FACEBOOK_CALLBACK_URL"`
	CallbackParam  string   `env:"FACEBOOK_CALLBACK_PARAM" envDefault:"callback"`
	GraphVersion   string   `env:"FACEBOOK_GRAPH_VERSION"`
	Permissions    []string `env:"FACEBOOK_PERMISSIONS" envSeparator:","`
	BetaMode       bool     `env:"FACEBOOK_BETA_MODE"`
	// LongLived exchanges freshly acquired short-lived tokens for long-lived ones.
	LongLived bool `env:"FACEBOOK_LONG_LIVED" envDefault:"true"`
}

// DefaultConfig returns the configuration a new App starts from.
func DefaultConfig(identity Identity) Config {
	return Config{
		Identity:      identity,
		CallbackURL:   DefaultCallbackURL,
		CallbackParam: DefaultCallbackParam,
		Permissions:   DefaultPermissions(),
		LongLived:     true,
	}
}

// Validate checks every field that the builder validates individually.
func (c Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := validatePermissions(c.Permissions); err != nil {
		return err
	}
	if c.CallbackParam == "" {
		return errors.Join(ErrConfiguration, errors.New("callback param is required"))
	}
	if c.GraphVersion != "" && !validGraphVersion(c.GraphVersion) {
		return errors.Join(ErrConfiguration, fmt.Errorf("invalid graph version %q", c.GraphVersion))
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Permissions = append([]string(nil), c.Permissions...)
	return out
}

func (c Config) graphOptions(fallback store.Handler) []graph.Option {
	data := c.PersistentData
	if data == nil {
		data = fallback
	}
	opts := []graph.Option{
		graph.WithVersion(c.GraphVersion),
		graph.WithBetaMode(c.BetaMode),
		graph.WithPersistentData(data),
	}
	if c.HTTPClient != nil {
		opts = append(opts, graph.WithHTTPClient(c.HTTPClient))
	}
	return opts
}

func validatePermissions(permissions []string) error {
	if permissions == nil {
		return errors.Join(ErrConfiguration, errors.New("permissions must be a list of scopes"))
	}
	for i, p := range permissions {
		if strings.TrimSpace(p) == "" {
			return errors.Join(ErrConfiguration, fmt.Errorf("permission at position %d is blank", i))
		}
	}
	return nil
}
