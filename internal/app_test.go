package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
	"github.com/dmitrymomot/fbgraph/pkg/logger"
	"github.com/dmitrymomot/fbgraph/pkg/store"
)

func newTestApp(t *testing.T) (*App, *fakeGraph) {
	t.Helper()

	fake := newFakeGraph()
	reg := NewRegistry(WithClientFactory(fake.factory()))
	t.Cleanup(func() { _ = reg.Close() })
	return New(testIdentity(), UseRegistry(reg)), fake
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		require.NoError(t, app.Err())

		cfg := app.Config()
		assert.Equal(t, DefaultCallbackURL, cfg.CallbackURL)
		assert.Equal(t, DefaultCallbackParam, cfg.CallbackParam)
		assert.Equal(t, DefaultPermissions(), cfg.Permissions)
		assert.True(t, cfg.LongLived)
		assert.False(t, cfg.BetaMode)
		assert.Zero(t, app.Generation())
	})

	t.Run("invalid identity", func(t *testing.T) {
		t.Parallel()

		app := New(Identity{ID: testAppID}, UseRegistry(NewRegistry()))
		require.ErrorIs(t, app.Err(), ErrConfiguration)

		_, err := app.Resolve(context.Background())
		require.ErrorIs(t, err, ErrConfiguration)
		_, err = app.LoginURL(context.Background())
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("default registry", func(t *testing.T) {
		t.Parallel()

		app := New(testIdentity(), UseLogger(logger.NewNope()))
		assert.Same(t, DefaultRegistry(), app.Registry())
	})
}

func TestApp_Builder(t *testing.T) {
	t.Parallel()

	t.Run("successful changes bump generation", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		app.WithCallbackURL("https://example.com/login?callback=1").
			WithPermissions("email").
			WithGraphVersion("v19.0").
			WithBetaMode(true).
			WithLongLivedTokens(false).
			WithCallbackParam("cb").
			WithHTTPClient(http.DefaultClient).
			WithPersistentDataHandler(store.NewMemory(store.WithCleanupInterval(0)))

		require.NoError(t, app.Err())
		assert.Equal(t, uint64(8), app.Generation())

		cfg := app.Config()
		assert.Equal(t, "https://example.com/login?callback=1", cfg.CallbackURL)
		assert.Equal(t, []string{"email"}, cfg.Permissions)
		assert.Equal(t, "v19.0", cfg.GraphVersion)
		assert.True(t, cfg.BetaMode)
		assert.False(t, cfg.LongLived)
		assert.Equal(t, "cb", cfg.CallbackParam)
		assert.Same(t, http.DefaultClient, cfg.HTTPClient)
		assert.NotNil(t, cfg.PersistentData)
	})

	t.Run("latest graph version", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		app.WithLatestGraphVersion()
		require.NoError(t, app.Err())
		assert.Equal(t, graph.DefaultVersion, app.Config().GraphVersion)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		cases := map[string]func(*App) *App{
			"relative callback":    func(a *App) *App { return a.WithCallbackURL("/login") },
			"blank permission":     func(a *App) *App { return a.WithPermissions("email", " ") },
			"nil permissions":      func(a *App) *App { return a.WithPermissions() },
			"nil data handler":     func(a *App) *App { return a.WithPersistentDataHandler(nil) },
			"bad version":          func(a *App) *App { return a.WithGraphVersion("23") },
			"version without dot":  func(a *App) *App { return a.WithGraphVersion("v23") },
			"nil http client":      func(a *App) *App { return a.WithHTTPClient(nil) },
			"empty callback param": func(a *App) *App { return a.WithCallbackParam("") },
			"nil registry":         func(a *App) *App { return a.WithRegistry(nil) },
			"nil logger":           func(a *App) *App { return a.WithLogger(nil) },
			"invalid config":       func(a *App) *App { return a.WithConfig(Config{}) },
			"config with bad version": func(a *App) *App {
				cfg := a.Config()
				cfg.GraphVersion = "latest"
				return a.WithConfig(cfg)
			},
		}
		for name, apply := range cases {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				app, _ := newTestApp(t)
				before := app.Config()
				apply(app)

				require.ErrorIs(t, app.Err(), ErrConfiguration)
				assert.Zero(t, app.Generation())
				assert.Equal(t, before, app.Config())
			})
		}
	})

	t.Run("first error wins", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		app.WithGraphVersion("bad")
		first := app.Err()
		app.WithCallbackURL("relative").WithBetaMode(true)

		assert.Equal(t, first, app.Err())
		assert.True(t, app.Config().BetaMode)
	})

	t.Run("config snapshots are isolated", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		app.WithPermissions("email")
		snap := app.Config()
		snap.Permissions[0] = "changed"

		assert.Equal(t, []string{"email"}, app.Config().Permissions)
	})

	t.Run("with config replaces everything", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		cfg := DefaultConfig(testIdentity())
		cfg.Permissions = []string{"user_friends"}
		cfg.BetaMode = true
		app.WithConfig(cfg)

		require.NoError(t, app.Err())
		assert.Equal(t, uint64(1), app.Generation())
		assert.Equal(t, []string{"user_friends"}, app.Config().Permissions)
		assert.True(t, app.Config().BetaMode)
	})
}

func TestApp_Resolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("cached until config changes", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		s1, err := app.Resolve(ctx)
		require.NoError(t, err)
		s2, err := app.Resolve(ctx)
		require.NoError(t, err)
		assert.Same(t, s1, s2)

		app.WithBetaMode(true)
		s3, err := app.Resolve(ctx)
		require.NoError(t, err)
		assert.NotSame(t, s1, s3)
		assert.Same(t, s1.Provider(), s3.Provider())
		assert.Equal(t, app.Generation(), s3.Generation())
		assert.True(t, s3.Config().BetaMode)
	})

	t.Run("failed change keeps no session", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		_, err := app.Resolve(ctx)
		require.NoError(t, err)

		app.WithCallbackURL("nope")
		_, err = app.Resolve(ctx)
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("permissions applied to provider", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		app.WithPermissions("email", "user_posts")
		s, err := app.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"email", "user_posts"}, s.Provider().Permissions())
	})

	t.Run("apps with same identity share provider", func(t *testing.T) {
		t.Parallel()

		fake := newFakeGraph()
		reg := NewRegistry(WithClientFactory(fake.factory()))
		t.Cleanup(func() { _ = reg.Close() })
		a := New(testIdentity(), UseRegistry(reg))
		b := New(testIdentity(), UseRegistry(reg)).WithBetaMode(true)

		sa, err := a.Resolve(ctx)
		require.NoError(t, err)
		sb, err := b.Resolve(ctx)
		require.NoError(t, err)
		assert.Same(t, sa.Provider(), sb.Provider())
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("moving to another registry", func(t *testing.T) {
		t.Parallel()

		app, _ := newTestApp(t)
		s1, err := app.Resolve(ctx)
		require.NoError(t, err)

		other := NewRegistry(WithClientFactory(newFakeGraph().factory()))
		t.Cleanup(func() { _ = other.Close() })
		app.WithRegistry(other)
		s2, err := app.Resolve(ctx)
		require.NoError(t, err)
		assert.NotSame(t, s1.Provider(), s2.Provider())
		assert.Same(t, other, app.Registry())
	})
}

func TestApp_LoginURL(t *testing.T) {
	t.Parallel()

	app, fake := newTestApp(t)
	app.WithPermissions("email").WithCallbackURL("https://example.com/login?callback=1")

	raw, err := app.LoginURL(context.Background())
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, testAppID, u.Query().Get("client_id"))
	assert.Equal(t, "email", u.Query().Get("scope"))
	assert.Equal(t, "https://example.com/login?callback=1", u.Query().Get("redirect_uri"))
	assert.Equal(t, 1, fake.count("login_url"))
}

func TestApp_IsCallback(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)
	assert.True(t, app.IsCallback(httptest.NewRequest(http.MethodGet, "/login?callback=1", nil)))
	assert.False(t, app.IsCallback(httptest.NewRequest(http.MethodGet, "/login", nil)))
	assert.False(t, app.IsCallback(nil))

	app.WithCallbackParam("fb")
	assert.True(t, app.IsCallback(httptest.NewRequest(http.MethodGet, "/login?fb=", nil)))
	assert.False(t, app.IsCallback(httptest.NewRequest(http.MethodGet, "/login?callback=1", nil)))
}

func TestApp_WithCallbackFromRequest(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)
	r := httptest.NewRequest(http.MethodGet, "http://example.com/login?next=%2Fhome", nil)
	app.WithCallbackFromRequest(r)

	require.NoError(t, app.Err())
	assert.Equal(t, "http://example.com/login?callback=1&next=%2Fhome", app.Config().CallbackURL)
}
