package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fbgraph/pkg/graph"
)

func newTestProvider(t *testing.T) (*Provider, *fakeGraph) {
	t.Helper()

	fake := newFakeGraph()
	p, err := NewRegistry(WithClientFactory(fake.factory())).GetOrCreate(testIdentity())
	require.NoError(t, err)
	return p, fake
}

func TestProvider_Tokens(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvider(t)

	assert.False(t, p.HasAccessTokens())
	_, ok := p.LastAccessToken()
	assert.False(t, ok)

	first := graph.NewAccessToken("first", time.Now().Add(time.Hour))
	second := graph.NewAccessToken("second", time.Now().Add(time.Hour))
	assert.Equal(t, 0, p.AddAccessToken(first))
	assert.Equal(t, 1, p.AddAccessToken(second))

	assert.True(t, p.HasAccessTokens())
	assert.Equal(t, 2, p.TokenCount())

	last, ok := p.LastAccessToken()
	require.True(t, ok)
	assert.Equal(t, "second", last.Value)

	got, err := p.AccessToken(0)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Value)

	_, err = p.AccessToken(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = p.AccessToken(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestProvider_Permissions(t *testing.T) {
	t.Parallel()

	p, _ := newTestProvider(t)
	perms := []string{"email", "public_profile"}
	p.SetPermissions(perms)
	perms[0] = "changed"

	got := p.Permissions()
	assert.Equal(t, []string{"email", "public_profile"}, got)
	got[1] = "changed"
	assert.Equal(t, []string{"email", "public_profile"}, p.Permissions())
}

func TestProvider_LoginURL(t *testing.T) {
	t.Parallel()

	p, fake := newTestProvider(t)

	_, err := p.LoginURL(context.Background(), "", []string{"email"})
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Zero(t, fake.count("login_url"))

	u, err := p.LoginURL(context.Background(), "https://example.com/cb", []string{"email"})
	require.NoError(t, err)
	assert.Contains(t, u, "client_id="+testAppID)
	assert.Contains(t, u, "scope=email")
}

func TestProvider_User(t *testing.T) {
	t.Parallel()

	t.Run("auto without tokens", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProvider(t)
		u1, err := p.User(nil, Auto)
		require.NoError(t, err)
		u2, err := p.User(nil, Auto)
		require.NoError(t, err)

		_, ok := u1.Token()
		assert.False(t, ok)
		assert.Equal(t, -1, u1.Index())
		assert.NotSame(t, u1, u2)
	})

	t.Run("auto picks latest token", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProvider(t)
		p.AddAccessToken(graph.NewAccessToken("first", time.Now().Add(time.Hour)))
		p.AddAccessToken(graph.NewAccessToken("second", time.Now().Add(time.Hour)))

		u, err := p.User(nil, Auto)
		require.NoError(t, err)
		tok, ok := u.Token()
		require.True(t, ok)
		assert.Equal(t, "second", tok.Value)
		assert.Equal(t, 1, u.Index())

		byIndex, err := p.User(nil, Index(1))
		require.NoError(t, err)
		assert.Same(t, u.tokenUser, byIndex.tokenUser)

		first, err := p.User(nil, Index(0))
		require.NoError(t, err)
		tok, _ = first.Token()
		assert.Equal(t, "first", tok.Value)
	})

	t.Run("index out of range", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProvider(t)
		_, err := p.User(nil, Index(0))
		require.ErrorIs(t, err, ErrIndexOutOfRange)

		p.AddAccessToken(graph.NewAccessToken("t", time.Now().Add(time.Hour)))
		_, err = p.User(nil, Index(3))
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = p.User(nil, Index(-1))
		require.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}
