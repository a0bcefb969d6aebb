package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
)

// longLivedThreshold is the remaining lifetime above which a token is considered long-lived.
const longLivedThreshold = 2 * time.Hour

// AccessToken is a Graph API access token.
// A zero ExpiresAt means the expiration is unknown.
type AccessToken struct {
	ExpiresAt time.Time
	Value     string
}

// NewAccessToken creates a token from its raw value and expiration time.
func NewAccessToken(value string, expiresAt time.Time) AccessToken {
	return AccessToken{Value: value, ExpiresAt: expiresAt}
}

// FromOAuth2 converts an oauth2 token into an AccessToken.
func FromOAuth2(t *oauth2.Token) AccessToken {
	if t == nil {
		return AccessToken{}
	}
	return AccessToken{Value: t.AccessToken, ExpiresAt: t.Expiry}
}

// OAuth2 returns the token as an oauth2 bearer token.
func (t AccessToken) OAuth2() *oauth2.Token {
	return &oauth2.Token{AccessToken: t.Value, TokenType: "Bearer", Expiry: t.ExpiresAt}
}

// IsEmpty reports whether the token has no value.
func (t AccessToken) IsEmpty() bool {
	return t.Value == ""
}

// IsExpired reports whether the token expiration is known and already passed.
func (t AccessToken) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !t.ExpiresAt.After(time.Now())
}

// IsLongLived reports whether the token is valid for more than two hours.
// Tokens with an unknown expiration are short-lived.
func (t AccessToken) IsLongLived() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return t.ExpiresAt.After(time.Now().Add(longLivedThreshold))
}

// LogValue keeps the raw token out of logs.
func (t AccessToken) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("present", !t.IsEmpty()),
		slog.Bool("long_lived", t.IsLongLived()),
		slog.Time("expires_at", t.ExpiresAt),
	)
}

// TokenMetadata is the result of inspecting a token through the debug_token endpoint.
type TokenMetadata struct {
	ExpiresAt   time.Time
	IssuedAt    time.Time
	AppID       string
	Application string
	Type        string
	UserID      string
	Scopes      []string
	IsValid     bool
}

// ValidateAppID ensures the token was issued for the given application.
func (m *TokenMetadata) ValidateAppID(appID string) error {
	if m.AppID != appID {
		return errors.Join(ErrAppIDMismatch, fmt.Errorf("expected %q, got %q", appID, m.AppID))
	}
	return nil
}

// ValidateUserID ensures the token was issued for the given user.
func (m *TokenMetadata) ValidateUserID(userID string) error {
	if m.UserID != userID {
		return errors.Join(ErrUserIDMismatch, fmt.Errorf("expected %q, got %q", userID, m.UserID))
	}
	return nil
}

// ValidateExpiration ensures the token has not expired.
// Tokens that never expire pass.
func (m *TokenMetadata) ValidateExpiration() error {
	if !m.ExpiresAt.IsZero() && m.ExpiresAt.Before(time.Now()) {
		return ErrTokenExpired
	}
	return nil
}

// debugTokenData mirrors the "data" object of a debug_token response.
// Timestamps are unix seconds, zero meaning "never".
type debugTokenData struct {
	AppID       string   `json:"app_id"`
	Application string   `json:"application"`
	Type        string   `json:"type"`
	UserID      string   `json:"user_id"`
	Scopes      []string `json:"scopes"`
	ExpiresAt   int64    `json:"expires_at"`
	IssuedAt    int64    `json:"issued_at"`
	IsValid     bool     `json:"is_valid"`
}

func (d debugTokenData) metadata() *TokenMetadata {
	m := &TokenMetadata{
		AppID:       d.AppID,
		Application: d.Application,
		Type:        d.Type,
		UserID:      d.UserID,
		Scopes:      d.Scopes,
		IsValid:     d.IsValid,
	}
	if d.ExpiresAt > 0 {
		m.ExpiresAt = time.Unix(d.ExpiresAt, 0)
	}
	if d.IssuedAt > 0 {
		m.IssuedAt = time.Unix(d.IssuedAt, 0)
	}
	return m
}

// tokenResponse is the body of the oauth/access_token endpoint.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   json.Number `json:"expires_in"`
}

func (r tokenResponse) token() AccessToken {
	t := AccessToken{Value: r.AccessToken}
	if secs, err := r.ExpiresIn.Int64(); err == nil && secs > 0 {
		t.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return t
}
